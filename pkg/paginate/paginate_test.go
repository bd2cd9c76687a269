package paginate_test

import (
	"testing"

	"github.com/aretw0/wayfinder/pkg/navpath"
	"github.com/aretw0/wayfinder/pkg/paginate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name   string
		page   int
		want   []int
		number int
	}{
		{"first", 1, []int{1, 2, 3}, 1},
		{"middle", 2, []int{4, 5, 6}, 2},
		{"last partial", 3, []int{7}, 3},
		{"clamped high", 9, []int{7}, 3},
		{"clamped low", 0, []int{1, 2, 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paginate.Slice(items, 3, tt.page)
			assert.Equal(t, tt.want, p.Items)
			assert.Equal(t, tt.number, p.Number)
			assert.Equal(t, 3, p.Pages)
			assert.Equal(t, 7, p.Total)
		})
	}
}

func TestSlice_Empty(t *testing.T) {
	p := paginate.Slice([]string(nil), 5, 3)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.Pages)
	assert.False(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

func TestCurrent(t *testing.T) {
	base := navpath.Start("start").Push("requests")
	assert.Equal(t, 1, paginate.Current(base, "page"))
	assert.Equal(t, 4, paginate.Current(base.UpdateParams(navpath.Merge, navpath.Set("page", "4")), "page"))
	assert.Equal(t, 1, paginate.Current(base.UpdateParams(navpath.Merge, navpath.Set("page", "x")), "page"))
	assert.Equal(t, 1, paginate.Current(base.UpdateParams(navpath.Merge, navpath.Set("page", "-2")), "page"))
}

func TestControls_KeepOtherParams(t *testing.T) {
	path := navpath.Start("start").Push("requests", navpath.Set("view", "open"), navpath.Set("page", "2"))

	row, err := paginate.Controls(path, 2, 3, paginate.DefaultParam)
	require.NoError(t, err)
	require.Len(t, row, 3)

	assert.Equal(t, "start/requests/?page=1&view=open", row[0].Token)
	assert.Equal(t, "2/3", row[1].Label)
	assert.Equal(t, "start/requests/?page=3&view=open", row[2].Token)
}

func TestControls_Edges(t *testing.T) {
	path := navpath.Start("start").Push("requests")

	row, err := paginate.Controls(path, 1, 2, "page")
	require.NoError(t, err)
	require.Len(t, row, 2, "no previous button on the first page")
	assert.Equal(t, "start/requests/?page=2", row[1].Token)

	row, err = paginate.Controls(path, 1, 1, "page")
	require.NoError(t, err)
	assert.Nil(t, row, "single page needs no controls")
}
