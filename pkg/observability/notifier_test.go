package observability_test

import (
	"context"
	"testing"

	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendOnly struct{ sent int }

func (s *sendOnly) Send(ctx context.Context, chatID int64, reply *domain.Reply) (domain.Receipt, error) {
	s.sent++
	return domain.Receipt{MessageID: s.sent}, nil
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	outbox := memory.NewOutbox()
	n := observability.Instrument(outbox, m)
	editor, ok := n.(ports.Editor)
	require.True(t, ok, "editing capability is preserved")

	_, err = n.Send(ctx, 1, domain.NewReply("hi"))
	require.NoError(t, err)
	_, err = editor.Edit(ctx, 1, 1, domain.NewReply("edited"))
	require.NoError(t, err)
	assert.Len(t, outbox.Deliveries(), 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("ok")))

	_, ok = observability.Instrument(&sendOnly{}, m).(ports.Editor)
	assert.False(t, ok)
}
