package console

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the wayfinder banner to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text, color string
	}{
		{` _    _             __ _           _           `, "#34d399"},
		{`| |  | |           / _(_)         | |          `, "#2dd4bf"},
		{`| |  | | __ _ _   | |_ _ _ __   __| | ___ _ __ `, "#22d3ee"},
		{`| |/\| |/ _' | | | |  _| | '_ \ / _' |/ _ \ '__|`, "#38bdf8"},
		{`\  /\  / (_| | |_| | | | | | | | (_| |  __/ |   `, "#60a5fa"},
		{` \/  \/ \__,_|\__, |_| |_|_| |_|\__,_|\___|_|   `, "#818cf8"},
		{`               __/ |                            `, "#818cf8"},
		{`              |___/                             `, "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
