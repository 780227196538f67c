package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`  _____ _          _                    _    `, "#fde047"},
	{` |  ___(_)_ __ ___| |__  _ __ ___  __ _| | __`, "#facc15"},
	{` | |_  | | '__/ _ \ '_ \| '__/ _ \/ _' | |/ /`, "#fb923c"},
	{` |  _| | | | |  __/ |_) | | |  __/ (_| |   < `, "#f97316"},
	{` |_|   |_|_|  \___|_.__/|_|  \___|\__,_|_|\_\`, "#ef4444"},
}

// PrintBanner writes the ASCII banner, coloured for the terminal's profile.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  bushfire plan assistant "+version).Faint())
	}
	fmt.Fprintln(w)
}
