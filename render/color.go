package render

import "fmt"

// Options controls terminal output
type Options struct {
	// Color enables ANSI highlighting
	Color bool
}

const (
	ansiRed    = 31
	ansiGreen  = 32
	ansiYellow = 33
	ansiCyan   = 36
	ansiGray   = 90
)

func (o Options) paint(code int, s string) string {
	if !o.Color || s == "" {
		return s
	}
	return fmt.Sprintf("\033[%dm%s\033[0m", code, s)
}

func (o Options) painter(code int) FormatFunc {
	if !o.Color {
		return nil
	}
	return func(s string) string { return o.paint(code, s) }
}
