package diagnostics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mjc-lang/minijavac/internal/sourceview"
)

const tabWidth = 4

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
	colorRed   = "\x1b[31m"
	colorYellow = "\x1b[33m"
)

func (s *Sink) render(m Message) {
	header := fmt.Sprintf("%s: %s", m.Level, m.Text)
	if s.Colorize {
		c := colorRed
		if m.Level == Warning {
			c = colorYellow
		}
		header = c + colorBold + m.Level.String() + colorReset + ": " + m.Text
	}
	fmt.Fprintln(s.w, header)
	if !m.Spanned {
		return
	}
	for _, line := range m.Span.Lines() {
		s.renderLine(line)
	}
}

// renderLine prints the gutter-numbered source line followed by a caret
// underline spanning the faulty columns. Control characters (including
// the line's own non-printable bytes) are escaped inline; they get no
// color or other highlighting, even when Colorize is set. TAB counts as 4 display columns when computing caret offsets, and any
// other control byte counts as 1, matching a single escaped-glyph
// replacement.
func (s *Sink) renderLine(line sourceview.Span) {
	row := line.Start.Row()
	lineText := line.Start.View().Line(row)
	gutter := strconv.Itoa(row)
	pad := strings.Repeat(" ", maxInt(0, 4-len(gutter)))
	fmt.Fprintf(s.w, "%s%s | %s\n", pad, gutter, escapeLine(lineText))

	startCol := displayColumn(lineText, line.Start.Col())
	endCol := displayColumn(lineText, line.End.Col())
	prefix := strings.Repeat(" ", len(pad)+len(gutter)+3+startCol-1)
	carets := strings.Repeat("^", maxInt(1, endCol-startCol+1))
	if s.Colorize {
		carets = colorBold + colorRed + carets + colorReset
	}
	fmt.Fprintf(s.w, "%s%s\n", prefix, carets)
}

// displayColumn converts a 1-based byte column into a 1-based display
// column, expanding tabs to tabWidth and counting every other byte (printable
// or control) as a single column.
func displayColumn(line string, byteCol int) int {
	col := 1
	for i := 0; i < byteCol-1 && i < len(line); i++ {
		if line[i] == '\t' {
			col += tabWidth
		} else {
			col++
		}
	}
	return col
}

// escapeLine renders every control byte other than TAB as a single
// visible glyph; TAB expands to tabWidth spaces for display, matching
// the column accounting in displayColumn.
func escapeLine(line string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\t':
			b.WriteString(strings.Repeat(" ", tabWidth))
		case c < 0x20 || c == 0x7f:
			b.WriteRune('␀' + rune(c))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
