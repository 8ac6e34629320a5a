package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
	ansiBold   = "\033[1m"
)

// colorEnabled defaults to whether stderr is a terminal.
var colorEnabled = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func paint(text string, codes ...string) string {
	if !colorEnabled || text == "" {
		return text
	}
	return strings.Join(codes, "") + text + ansiReset
}

func red(text string) string { return paint(text, ansiRed, ansiBold) }

// Format renders the error for a terminal: a header with code and category,
// the source excerpt for template errors, the detail, the chain of wrapped
// causes and the hint.
func (e *WeftError) Format() string {
	var b strings.Builder

	header := e.Message
	if e.Code != "" {
		header = e.Code + ": " + e.Message
	}
	fmt.Fprintf(&b, "\n%s %s", red("ERROR"), paint(header, ansiBold))
	if e.Category != "" {
		fmt.Fprintf(&b, " %s", paint("["+string(e.Category)+"]", ansiGray))
	}
	b.WriteString("\n\n")

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n", paint(e.Location.String(), ansiCyan))
		writeExcerpt(&b, e.Location, e.Context)
		b.WriteString("\n")
	}

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if causes := e.causes(); len(causes) > 0 {
		fmt.Fprintf(&b, "  %s\n", paint("Caused by:", ansiYellow))
		for _, c := range causes {
			fmt.Fprintf(&b, "    %s\n", c)
		}
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", paint("Hint: ", ansiCyan), e.Suggestion)
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s%s\n", paint("Learn more: ", ansiGray), paint(e.DocURL, ansiBlue))
	}
	return b.String()
}

// writeExcerpt prints context lines centered on loc, marking the failing
// line and column.
func writeExcerpt(b *strings.Builder, loc *Location, lines []string) {
	first := loc.Line - len(lines)/2
	for i, line := range lines {
		n := first + i
		marker := "  "
		if n == loc.Line {
			marker = red("> ")
		}
		fmt.Fprintf(b, "  %s%4d %s %s\n", marker, n, paint("|", ansiGray), line)
		if n == loc.Line && loc.Column > 0 {
			fmt.Fprintf(b, "         %s %s%s\n", paint("|", ansiGray), strings.Repeat(" ", loc.Column-1), red("^"))
		}
	}
}

// causes lists the messages of the wrapped chain, outermost first. Nested
// WeftErrors contribute their code and message only.
func (e *WeftError) causes() []string {
	var out []string
	for err := e.Wrapped; err != nil; err = stderrors.Unwrap(err) {
		if we, ok := err.(*WeftError); ok {
			out = append(out, we.Code+": "+we.Message)
			continue
		}
		out = append(out, err.Error())
		break
	}
	return out
}

// FormatCompact returns "file:line:col: CODE: Message".
func (e *WeftError) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	DocURL     string    `json:"docUrl,omitempty"`
	Cause      string    `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *WeftError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText splits text into lines of at most width characters, breaking on
// whitespace. Words longer than width get a line of their own.
func wrapText(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Fprint writes err to w, formatted when it is a WeftError.
func Fprint(w io.Writer, err error) {
	var we *WeftError
	if stderrors.As(err, &we) {
		fmt.Fprint(w, we.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red("ERROR"), err.Error())
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
