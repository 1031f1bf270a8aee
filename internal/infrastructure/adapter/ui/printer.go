package ui

import (
	"code-agent-guard/internal/application/dto"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const colorReset = "\x1b[0m"

// ColorScheme holds the ANSI sequences used for each kind of output.
type ColorScheme struct {
	Allowed string
	Denied  string
	Danger  string
	Info    string
	Prompt  string
}

// DefaultColorScheme returns the ANSI color scheme for terminals.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Allowed: "\x1b[92m", // Green
		Denied:  "\x1b[91m", // Red
		Danger:  "\x1b[95m", // Magenta
		Info:    "\x1b[96m", // Cyan
		Prompt:  "\x1b[94m", // Blue
	}
}

// Printer renders verdicts and parse results as text.
type Printer struct {
	out    io.Writer
	colors ColorScheme
	color  bool
}

// NewPrinter creates a Printer writing to out. Colors are only emitted when
// color is true.
func NewPrinter(out io.Writer, color bool) *Printer {
	return &Printer{
		out:    out,
		colors: DefaultColorScheme(),
		color:  color,
	}
}

func (p *Printer) paint(color, text string) string {
	if !p.color || color == "" {
		return text
	}
	return color + text + colorReset
}

// PrintVerdict writes "allowed" or "denied: <reason>" for one check.
func (p *Printer) PrintVerdict(resp *dto.CheckCommandResponse) error {
	if resp.Allowed {
		_, err := fmt.Fprintln(p.out, p.paint(p.colors.Allowed, "allowed"))
		return err
	}

	if _, err := fmt.Fprintln(p.out, p.paint(p.colors.Denied, "denied: "+resp.Reason)); err != nil {
		return err
	}
	if resp.Dangerous {
		_, err := fmt.Fprintln(p.out, p.paint(p.colors.Danger, "warning: "+resp.Danger))
		return err
	}
	return nil
}

// PrintParse writes the token stream and the parsed commands.
func (p *Printer) PrintParse(resp *dto.ParseCommandResponse) error {
	var b strings.Builder

	b.WriteString(p.paint(p.colors.Info, "tokens:") + "\n")
	for _, tok := range resp.Tokens {
		if tok.Type == "eof" {
			fmt.Fprintf(&b, "  %s\n", tok.Type)
			continue
		}
		fmt.Fprintf(&b, "  %-8s %s\n", tok.Type, strconv.Quote(tok.Value))
	}

	b.WriteString(p.paint(p.colors.Info, "commands:") + "\n")
	for i, cmd := range resp.Commands {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, FormatCommand(cmd))
	}

	_, err := io.WriteString(p.out, b.String())
	return err
}

// PrintInfo writes an informational line.
func (p *Printer) PrintInfo(format string, args ...any) error {
	_, err := fmt.Fprintln(p.out, p.paint(p.colors.Info, fmt.Sprintf(format, args...)))
	return err
}

// PrintError writes an error line.
func (p *Printer) PrintError(err error) error {
	if err == nil {
		return nil
	}
	_, writeErr := fmt.Fprintln(p.out, p.paint(p.colors.Denied, "error: "+err.Error()))
	return writeErr
}

// FormatCommand renders a parsed command back as a bash command line, quoting
// every word so the output can be pasted into a shell unchanged.
func FormatCommand(cmd dto.CommandSummary) string {
	words := make([]string, 0, 1+len(cmd.Args)+len(cmd.Redirects))
	if cmd.ReceivingPipe {
		words = append(words, "|")
	}
	words = append(words, QuoteWord(cmd.Executable))
	for _, arg := range cmd.Args {
		words = append(words, QuoteWord(arg))
	}
	for _, r := range cmd.Redirects {
		op := ">"
		switch {
		case r.Direction == "input":
			op = "<"
		case r.Append:
			op = ">>"
		}
		words = append(words, op+QuoteWord(r.Target))
	}
	return strings.Join(words, " ")
}

// QuoteWord quotes s for bash. Words bash cannot represent fall back to Go quoting.
func QuoteWord(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return strconv.Quote(s)
	}
	return quoted
}
