package ui_test

import (
	"bytes"
	"code-agent-guard/internal/application/dto"
	"code-agent-guard/internal/infrastructure/adapter/ui"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_PrintVerdict(t *testing.T) {
	tests := []struct {
		name string
		resp dto.CheckCommandResponse
		want string
	}{
		{
			name: "allowed",
			resp: dto.CheckCommandResponse{Allowed: true},
			want: "allowed\n",
		},
		{
			name: "denied",
			resp: dto.CheckCommandResponse{Reason: `command "curl" is not allowed`},
			want: "denied: command \"curl\" is not allowed\n",
		},
		{
			name: "dangerous",
			resp: dto.CheckCommandResponse{Reason: `command "rm" is not allowed`, Dangerous: true, Danger: "recursive force delete"},
			want: "denied: command \"rm\" is not allowed\nwarning: recursive force delete\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, ui.NewPrinter(&buf, false).PrintVerdict(&tt.resp))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_Colors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ui.NewPrinter(&buf, true).PrintVerdict(&dto.CheckCommandResponse{Allowed: true}))

	assert.Equal(t, ui.DefaultColorScheme().Allowed+"allowed\x1b[0m\n", buf.String())
}

func TestPrinter_PrintParse(t *testing.T) {
	resp := &dto.ParseCommandResponse{
		Tokens: []dto.TokenSummary{
			{Type: "word", Value: "grep"},
			{Type: "word", Value: "a b"},
			{Type: "operator", Value: "|"},
			{Type: "word", Value: "wc"},
			{Type: "eof"},
		},
		Commands: []dto.CommandSummary{
			{Executable: "grep", Args: []string{"a b"}},
			{Executable: "wc", Args: []string{}, ReceivingPipe: true},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ui.NewPrinter(&buf, false).PrintParse(resp))

	want := "tokens:\n" +
		"  word     \"grep\"\n" +
		"  word     \"a b\"\n" +
		"  operator \"|\"\n" +
		"  word     \"wc\"\n" +
		"  eof\n" +
		"commands:\n" +
		"  1. grep 'a b'\n" +
		"  2. | wc\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_PrintError(t *testing.T) {
	var buf bytes.Buffer
	p := ui.NewPrinter(&buf, false)

	require.NoError(t, p.PrintError(nil))
	require.NoError(t, p.PrintError(errors.New("boom")))
	require.NoError(t, p.PrintInfo("cwd: %s", "/project"))

	assert.Equal(t, "error: boom\ncwd: /project\n", buf.String())
}

func TestFormatCommand(t *testing.T) {
	cmd := dto.CommandSummary{
		Executable: "sort",
		Args:       []string{"-k2", "two words"},
		Redirects: []dto.RedirectSummary{
			{Target: "in.txt", Direction: "input"},
			{Target: "out file", Direction: "output", Append: true},
			{Target: "/dev/null", Direction: "output"},
		},
	}

	assert.Equal(t, `sort -k2 'two words' <in.txt >>'out file' >/dev/null`, ui.FormatCommand(cmd))
}

func TestQuoteWord(t *testing.T) {
	assert.Equal(t, "plain", ui.QuoteWord("plain"))
	assert.Equal(t, "'$HOME'", ui.QuoteWord("$HOME"))
	assert.Equal(t, "''", ui.QuoteWord(""))
}
