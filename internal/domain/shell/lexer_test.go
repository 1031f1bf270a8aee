package shell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(v string) Token     { return Token{Type: TokenWord, Value: v} }
func op(v string) Token       { return Token{Type: TokenOperator, Value: v} }
func redirect(v string) Token { return Token{Type: TokenRedirect, Value: v} }

var eof = Token{Type: TokenEOF}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "empty input",
			input: "",
			want:  []Token{eof},
		},
		{
			name:  "whitespace only",
			input: " \t  ",
			want:  []Token{eof},
		},
		{
			name:  "simple words",
			input: "ls -la  src",
			want:  []Token{word("ls"), word("-la"), word("src"), eof},
		},
		{
			name:  "operators longest first",
			input: "a && b || c | d ; e",
			want: []Token{
				word("a"), op("&&"), word("b"), op("||"), word("c"),
				op("|"), word("d"), op(";"), word("e"), eof,
			},
		},
		{
			name:  "operators without spaces",
			input: "a&&b||c|d;e",
			want: []Token{
				word("a"), op("&&"), word("b"), op("||"), word("c"),
				op("|"), word("d"), op(";"), word("e"), eof,
			},
		},
		{
			name:  "single quotes are literal",
			input: `echo '$HOME $(x) \n "q"'`,
			want:  []Token{word("echo"), word(`$HOME $(x) \n "q"`), eof},
		},
		{
			name:  "double quote escapes",
			input: `echo "a\"b\\c\$d\` + "`" + `e\nf"`,
			want:  []Token{word("echo"), word("a\"b\\c$d`e\\nf"), eof},
		},
		{
			name:  "quote concatenation",
			input: `echo 'foo'"bar"baz`,
			want:  []Token{word("echo"), word("foobarbaz"), eof},
		},
		{
			name:  "empty quoted argument",
			input: `grep "" file`,
			want:  []Token{word("grep"), word(""), word("file"), eof},
		},
		{
			name:  "backslash outside quotes",
			input: `echo a\ b \$HOME \;`,
			want:  []Token{word("echo"), word("a b"), word("$HOME"), word(";"), eof},
		},
		{
			name:  "trailing backslash is ignored",
			input: `echo hi \`,
			want:  []Token{word("echo"), word("hi"), eof},
		},
		{
			name:  "line continuation",
			input: "echo a \\\n b",
			want:  []Token{word("echo"), word("a"), word("b"), eof},
		},
		{
			name:  "newline separates commands",
			input: "echo a\necho b",
			want:  []Token{word("echo"), word("a"), op(";"), word("echo"), word("b"), eof},
		},
		{
			name:  "dollar followed by digit is literal",
			input: `echo "$5" $5 cost$`,
			want:  []Token{word("echo"), word("$5"), word("$5"), word("cost$"), eof},
		},
		{
			name:  "redirect with space folds target",
			input: "cmd 2> /dev/null",
			want:  []Token{word("cmd"), redirect("2>/dev/null"), eof},
		},
		{
			name:  "redirect without space",
			input: "cmd 2>/dev/null",
			want:  []Token{word("cmd"), redirect("2>/dev/null"), eof},
		},
		{
			name:  "append and input redirects",
			input: "sort < in.txt >> out.txt",
			want:  []Token{word("sort"), redirect("<in.txt"), redirect(">>out.txt"), eof},
		},
		{
			name:  "quoted redirect target",
			input: `echo hi > "my file"`,
			want:  []Token{word("echo"), word("hi"), redirect(">my file"), eof},
		},
		{
			name:  "fd to fd redirect",
			input: "make 2>&1 | tee log",
			want:  []Token{word("make"), redirect("2>&1"), op("|"), word("tee"), word("log"), eof},
		},
		{
			name:  "fd to fd without source fd",
			input: "echo oops >&2",
			want:  []Token{word("echo"), word("oops"), redirect(">&2"), eof},
		},
		{
			name:  "redirect ends a word",
			input: "echo a2>x",
			want:  []Token{word("echo"), word("a2"), redirect(">x"), eof},
		},
		{
			name:  "utf8 words",
			input: "echo héllo 世界",
			want:  []Token{word("echo"), word("héllo"), word("世界"), eof},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_RejectsUnsupportedFeatures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		feature string
	}{
		{"command substitution", "echo $(whoami)", "command substitution"},
		{"backticks", "echo `whoami`", "command substitution"},
		{"backticks in double quotes", "echo \"`whoami`\"", "command substitution"},
		{"substitution in double quotes", `echo "$(whoami)"`, "command substitution"},
		{"arithmetic", "echo $((1+2))", "arithmetic expansion"},
		{"variable", "echo $HOME", "variable expansion"},
		{"underscore variable", "echo $_x", "variable expansion"},
		{"braced variable", "echo ${HOME}", "variable expansion"},
		{"variable in double quotes", `echo "$HOME"`, "variable expansion"},
		{"process substitution input", "diff <(ls) b", "process substitution"},
		{"process substitution output", "tee >(cat)", "process substitution"},
		{"subshell", "(cmd1; cmd2)", "subshell"},
		{"closing paren", "echo a)", "subshell"},
		{"brace group", "{ ls; }", "brace group"},
		{"brace expansion", "cat {a,b}", "brace"},
		{"background job", "sleep 1 & rm x", "background"},
		{"both streams redirect", "ls &> out", "background"},
		{"here document", "cat <<EOF", "here-document"},
		{"here string", "cat <<< hi", "here-document"},
		{"ansi c quoting", "echo $'\\x41'", "ANSI-C"},
		{"quoted fd-like target", "echo hi > '&1'", "ambiguous redirection target"},
		{"double quoted fd close target", `echo hi 2> "&-"`, "ambiguous redirection target"},
		{"escaped ampersand target", `echo hi >\&2`, "ambiguous redirection target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)

			var lexErr *LexerError
			require.True(t, errors.As(err, &lexErr), "expected *LexerError, got %T", err)
			assert.ErrorIs(t, err, ErrUnsupportedFeature)
			assert.Contains(t, err.Error(), tt.feature)
		})
	}
}

func TestTokenize_QuotingErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unterminated single quote", "echo 'abc", ErrUnterminatedQuote},
		{"unterminated double quote", `echo "abc`, ErrUnterminatedQuote},
		{"backslash at end of double quote", `echo "abc\`, ErrUnterminatedQuote},
		{"redirect at end", "echo hi >", ErrMissingRedirectTarget},
		{"redirect before operator", "echo hi > && ls", ErrMissingRedirectTarget},
		{"redirect before redirect", "echo hi > > x", ErrMissingRedirectTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
