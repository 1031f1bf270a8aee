package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossCheck_Agrees(t *testing.T) {
	tests := []string{
		"",
		"git status --short",
		"a | b | c && d || e; f",
		"ls 2>/dev/null >> out.txt < in.txt",
		"make 2>&1 | tee build.log",
		`echo a\ b "c \"d\" \n" 'e\f' ''`,
		"echo one \\\n two",
		"ls *.go ~/notes",
		"pwd\nls",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			list, err := ParseCommand(input)
			require.NoError(t, err)

			assert.NoError(t, CrossCheck(input, list))
		})
	}
}

func TestCrossCheck_Disagrees(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"comment", "echo a #b"},
		{"comment hides a command", "echo ok #; rm -rf /"},
		{"positional parameter", "echo $1"},
		{"special parameter", "echo $?"},
		{"parameter in double quotes", `echo "$$"`},
		{"assignment prefix", "PAGER=less git log"},
		{"negation", "! ls"},
		{"here-string", "cat <<< hello"},
		{"all-output redirection", "ls &> out.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := ParseCommand(tt.input)
			if err != nil {
				t.Skipf("rejected by the lexer already: %v", err)
			}

			assert.ErrorIs(t, CrossCheck(tt.input, list), ErrInterpretationMismatch)
		})
	}
}

func TestCrossCheck_BashSyntaxErrorIsLeftToLexer(t *testing.T) {
	input := "ls ;; pwd"
	list, err := ParseCommand(input)
	require.NoError(t, err)

	assert.NoError(t, CrossCheck(input, list))
}

func TestCrossCheck_ReportsDifferentList(t *testing.T) {
	list := CommandList{{Executable: "echo", Args: []string{"a"}}}

	err := CrossCheck("echo b", list)

	require.ErrorIs(t, err, ErrInterpretationMismatch)
	assert.Contains(t, err.Error(), `"echo b"`)
}
