package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCommandPermissions_Valid(t *testing.T) {
	require.NoError(t, ValidatePermissions(BuiltinCommandPermissions()))
}

func TestBuiltinCommandPermissions_FreshCopy(t *testing.T) {
	first := BuiltinCommandPermissions()
	delete(first, "ls")

	assert.Contains(t, BuiltinCommandPermissions(), "ls")
}

func TestBuiltinCommandPermissions(t *testing.T) {
	tests := []struct {
		command string
		allowed bool
	}{
		// reading
		{"ls", true},
		{"ls -la src", true},
		{"cat README.md | wc -l", true},
		{"head -n 20 main.go", true},
		{"tail -5 log.txt", true},
		{"cat .env", false},
		{"cat /etc/passwd", false},
		{"cat --show-all ../x", false},

		// searching
		{"grep -n TODO src/main.go", true},
		{"grep -r KEY .", false},
		{"grep -r -h . .", false},
		{"grep -rn TODO src", false},
		{"grep -R KEY src", false},
		{"grep --recursive KEY src", false},
		{"rg -i 'func main' .", true},
		{"rg -r x KEY src", false},
		{"grep -e -v README.md", true},
		{"grep -f /etc/shadow README.md", false},
		{"rg --pre=sh x src", false},
		{"find . -name main.go -type f", true},
		{"find . -delete", false},
		{"find / -name passwd", false},

		// text processing
		{"sort -u names.txt", true},
		{"sort --compress-program sh names.txt", false},
		{"sort -o /etc/hosts names.txt", false},
		{"diff a.txt b.txt", true},
		{"jq -r .name package.json", true},
		{"jq '.dependencies | keys' package.json", true},
		{"jq -c '.[] | select(.name == \"x\")' data.json", true},
		{"jq '.[0].scripts[\"build\"]' package.json", true},
		{"jq -n env", false},
		{"jq env package.json", false},
		{"jq '$ENV.ANTHROPIC_API_KEY' package.json", false},
		{"jq -r input_filename package.json", false},
		{"jq '.a | env' package.json", false},
		{"jq 'include \"x\"; .' package.json", false},
		{"jq '\"\\(env)\"' package.json", false},
		{"echo anything at all", true},

		// git
		{"git status", true},
		{"git log --oneline -n 5", true},
		{"git log -- main.go", true},
		{"git diff --stat --cached", true},
		{"git show HEAD~1", true},
		{"git show --output=/tmp/x", false},
		{"git stash list", true},
		{"git push origin main", false},
		{"git -c core.pager=sh log", false},

		// build and test
		{"go test ./...", true},
		{"go test -race -count=1 ./internal/...", true},
		{"go build", true},
		{"go test -exec rm ./...", false},
		{"go build -o /tmp/x .", false},
		{"go test ../other/...", false},
		{"go mod tidy", true},
		{"gofmt -l .", true},
		{"npm run build", true},
		{"npm install", false},
		{"mkdir -p build/out", true},
		{"touch notes.md", true},

		// everything else
		{"rm -rf build", false},
		{"curl https://example.com", false},
	}

	perms := BuiltinCommandPermissions()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got := IsCommandAllowedByConfig(tt.command, perms, testOptions())
			assert.Equal(t, tt.allowed, got.Allowed, "reason: %s", got.Reason)
		})
	}
}
