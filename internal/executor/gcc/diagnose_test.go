package gcc

import (
	"testing"

	"github.com/sakif/c-playground/internal/executor"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name        string
		diagnostics string
		want        executor.Category
	}{
		{
			name:        "missing semicolon",
			diagnostics: "main.c:4:5: error: expected ';' before 'return'",
			want:        executor.CategorySyntax,
		},
		{
			name:        "plain syntax error",
			diagnostics: "main.c:2:1: error: syntax error before '}' token",
			want:        executor.CategorySyntax,
		},
		{
			name:        "undefined function at link time",
			diagnostics: "/usr/bin/ld: main.o: in function `main':\nmain.c:(.text+0xa): undefined reference to `mystery'",
			want:        executor.CategoryLinker,
		},
		{
			name:        "implicit declaration",
			diagnostics: "main.c:3:5: warning: implicit declaration of function 'strlen'",
			want:        executor.CategoryImplicitDecl,
		},
		{
			name:        "unrecognized text",
			diagnostics: "main.c:1:1: error: unknown type name 'foo'",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hint := categorize(tt.diagnostics)
			assert.Equal(t, tt.want, got)
			if tt.want != "" {
				assert.NotEmpty(t, hint, "every category carries a fix suggestion")
			}
		})
	}
}

// "expected" alone must not shadow the more specific linker and implicit
// declaration markers when both appear in one diagnostic dump.
func TestCategorize_SpecificityOrder(t *testing.T) {
	mixed := "main.c:3: warning: implicit declaration of function 'f', expected declaration"
	got, _ := categorize(mixed)
	assert.Equal(t, executor.CategoryImplicitDecl, got)
}

func TestReadsStdin(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"scanf", `int main(void){int n; scanf("%d",&n);}`, true},
		{"getchar", `int main(void){int c = getchar();}`, true},
		{"fgets with spacing", "char b[10];\nfgets (b, 10, stdin);", true},
		{"no input calls", `int main(void){return 0;}`, false},
		{"identifier containing scanf", `int rescanfactor = 1;`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readsStdin(tt.source))
		})
	}
}
