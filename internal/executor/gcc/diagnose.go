package gcc

import (
	"strings"

	"github.com/sakif/c-playground/internal/executor"
)

// categorize buckets gcc's diagnostic text into a display category with a
// fix suggestion. Plain substring matching on the lowercased text — the
// diagnostics themselves are passed through verbatim either way, so a
// missed match only costs the hint.
//
// Order matters: linker and implicit-declaration markers are more specific
// than the "expected ..." phrasing that shows up in all sorts of messages.
func categorize(diagnostics string) (executor.Category, string) {
	lower := strings.ToLower(diagnostics)

	switch {
	case strings.Contains(lower, "undefined reference"):
		return executor.CategoryLinker,
			"a function or variable is used but never defined — implement it, or include the header and link the library that provides it"

	case strings.Contains(lower, "implicit declaration"):
		return executor.CategoryImplicitDecl,
			"a function is called before any declaration is seen — add a prototype or include the appropriate header"

	case strings.Contains(lower, "syntax error"),
		strings.Contains(lower, "expected"):
		return executor.CategorySyntax,
			"check the reported line for a missing semicolon, bracket, or parenthesis"
	}

	return "", ""
}
