package gcc

import (
	"regexp"
)

// inputCall matches calls to the stdio input functions. This is the whole
// "does the program read stdin" heuristic: pure pattern matching on the
// source text, no parsing. A call hidden behind a macro won't match, and a
// commented-out scanf will — both are accepted limitations carried over
// from the behaviour this replaces.
var inputCall = regexp.MustCompile(`\b(scanf|fscanf|vscanf|gets|fgets|getchar|getc|getline|fread|read)\s*\(`)

// readsStdin reports whether the source appears to read from stdin, which
// decides whether the program's input pipe is left open for a resume round.
func readsStdin(source string) bool {
	return inputCall.MatchString(source)
}
