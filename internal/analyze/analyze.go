// Package analyze produces the cosmetic "explanation" panel for submitted
// C source: lists of includes, defines, functions, variables, and keyword
// counts, plus a rendered summary.
//
// This is display candy, not analysis. Everything here is regex matching on
// raw text — there is no tokenizer, no grammar, no symbol table, and the
// results have zero influence on compilation (the gcc executor never calls
// into this package). It will happily "find" a function inside a comment.
package analyze

import (
	"fmt"
	"regexp"
	"strings"
)

// Report is the structured result of scanning one source file.
type Report struct {
	Lines     int            `json:"lines"`
	Includes  []string       `json:"includes"`
	Defines   []Define       `json:"defines"`
	Functions []Function     `json:"functions"`
	Variables []Variable     `json:"variables"`
	Keywords  map[string]int `json:"keywords"`
	Comments  int            `json:"comments"`
}

// Define is one #define directive.
type Define struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Function is a matched function definition or declaration.
type Function struct {
	Name       string `json:"name"`
	ReturnType string `json:"returnType"`
	HasBody    bool   `json:"hasBody"`
}

// Variable is a matched top-level-ish variable declaration.
type Variable struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// cKeywords are the C89 reserved words the panel counts.
var cKeywords = []string{
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if",
	"int", "long", "register", "return", "short", "signed", "sizeof",
	"static", "struct", "switch", "typedef", "union", "unsigned", "void",
	"volatile", "while",
}

var (
	includeRe = regexp.MustCompile(`(?m)^\s*#\s*include\s*[<"]([^>"]+)[>"]`)
	defineRe  = regexp.MustCompile(`(?m)^\s*#\s*define\s+(\w+)(?:\s+(.*))?$`)
	// Return type, name, parameter list, then either "{" (definition) or
	// ";" (declaration). Deliberately loose.
	functionRe = regexp.MustCompile(`(?m)^\s*((?:unsigned\s+|signed\s+|const\s+)?(?:void|int|char|float|double|long|short)\s*\**)\s*(\w+)\s*\([^;{)]*\)\s*(\{|;)`)
	variableRe = regexp.MustCompile(`(?m)^\s*((?:unsigned\s+|signed\s+|const\s+|static\s+)?(?:int|char|float|double|long|short)\s*\**)\s+(\w+)\s*(?:=[^;]+)?;`)
	commentRe  = regexp.MustCompile(`//[^\n]*|/\*[\s\S]*?\*/`)

	keywordRes = buildKeywordPatterns()
)

func buildKeywordPatterns() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(cKeywords))
	for _, kw := range cKeywords {
		m[kw] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return m
}

// Scan inspects source and builds a Report.
func Scan(source string) *Report {
	r := &Report{
		Lines:    len(strings.Split(source, "\n")),
		Keywords: make(map[string]int),
	}

	for _, m := range includeRe.FindAllStringSubmatch(source, -1) {
		r.Includes = append(r.Includes, m[1])
	}

	for _, m := range defineRe.FindAllStringSubmatch(source, -1) {
		r.Defines = append(r.Defines, Define{
			Name:  m[1],
			Value: strings.TrimSpace(m[2]),
		})
	}

	for _, m := range functionRe.FindAllStringSubmatch(source, -1) {
		r.Functions = append(r.Functions, Function{
			Name:       m[2],
			ReturnType: strings.TrimSpace(m[1]),
			HasBody:    m[3] == "{",
		})
	}

	funcNames := make(map[string]bool, len(r.Functions))
	for _, f := range r.Functions {
		funcNames[f.Name] = true
	}

	for _, m := range variableRe.FindAllStringSubmatch(source, -1) {
		name := m[2]
		if funcNames[name] {
			continue
		}
		r.Variables = append(r.Variables, Variable{
			Name: name,
			Type: strings.TrimSpace(m[1]),
		})
	}

	for kw, re := range keywordRes {
		if n := len(re.FindAllStringIndex(source, -1)); n > 0 {
			r.Keywords[kw] = n
		}
	}

	r.Comments = len(commentRe.FindAllStringIndex(source, -1))

	return r
}

// Explanation renders the report as a readable summary for the panel.
func (r *Report) Explanation() string {
	var b strings.Builder

	b.WriteString("## Code Overview\n")
	fmt.Fprintf(&b, "- %d lines, %d comments\n", r.Lines, r.Comments)

	if len(r.Includes) > 0 {
		fmt.Fprintf(&b, "\n### Headers (%d)\n", len(r.Includes))
		for _, inc := range r.Includes {
			fmt.Fprintf(&b, "- `%s`\n", inc)
		}
	}

	if len(r.Defines) > 0 {
		fmt.Fprintf(&b, "\n### Preprocessor Definitions (%d)\n", len(r.Defines))
		for _, d := range r.Defines {
			if d.Value != "" {
				fmt.Fprintf(&b, "- `%s` = `%s`\n", d.Name, d.Value)
			} else {
				fmt.Fprintf(&b, "- `%s`\n", d.Name)
			}
		}
	}

	if len(r.Functions) > 0 {
		fmt.Fprintf(&b, "\n### Functions (%d)\n", len(r.Functions))
		for _, f := range r.Functions {
			kind := "declaration"
			if f.HasBody {
				kind = "definition"
			}
			fmt.Fprintf(&b, "- **%s** (returns %s, %s)\n", f.Name, f.ReturnType, kind)
		}
	}

	if len(r.Variables) > 0 {
		fmt.Fprintf(&b, "\n### Variables (%d)\n", len(r.Variables))
		for _, v := range r.Variables {
			fmt.Fprintf(&b, "- **%s** (%s)\n", v.Name, v.Type)
		}
	}

	return b.String()
}
