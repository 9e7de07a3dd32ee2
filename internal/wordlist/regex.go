package wordlist

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
)

// compileRegex compiles a pattern in the .NET dialect the dictionaries are
// written for.
func compileRegex(pattern string) (*regexp2.Regexp, error) {
	return regexp2.Compile(pattern, regexp2.None)
}

func invalidRegex(n Node, pattern string, err error) *StructuralError {
	return &StructuralError{
		Line:   n.Line,
		Column: n.Column,
		Msg:    fmt.Sprintf("Invalid regex \"%s\"", pattern),
		Err:    err,
	}
}

func checkFlaggedRegex(it *Item, n Node, _ diag.Sink) error {
	if !it.Regex {
		return nil
	}
	if _, err := compileRegex(it.Text); err != nil {
		return invalidRegex(n, it.Text, err)
	}
	return nil
}

func checkRegexReplacement(it *Item, n Node, sink diag.Sink) error {
	re, err := compileRegex(it.From)
	if err != nil {
		return invalidRegex(n, it.From, err)
	}
	it.To = CheckReplacement(re, it.To, n.Line, n.Column, sink)
	return nil
}
