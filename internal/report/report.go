// Package report renders validation runs as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/xylographe/SE-WordListValidator/internal/diag"
)

// Entry is the outcome of validating one file.
type Entry struct {
	File     string
	Kind     string
	Valid    bool
	Items    int
	Changed  bool
	Error    string
	Messages []diag.Message
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Build returns a Markdown report: a summary table followed by the
// diagnostics of every file that has any.
func Build(title string, entries []Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	failed := 0
	for _, e := range entries {
		if !e.Valid {
			failed++
		}
	}
	fmt.Fprintf(&b, "%d file(s) validated, %d failed.\n\n", len(entries), failed)
	if len(entries) == 0 {
		return b.String()
	}

	b.WriteString("| File | Kind | Result | Items | Warnings | Changed |\n")
	b.WriteString("|---|---|---|---:|---:|---|\n")
	for _, e := range entries {
		result := "ok"
		if !e.Valid {
			result = "**failed**"
		}
		changed := "no"
		if e.Changed {
			changed = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %s |\n",
			escape(e.File), escape(e.Kind), result, e.Items, count(e.Messages, diag.Warning), changed)
	}

	for _, e := range entries {
		if e.Error == "" && len(e.Messages) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", escape(e.File))
		if e.Error != "" {
			fmt.Fprintf(&b, "- **error** %s\n", escape(e.Error))
		}
		for _, m := range e.Messages {
			fmt.Fprintf(&b, "- **%s** %s\n", m.Severity, escape(m.String()))
		}
	}
	return b.String()
}

// RenderHTML converts a Markdown report to HTML.
func RenderHTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func count(msgs []diag.Message, sev diag.Severity) int {
	n := 0
	for _, m := range msgs {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
	"#", `\#`,
)

func escape(s string) string {
	return escaper.Replace(strings.ReplaceAll(s, "\n", " "))
}
