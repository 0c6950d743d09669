package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// HTMLEmitter writes a summary and a table of all rows as a standalone HTML page. The page is
// written as GitHub-flavored Markdown first and then rendered.
type HTMLEmitter struct {
	fileEmitter
	markdown goldmark.Markdown
}

func NewHTMLEmitter(path string, logger framework.Logger) *HTMLEmitter {
	// Raw HTML is let through for the <br> that markdownMultiline emits; cell text is escaped.
	e := &HTMLEmitter{markdown: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)}
	e.fileEmitter = fileEmitter{path: path, render: e.Render, logger: logger}
	return e
}

func (e *HTMLEmitter) Render(w io.Writer, rows []ResultRow, info RunInfo) error {
	var body bytes.Buffer
	if err := e.markdown.Convert([]byte(Markdown(rows, info)), &body); err != nil {
		return err
	}
	title := html.EscapeString(info.Title)
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; vertical-align: top; }
</style>
</head>
<body>
%s</body>
</html>
`, title, body.String())
	return err
}

// Markdown renders the report as GitHub-flavored Markdown.
func Markdown(rows []ResultRow, info RunInfo) string {
	var b strings.Builder
	counts := Summarize(rows)
	fmt.Fprintf(&b, "# %s\n\n", markdownEscape(info.Title))
	if info.RootURL != "" {
		fmt.Fprintf(&b, "Repository: %s\n\n", markdownEscape(info.RootURL))
	}
	if !info.Started.IsZero() {
		fmt.Fprintf(&b, "Run: %s to %s\n\n", info.Started.Format(time.RFC3339), info.Finished.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "%d tests: %d passed, %d failed, %d skipped\n\n",
		counts.Total(), counts.Passed, counts.Failed, counts.Skipped)

	b.WriteString("| Test | Level | Status | Description | Detail |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range rows {
		label := markdownEscape(r.DisplayLabel)
		if r.SpecLink != "" {
			label = "[" + label + "](" + r.SpecLink + ")"
		}
		fmt.Fprintf(&b, "| %s | %s | **%s** | %s | %s |\n",
			label, r.Level, r.Status, markdownEscape(r.Description), markdownMultiline(r.Detail))
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer( //nolint:gochecknoglobals
	`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`",
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
	"\r\n", " ", "\n", " ",
)

// markdownEscape makes text safe to put in a single table cell.
func markdownEscape(s string) string {
	return markdownEscaper.Replace(s)
}

// markdownMultiline escapes each line of s and keeps the line breaks inside the table cell.
func markdownMultiline(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = markdownEscape(l)
	}
	return strings.Join(lines, "<br>")
}
