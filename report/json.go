package report

import (
	"io"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// JSONEmitter writes the summary and rows as a single JSON object, for consumption by other
// tools.
type JSONEmitter struct {
	fileEmitter
}

func NewJSONEmitter(path string, logger framework.Logger) *JSONEmitter {
	e := &JSONEmitter{}
	e.fileEmitter = fileEmitter{path: path, render: e.Render, logger: logger}
	return e
}

func (e *JSONEmitter) Render(w io.Writer, rows []ResultRow, info RunInfo) error {
	_, err := w.Write(JSON(rows, info))
	return err
}

// JSON encodes the report.
func JSON(rows []ResultRow, info RunInfo) []byte {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("title").String(info.Title)
	obj.Name("rootURL").String(info.RootURL)
	if !info.Started.IsZero() {
		obj.Name("started").String(info.Started.Format(time.RFC3339))
		obj.Name("finished").String(info.Finished.Format(time.RFC3339))
	}

	counts := Summarize(rows)
	summary := obj.Name("summary").Object()
	summary.Name("total").Int(counts.Total())
	summary.Name("passed").Int(counts.Passed)
	summary.Name("failed").Int(counts.Failed)
	summary.Name("skipped").Int(counts.Skipped)
	summary.End()

	arr := obj.Name("results").Array()
	for _, r := range rows {
		row := w.Object()
		row.Name("id").String(r.ID)
		row.Name("title").String(r.Title)
		row.Name("testClass").String(r.TestClass)
		row.Name("label").String(r.DisplayLabel)
		row.Name("level").String(r.Level.String())
		row.Name("status").String(r.Status.String())
		row.Name("specLink").String(r.SpecLink)
		row.Name("description").String(r.Description)
		if r.Detail != "" {
			row.Name("detail").String(r.Detail)
		}
		row.End()
	}
	arr.End()
	obj.End()
	return w.Bytes()
}
