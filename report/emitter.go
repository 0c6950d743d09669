package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"
)

// RunInfo describes the run that a report is about.
type RunInfo struct {
	Title    string
	RootURL  string
	Started  time.Time
	Finished time.Time
}

// Emitter writes the rows of a finished run somewhere. The suite driver calls each configured
// emitter in turn after aggregation.
type Emitter interface {
	Emit(rows []ResultRow, info RunInfo) error
}

// fileEmitter is the part shared by emitters that write a single file.
type fileEmitter struct {
	path   string
	render func(w io.Writer, rows []ResultRow, info RunInfo) error
	logger framework.Logger
}

func (f fileEmitter) Emit(rows []ResultRow, info RunInfo) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := f.render(file, rows, info); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	if f.logger != nil {
		f.logger.Printf("Wrote %s", f.path)
	}
	return nil
}

const (
	HTMLFileName = "report.html"
	EARLFileName = "earl-report.ttl"
	JSONFileName = "results.json"
)

// DefaultEmitters returns the HTML, EARL and JSON emitters, all writing beneath outputDir.
func DefaultEmitters(outputDir string, logger framework.Logger) []Emitter {
	return []Emitter{
		NewHTMLEmitter(filepath.Join(outputDir, HTMLFileName), logger),
		NewEARLEmitter(filepath.Join(outputDir, EARLFileName), logger),
		NewJSONEmitter(filepath.Join(outputDir, JSONFileName), logger),
	}
}
