package report

import (
	"fmt"
	"io"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework"

	"github.com/google/uuid"
	"github.com/knakk/rdf"
)

const (
	earlNS    = "http://www.w3.org/ns/earl#"
	dctermsNS = "http://purl.org/dc/terms/"
	rdfType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

// EARLEmitter writes one EARL assertion per row, encoded as Turtle. Each run gets its own
// assertor IRI.
type EARLEmitter struct {
	fileEmitter
	// Assertor identifies the software making the assertions. A urn:uuid IRI is generated if it
	// is empty.
	Assertor string
}

func NewEARLEmitter(path string, logger framework.Logger) *EARLEmitter {
	e := &EARLEmitter{}
	e.fileEmitter = fileEmitter{path: path, render: e.Render, logger: logger}
	return e
}

func outcomeOf(s Status) string {
	switch s {
	case StatusPass:
		return earlNS + "passed"
	case StatusFail:
		return earlNS + "failed"
	default:
		return earlNS + "untested"
	}
}

type tripleBuilder struct {
	triples []rdf.Triple
	err     error
}

func (b *tripleBuilder) iri(s string) rdf.IRI {
	i, err := rdf.NewIRI(s)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("invalid IRI %q: %w", s, err)
	}
	return i
}

func (b *tripleBuilder) blank(id string) rdf.Blank {
	n, err := rdf.NewBlank(id)
	if err != nil && b.err == nil {
		b.err = err
	}
	return n
}

func (b *tripleBuilder) literal(v interface{}) rdf.Literal {
	l, err := rdf.NewLiteral(v)
	if err != nil && b.err == nil {
		b.err = err
	}
	return l
}

func (b *tripleBuilder) add(s rdf.Subject, p string, o rdf.Object) {
	b.triples = append(b.triples, rdf.Triple{Subj: s, Pred: b.iri(p), Obj: o})
}

// Triples builds the assertion graph.
func (e *EARLEmitter) Triples(rows []ResultRow, info RunInfo) ([]rdf.Triple, error) {
	var b tripleBuilder
	assertorIRI := e.Assertor
	if assertorIRI == "" {
		assertorIRI = "urn:uuid:" + uuid.NewString()
	}
	assertor := b.iri(assertorIRI)
	b.add(assertor, rdfType, b.iri(earlNS+"Software"))
	b.add(assertor, dctermsNS+"title", b.literal(info.Title))

	var subject rdf.Object = assertor
	if info.RootURL != "" {
		s := b.iri(info.RootURL)
		b.add(s, rdfType, b.iri(earlNS+"TestSubject"))
		subject = s
	}

	for i, r := range rows {
		assertion := b.blank(fmt.Sprintf("assertion%d", i+1))
		result := b.blank(fmt.Sprintf("result%d", i+1))
		b.add(assertion, rdfType, b.iri(earlNS+"Assertion"))
		b.add(assertion, earlNS+"assertedBy", assertor)
		b.add(assertion, earlNS+"subject", subject)
		if r.SpecLink != "" {
			b.add(assertion, earlNS+"test", b.iri(r.SpecLink))
		}
		b.add(assertion, dctermsNS+"title", b.literal(r.DisplayLabel))
		b.add(assertion, earlNS+"result", result)
		b.add(result, rdfType, b.iri(earlNS+"TestResult"))
		b.add(result, earlNS+"outcome", b.iri(outcomeOf(r.Status)))
		b.add(result, dctermsNS+"description", b.literal(r.Description))
		if r.Detail != "" {
			b.add(result, earlNS+"info", b.literal(r.Detail))
		}
		if !info.Finished.IsZero() {
			b.add(result, dctermsNS+"date", b.literal(info.Finished))
		}
	}
	return b.triples, b.err
}

func (e *EARLEmitter) Render(w io.Writer, rows []ResultRow, info RunInfo) error {
	triples, err := e.Triples(rows, info)
	if err != nil {
		return err
	}
	enc := rdf.NewTripleEncoder(w, rdf.Turtle)
	if err := enc.EncodeAll(triples); err != nil {
		return err
	}
	return enc.Close()
}
