// Package turtle parses Turtle response bodies into a small queryable triple set.
package turtle

import (
	"fmt"
	"strings"

	"github.com/knakk/rdf"
)

// Namespaces used when inspecting repository responses.
const (
	LDP     = "http://www.w3.org/ns/ldp#"
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	DCTerms = "http://purl.org/dc/terms/"
	Fedora  = "http://fedora.info/definitions/v4/repository#"
	Memento = "http://mementoweb.org/ns#"
	ACL     = "http://www.w3.org/ns/auth/acl#"
)

// RDFType is rdf:type.
const RDFType = RDF + "type"

// Graph is an unordered set of triples.
type Graph struct {
	triples []rdf.Triple
}

// Parse decodes a Turtle document. Relative IRIs are resolved against base when it is not empty.
func Parse(body, base string) (*Graph, error) {
	doc := body
	if base != "" {
		doc = "@base <" + base + "> .\n" + body
	}
	triples, err := rdf.NewTripleDecoder(strings.NewReader(doc), rdf.Turtle).DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("response is not valid Turtle: %w", err)
	}
	return &Graph{triples: triples}, nil
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns a copy of the triples.
func (g *Graph) Triples() []rdf.Triple {
	return append([]rdf.Triple(nil), g.triples...)
}

// Contains returns true if some triple matches. An empty argument matches any term. Terms are
// compared by their lexical value, so an IRI and a literal with the same text both match.
func (g *Graph) Contains(subj, pred, obj string) bool {
	for _, t := range g.triples {
		if matches(t.Subj, subj) && matches(t.Pred, pred) && matches(t.Obj, obj) {
			return true
		}
	}
	return false
}

// HasPredicate returns true if any triple uses the predicate.
func (g *Graph) HasPredicate(pred string) bool {
	return g.Contains("", pred, "")
}

// Objects returns the values of all objects of triples with the given subject and predicate.
func (g *Graph) Objects(subj, pred string) []string {
	var ret []string
	for _, t := range g.triples {
		if matches(t.Subj, subj) && matches(t.Pred, pred) {
			ret = append(ret, t.Obj.String())
		}
	}
	return ret
}

// Subjects returns the subjects of all triples with the given predicate and object.
func (g *Graph) Subjects(pred, obj string) []string {
	var ret []string
	for _, t := range g.triples {
		if matches(t.Pred, pred) && matches(t.Obj, obj) {
			ret = append(ret, t.Subj.String())
		}
	}
	return ret
}

func matches(term rdf.Term, value string) bool {
	return value == "" || term.String() == value
}
