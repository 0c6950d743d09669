package mockldp

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/turtle"
)

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

var (
	sparqlPrefix = regexp.MustCompile(`(?im)^\s*PREFIX\s+(\S*:)\s*(<[^>]*>)\s*$`) //nolint:gochecknoglobals
	aclAgentRe   = regexp.MustCompile(`acl:agent\s+<([^>]*)>`)                   //nolint:gochecknoglobals
)

func containsServerManaged(body []byte) bool {
	s := string(body)
	return strings.Contains(s, "ldp:contains") || strings.Contains(s, ldpNS+"contains")
}

// checkRDF rejects bodies that touch server managed triples or are not Turtle.
func (r *Repository) checkRDF(w http.ResponseWriter, req *http.Request, body []byte) bool {
	if containsServerManaged(body) {
		r.conflict(w, req, "server managed triples cannot be set by clients")
		return false
	}
	if _, err := turtle.Parse(string(body), absolute(req, req.URL.Path)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// renderRDF serves the client's triples followed by the server managed ones.
func (r *Repository) renderRDF(req *http.Request, res *resource, prefer preference) []byte {
	var b strings.Builder
	b.Write(res.body)
	b.WriteString("\n")
	for _, t := range typesOf(res) {
		fmt.Fprintf(&b, "<> <%s> <%s> .\n", rdfType, t)
	}
	if res.kind.isContainer() && !prefer.omits(ldpNS+"PreferContainment") {
		for _, c := range res.children {
			fmt.Fprintf(&b, "<> <%scontains> <%s> .\n", ldpNS, absolute(req, c))
		}
	}
	return []byte(b.String())
}

// sparqlInsert extracts the triples of an INSERT or INSERT DATA block as Turtle. Only the shape
// of update the conformance tests send is understood.
func sparqlInsert(update string) (string, error) {
	if strings.Count(update, "{") != strings.Count(update, "}") {
		return "", errors.New("malformed SPARQL update: unbalanced braces")
	}
	upper := strings.ToUpper(update)
	i := strings.Index(upper, "INSERT")
	if i < 0 {
		return "", nil
	}
	open := strings.Index(update[i:], "{")
	if open < 0 {
		return "", errors.New("malformed SPARQL update: INSERT without a block")
	}
	start := i + open + 1
	end := strings.Index(update[start:], "}")
	if end < 0 {
		return "", errors.New("malformed SPARQL update: unterminated INSERT block")
	}
	var b strings.Builder
	for _, m := range sparqlPrefix.FindAllStringSubmatch(update, -1) {
		fmt.Fprintf(&b, "@prefix %s %s .\n", m[1], m[2])
	}
	b.WriteString(strings.TrimSpace(update[start : start+end]))
	b.WriteString("\n")
	return b.String(), nil
}

func aclAgent(body []byte) string {
	if m := aclAgentRe.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return ""
}

type preference struct {
	ret     string
	include []string
	omit    []string
}

func (p preference) omits(uri string) bool {
	for _, o := range p.omit {
		if o == uri {
			return true
		}
	}
	return false
}

// parsePrefer understands `return=representation; include="a b"; omit="c"`.
func parsePrefer(header string) preference {
	var p preference
	for _, part := range strings.Split(header, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		value = strings.Trim(strings.TrimSpace(value), `"`)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "return":
			p.ret = value
		case "include":
			p.include = strings.Fields(value)
		case "omit":
			p.omit = strings.Fields(value)
		}
	}
	return p
}
