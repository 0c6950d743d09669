package mockldp

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/helpers"

	"github.com/tomnomnom/linkheader"
)

const (
	ldpNS              = "http://www.w3.org/ns/ldp#"
	mementoNS          = "http://mementoweb.org/ns#"
	externalContentRel = "http://fedora.info/definitions/fcrepo#ExternalContent"
	constrainedByRel   = ldpNS + "constrainedBy"
	constraintsPath    = "/static/constraints.txt"
)

func (r *Repository) servePost(w http.ResponseWriter, req *http.Request) {
	path := cleanPath(req.URL.Path)
	body, _ := io.ReadAll(req.Body)
	r.lock.Lock()
	defer r.lock.Unlock()

	if strings.HasSuffix(path, versionsSuffix) {
		r.createMemento(w, req, strings.TrimSuffix(path, versionsSuffix))
		return
	}
	parent, status := r.live(path)
	if parent == nil {
		w.WriteHeader(status)
		return
	}
	if !parent.kind.isContainer() {
		w.Header().Set("Allow", r.allow(parent))
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	childPath := path + "/" + newSlug()
	if slug := strings.Trim(req.Header.Get("Slug"), "/ "); slug != "" && !strings.Contains(slug, "/") {
		if _, taken := r.resources[path+"/"+slug]; !taken {
			childPath = path + "/" + slug
		}
	}
	r.create(w, req, parent, childPath, body)
}

func (r *Repository) create(w http.ResponseWriter, req *http.Request, parent *resource, path string, body []byte) {
	if r.config.MaxDepth > 0 && depth(path) > r.config.MaxDepth {
		r.conflict(w, req, "resources may not be nested this deeply")
		return
	}
	links := linkheader.ParseMultiple(req.Header.Values("Link"))
	contentType := req.Header.Get("Content-Type")
	res := &resource{path: path, kind: interactionModel(links, contentType), version: 1}

	switch ext := links.FilterByRel(externalContentRel); {
	case len(ext) != 0:
		switch ext[0].Param("handling") {
		case "proxy", "copy", "redirect":
		default:
			http.Error(w, "unsupported external content handling", http.StatusBadRequest)
			return
		}
		src, _ := r.live(pathOf(ext[0].URL))
		if src == nil || src.kind.isRDF() {
			http.Error(w, "external content must be a binary in this repository", http.StatusBadRequest)
			return
		}
		res.kind = nonRDFSource
		res.body = src.body
		res.contentType = ext[0].Param("type")
		if res.contentType == "" {
			res.contentType = src.contentType
		}
	case res.kind.isRDF():
		if !r.checkRDF(w, req, body) {
			return
		}
		res.body = body
	default:
		if !checkDigest(w, req, body) {
			return
		}
		res.body = body
		res.contentType = contentType
	}

	r.resources[path] = res
	parent.children = append(parent.children, path)
	parent.version++
	w.Header().Set("Location", r.location(req, path))
	r.writeTypeLinks(w, res)
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(absolute(req, path)))
}

func (r *Repository) createMemento(w http.ResponseWriter, req *http.Request, originalPath string) {
	original, status := r.live(originalPath)
	if original == nil {
		w.WriteHeader(status)
		return
	}
	path := originalPath + versionsSuffix + "/" + mementoTimestamp(len(original.mementos))
	r.resources[path] = &resource{
		path:        path,
		kind:        original.kind,
		body:        original.body,
		contentType: original.contentType,
		version:     1,
		memento:     true,
	}
	original.mementos = append(original.mementos, path)
	w.Header().Set("Location", r.location(req, path))
	w.Header().Add("Link", "<"+mementoNS+"Memento>; rel=\"type\"")
	w.WriteHeader(http.StatusCreated)
}

func (r *Repository) servePut(w http.ResponseWriter, req *http.Request) {
	path := cleanPath(req.URL.Path)
	body, _ := io.ReadAll(req.Body)
	r.lock.Lock()
	defer r.lock.Unlock()

	if strings.HasSuffix(path, aclSuffix) {
		target, status := r.live(strings.TrimSuffix(path, aclSuffix))
		if target == nil {
			w.WriteHeader(status)
			return
		}
		created := target.aclBody == nil
		target.aclBody = body
		target.aclAgent = aclAgent(body)
		if created {
			w.WriteHeader(http.StatusCreated)
		} else {
			w.WriteHeader(http.StatusNoContent)
		}
		return
	}

	res, exists := r.resources[path]
	if !exists {
		parent, _ := r.live(parentPath(path))
		if parent == nil || !parent.kind.isContainer() {
			r.conflict(w, req, "the parent of a new resource must be an existing container")
			return
		}
		r.create(w, req, parent, path, body)
		return
	}
	if res.deleted {
		w.WriteHeader(http.StatusGone)
		return
	}
	if !r.authorized(req, path) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	links := linkheader.ParseMultiple(req.Header.Values("Link"))
	if len(links.FilterByRel("type")) != 0 {
		if k := interactionModel(links, req.Header.Get("Content-Type")); !compatible(res.kind, k) {
			r.conflict(w, req, "the interaction model of a resource cannot be changed")
			return
		}
	}
	if res.kind.isRDF() {
		if !r.checkRDF(w, req, body) {
			return
		}
	} else {
		if !checkDigest(w, req, body) {
			return
		}
		res.contentType = req.Header.Get("Content-Type")
	}
	res.body = body
	res.version++
	w.WriteHeader(http.StatusNoContent)
}

func (r *Repository) servePatch(w http.ResponseWriter, req *http.Request) {
	path := cleanPath(req.URL.Path)
	body, _ := io.ReadAll(req.Body)
	r.lock.Lock()
	defer r.lock.Unlock()

	res, status := r.live(path)
	if res == nil {
		w.WriteHeader(status)
		return
	}
	if !strings.HasPrefix(req.Header.Get("Content-Type"), "application/sparql-update") || !res.kind.isRDF() {
		w.Header().Set("Accept-Patch", "application/sparql-update")
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}
	if !r.authorized(req, path) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	inserted, err := sparqlInsert(string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if containsServerManaged(body) {
		r.conflict(w, req, "server managed triples cannot be modified")
		return
	}
	res.body = append(append(res.body, '\n'), inserted...)
	res.version++
	w.WriteHeader(http.StatusNoContent)
}

func (r *Repository) serveDelete(w http.ResponseWriter, req *http.Request) {
	path := cleanPath(req.URL.Path)
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.config.DisableDelete {
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if strings.HasSuffix(path, tombstoneSuffix) {
		target := strings.TrimSuffix(path, tombstoneSuffix)
		if res, ok := r.resources[target]; ok && res.deleted {
			r.purge(target)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if strings.HasSuffix(path, aclSuffix) {
		if target, _ := r.live(strings.TrimSuffix(path, aclSuffix)); target != nil && target.aclBody != nil {
			target.aclBody, target.aclAgent = nil, ""
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		return
	}
	res, status := r.live(path)
	if res == nil {
		w.WriteHeader(status)
		return
	}
	if path == RootPath {
		w.Header().Set("Allow", r.allow(res))
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !r.authorized(req, path) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if parent, ok := r.resources[parentPath(path)]; ok {
		parent.children = removeString(parent.children, path)
		parent.version++
	}
	r.remove(res)
	w.WriteHeader(http.StatusNoContent)
}

func (r *Repository) remove(res *resource) {
	for _, m := range res.mementos {
		delete(r.resources, m)
	}
	res.mementos = nil
	if !r.config.ShallowDelete {
		for _, c := range res.children {
			if child, ok := r.resources[c]; ok {
				r.remove(child)
			}
		}
		res.children = nil
	}
	if r.config.NoTombstones {
		delete(r.resources, res.path)
		return
	}
	res.deleted = true
}

func (r *Repository) purge(path string) {
	for p := range r.resources {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(r.resources, p)
		}
	}
}

func (r *Repository) serveOptions(w http.ResponseWriter, req *http.Request) {
	path := cleanPath(req.URL.Path)
	r.lock.Lock()
	defer r.lock.Unlock()

	if strings.HasSuffix(path, versionsSuffix) {
		w.Header().Set("Allow", "GET, HEAD, OPTIONS, POST")
		w.WriteHeader(http.StatusOK)
		return
	}
	res, status := r.live(path)
	if res == nil {
		w.WriteHeader(status)
		return
	}
	r.writeCapabilityHeaders(w, res)
	w.WriteHeader(http.StatusOK)
}

func (r *Repository) serveGet(w http.ResponseWriter, req *http.Request) {
	path := cleanPath(req.URL.Path)
	r.lock.Lock()
	defer r.lock.Unlock()

	switch {
	case strings.HasSuffix(path, versionsSuffix):
		r.serveTimeMap(w, req, strings.TrimSuffix(path, versionsSuffix))
		return
	case strings.HasSuffix(path, aclSuffix):
		target, status := r.live(strings.TrimSuffix(path, aclSuffix))
		if target == nil || target.aclBody == nil {
			w.WriteHeader(helpers.IfElse(target == nil, status, http.StatusNotFound))
			return
		}
		w.Header().Set("Content-Type", "text/turtle")
		w.WriteHeader(http.StatusOK)
		r.writeBody(w, req, target.aclBody)
		return
	case strings.HasSuffix(path, metadataSuffix):
		target, status := r.live(strings.TrimSuffix(path, metadataSuffix))
		if target == nil || target.kind.isRDF() {
			w.WriteHeader(helpers.IfElse(target == nil, status, http.StatusNotFound))
			return
		}
		w.Header().Set("Content-Type", "text/turtle")
		w.WriteHeader(http.StatusOK)
		r.writeBody(w, req, []byte(fmt.Sprintf("<%s> <%s> <%sNonRDFSource> .\n",
			absolute(req, target.path), rdfType, ldpNS)))
		return
	}

	res, exists := r.resources[path]
	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if res.deleted {
		if !r.config.NoTombstones {
			w.Header().Add("Link", "<"+absolute(req, path+tombstoneSuffix)+">; rel=\"hasTombstone\"")
		}
		w.WriteHeader(http.StatusGone)
		return
	}
	if !r.authorized(req, path) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	r.writeTypeLinks(w, res)
	r.writeCapabilityHeaders(w, res)
	w.Header().Add("Link", "<"+absolute(req, path+versionsSuffix)+">; rel=\"timemap\"")
	w.Header().Add("Link", "<"+absolute(req, path+aclSuffix)+">; rel=\"acl\"")

	var body []byte
	if res.kind.isRDF() {
		w.Header().Set("ETag", fmt.Sprintf("W/\"%d\"", res.version))
		w.Header().Set("Content-Type", "text/turtle")
		prefer := parsePrefer(req.Header.Get("Prefer"))
		if prefer.ret != "" {
			w.Header().Set("Preference-Applied", "return="+prefer.ret)
		}
		if prefer.ret != "minimal" {
			body = r.renderRDF(req, res, prefer)
		}
	} else {
		w.Header().Set("ETag", fmt.Sprintf("\"%d\"", res.version))
		w.Header().Add("Link", "<"+absolute(req, path+metadataSuffix)+">; rel=\"describedby\"")
		w.Header().Set("Content-Type", helpers.IfElse(res.contentType == "", "application/octet-stream", res.contentType))
		if want := req.Header.Get("Want-Digest"); want != "" {
			if digest := wantDigest(want, res.body); digest != "" {
				w.Header().Set("Digest", digest)
			}
		}
		body = res.body
	}
	w.WriteHeader(http.StatusOK)
	r.writeBody(w, req, body)
}

func (r *Repository) serveTimeMap(w http.ResponseWriter, req *http.Request, originalPath string) {
	original, status := r.live(originalPath)
	if original == nil {
		w.WriteHeader(status)
		return
	}
	entries := []string{
		"<" + absolute(req, originalPath) + ">; rel=\"original timegate\"",
		"<" + absolute(req, originalPath+versionsSuffix) + ">; rel=\"self\"; type=\"application/link-format\"",
	}
	for _, m := range original.mementos {
		entries = append(entries, "<"+absolute(req, m)+">; rel=\"memento\"")
	}
	w.Header().Add("Link", "<"+mementoNS+"TimeMap>; rel=\"type\"")
	w.Header().Set("Allow", "GET, HEAD, OPTIONS, POST")
	w.Header().Set("Content-Type", "application/link-format")
	w.WriteHeader(http.StatusOK)
	r.writeBody(w, req, []byte(strings.Join(entries, ",\n")))
}

func (r *Repository) writeBody(w http.ResponseWriter, req *http.Request, body []byte) {
	if req.Method != "HEAD" {
		_, _ = w.Write(body)
	}
}

// live returns the resource at path, or nil and the status to answer with.
func (r *Repository) live(path string) (*resource, int) {
	res, ok := r.resources[cleanPath(path)]
	switch {
	case !ok:
		return nil, http.StatusNotFound
	case res.deleted:
		return nil, http.StatusGone
	}
	return res, http.StatusOK
}

// authorized applies the nearest ACL at or above path. Without one, everyone is allowed.
func (r *Repository) authorized(req *http.Request, path string) bool {
	for p := path; strings.HasPrefix(p, RootPath); p = parentPath(p) {
		if res, ok := r.resources[p]; ok && res.aclAgent != "" {
			return req.Header.Get("Authorization") == r.config.AdminAuthorization
		}
		if p == RootPath {
			break
		}
	}
	return true
}

func (r *Repository) conflict(w http.ResponseWriter, req *http.Request, message string) {
	if !r.config.OmitConstrainedBy {
		w.Header().Add("Link", "<"+absolute(req, constraintsPath)+">; rel=\""+constrainedByRel+"\"")
	}
	http.Error(w, message, http.StatusConflict)
}

func (r *Repository) location(req *http.Request, path string) string {
	if r.config.RelativeLocations {
		return path
	}
	return absolute(req, path)
}

func (r *Repository) allow(res *resource) string {
	methods := []string{"GET", "HEAD", "OPTIONS", "PUT"}
	if res.kind.isContainer() {
		methods = append(methods, "POST")
	}
	if res.kind.isRDF() {
		methods = append(methods, "PATCH")
	}
	if !r.config.DisableDelete && res.path != RootPath {
		methods = append(methods, "DELETE")
	}
	return strings.Join(methods, ", ")
}

func (r *Repository) writeCapabilityHeaders(w http.ResponseWriter, res *resource) {
	w.Header().Set("Allow", r.allow(res))
	if res.kind.isContainer() {
		w.Header().Set("Accept-Post", "text/turtle, application/ld+json, */*")
	}
	if res.kind.isRDF() {
		w.Header().Set("Accept-Patch", "application/sparql-update")
	}
}

func (r *Repository) writeTypeLinks(w http.ResponseWriter, res *resource) {
	for _, t := range typesOf(res) {
		w.Header().Add("Link", "<"+t+">; rel=\"type\"")
	}
}

func typesOf(res *resource) []string {
	types := []string{ldpNS + "Resource"}
	switch res.kind {
	case basicContainer:
		types = append(types, ldpNS+"RDFSource", ldpNS+"Container", ldpNS+"BasicContainer")
	case directContainer:
		types = append(types, ldpNS+"RDFSource", ldpNS+"Container", ldpNS+"DirectContainer")
	case indirectContainer:
		types = append(types, ldpNS+"RDFSource", ldpNS+"Container", ldpNS+"IndirectContainer")
	case rdfSource:
		types = append(types, ldpNS+"RDFSource")
	case nonRDFSource:
		types = append(types, ldpNS+"NonRDFSource")
	}
	if res.memento {
		return append(types, mementoNS+"Memento")
	}
	return append(types, mementoNS+"OriginalResource")
}

func interactionModel(links linkheader.Links, contentType string) kind {
	for _, l := range links.FilterByRel("type") {
		switch l.URL {
		case ldpNS + "BasicContainer", ldpNS + "Container":
			return basicContainer
		case ldpNS + "DirectContainer":
			return directContainer
		case ldpNS + "IndirectContainer":
			return indirectContainer
		case ldpNS + "RDFSource":
			return rdfSource
		case ldpNS + "NonRDFSource":
			return nonRDFSource
		}
	}
	if len(links.FilterByRel(externalContentRel)) != 0 {
		return nonRDFSource
	}
	if contentType == "" || strings.HasPrefix(contentType, "text/turtle") {
		return basicContainer
	}
	return nonRDFSource
}

func compatible(current, requested kind) bool {
	if current.isRDF() != requested.isRDF() {
		return false
	}
	return !current.isContainer() || !requested.isContainer() || current == requested
}

func checkDigest(w http.ResponseWriter, req *http.Request, body []byte) bool {
	header := req.Header.Get("Digest")
	if header == "" {
		return true
	}
	for alg, value := range helpers.ParseDigestHeader(header) {
		expected, err := helpers.Digest(alg, body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return false
		}
		if expected != value {
			http.Error(w, "digest mismatch for "+alg, http.StatusConflict)
			return false
		}
	}
	return true
}

func wantDigest(want string, body []byte) string {
	var digests []string
	for alg := range helpers.ParseDigestHeader(want) {
		if d := helpers.DigestHeader(alg, body); d != "" {
			digests = append(digests, d)
		}
	}
	return strings.Join(helpers.Sorted(digests), ", ")
}

func absolute(req *http.Request, path string) string {
	return "http://" + req.Host + path
}

func pathOf(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		rest := u[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return cleanPath(rest[j:])
		}
		return ""
	}
	return cleanPath(u)
}

func parentPath(p string) string {
	if i := strings.LastIndex(p, "/"); i > 0 {
		return p[:i]
	}
	return ""
}

func removeString(list []string, s string) []string {
	ret := list[:0]
	for _, x := range list {
		if x != s {
			ret = append(ret, x)
		}
	}
	return ret
}
