package messaging

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// Event is a repository notification, an Activity Streams 2.0 JSON-LD document.
type Event struct {
	raw string
}

// ParseEvent checks that body is JSON and wraps it.
func ParseEvent(body []byte) (Event, error) {
	if !gjson.ValidBytes(body) {
		return Event{}, errors.New("notification body is not valid JSON")
	}
	return Event{raw: string(body)}, nil
}

func (e Event) String() string {
	return e.raw
}

// ID is the event's own identifier.
func (e Event) ID() string {
	return firstString(e.raw, "id", "@id")
}

// ObjectID is the URI of the resource the event is about.
func (e Event) ObjectID() string {
	return firstString(e.raw, "object.id", "object.@id")
}

// Types returns the event's activity types, e.g. "Create".
func (e Event) Types() []string {
	return stringList(gjson.Get(e.raw, "type"))
}

// ObjectTypes returns the types of the resource the event is about.
func (e Event) ObjectTypes() []string {
	return stringList(gjson.Get(e.raw, "object.type"))
}

// HasType matches an activity type by full IRI or by its local name.
func (e Event) HasType(t string) bool {
	for _, et := range e.Types() {
		if et == t || localName(et) == t || et == localName(t) {
			return true
		}
	}
	return false
}

// Published is the event timestamp as sent.
func (e Event) Published() string {
	return gjson.Get(e.raw, "published").String()
}

func firstString(raw string, paths ...string) string {
	for _, p := range paths {
		if v := gjson.Get(raw, p); v.Exists() {
			return v.String()
		}
	}
	return ""
}

func stringList(v gjson.Result) []string {
	if !v.Exists() {
		return nil
	}
	if !v.IsArray() {
		return []string{v.String()}
	}
	var ret []string
	for _, item := range v.Array() {
		ret = append(ret, item.String())
	}
	return ret
}

func localName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
