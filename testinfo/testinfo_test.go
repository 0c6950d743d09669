package testinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(id, class, title string, priority int) TestDescriptor {
	return TestDescriptor{
		ID:        id,
		TestClass: class,
		Title:     title,
		SpecLink:  "https://fcrepo.github.io/fcrepo-specification/#" + id,
		Level:     MUST,
		Priority:  priority,
	}
}

func TestRequirementLevel(t *testing.T) {
	for _, l := range AllRequirementLevels {
		parsed, err := ParseRequirementLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
	l, err := ParseRequirementLevel(" should ")
	require.NoError(t, err)
	assert.Equal(t, SHOULD, l)

	_, err = ParseRequirementLevel("ALWAYS")
	assert.Error(t, err)
	assert.Equal(t, "RequirementLevel(9)", RequirementLevel(9).String())
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "3.1.1-A createLDPC", descriptor("3.1.1-A", "Container", "createLDPC", 1).DisplayLabel())
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	d, err := r.Register(descriptor("3.1.1-A", "Container", "createLDPC", 1))
	require.NoError(t, err)
	assert.Equal(t, "createLDPC", d.Title)

	found, err := r.Lookup("createLDPC")
	require.NoError(t, err)
	assert.Equal(t, d, found)
	assert.Equal(t, 1, r.Len())

	_, err = r.Lookup("nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterRejectsDuplicateTitle(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(descriptor("3.1.1-A", "Container", "createLDPC", 1))

	_, err := r.Register(descriptor("3.1.1-B", "HttpPost", "createLDPC", 1))
	assert.ErrorIs(t, err, ErrDuplicateTitle)
	assert.Equal(t, 1, r.Len())

	assert.Panics(t, func() { r.MustRegister(descriptor("3.1.1-C", "HttpPost", "createLDPC", 1)) })
}

func TestRegisterRejectsIncompleteDescriptor(t *testing.T) {
	_, err := NewRegistry().Register(TestDescriptor{ID: "3.1.1-A", TestClass: "Container"})
	assert.Error(t, err)
}

func TestClassesAndPriorityOrder(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(descriptor("3.1.1-B", "Container", "second", 2))
	r.MustRegister(descriptor("3.2.1-A", "LdprsGet", "other", 1))
	r.MustRegister(descriptor("3.1.1-A", "Container", "first", 1))
	r.MustRegister(descriptor("3.1.1-C", "Container", "alsoSecond", 2))

	assert.Equal(t, []string{"Container", "LdprsGet"}, r.Classes())

	var titles []string
	for _, d := range r.ForClass("Container") {
		titles = append(titles, d.Title)
	}
	assert.Equal(t, []string{"first", "second", "alsoSecond"}, titles)
	assert.Empty(t, r.ForClass("Nope"))
}
