package opt

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"
)

// Maybe is a simple implementation of an optional value type. It is used for configuration
// values where "not given" must be distinguished from the zero value, such as a password
// that is legitimately empty.
type Maybe[V any] struct {
	defined bool
	value   V
}

// Some returns a Maybe that has a defined value.
func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

// None returns a Maybe with no value.
func None[V any]() Maybe[V] { return Maybe[V]{} }

// IsDefined returns true if the Maybe has a value.
func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value if a value is defined, or the zero value for the type otherwise.
func (m Maybe[V]) Value() V { return m.value }

// OrElse returns the value of the Maybe if any, or the valueIfUndefined otherwise.
func (m Maybe[V]) OrElse(valueIfUndefined V) V {
	if m.defined {
		return m.value
	}
	return valueIfUndefined
}

// Or returns m if it has a value, or else other.
func (m Maybe[V]) Or(other Maybe[V]) Maybe[V] {
	if m.defined {
		return m
	}
	return other
}

// String returns a string representation of the value, or "[none]" if undefined.
func (m Maybe[V]) String() string {
	if m.defined {
		var v interface{} = m.value
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", m.value)
	}
	return "[none]"
}

// UnmarshalYAML sets the Maybe to None[V] for an explicit YAML null, or else decodes a value
// of type V and sets the Maybe to Some(value). A key that is absent from the document never
// reaches this method, so it stays None.
func (m *Maybe[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = None[V]()
		return nil
	}
	var value V
	if err := node.Decode(&value); err != nil {
		return err
	}
	*m = Some(value)
	return nil
}
