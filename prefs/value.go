// Package prefs implements the configuration document model used by prefsync
// together with the two transforms applied to it: Merge and Serialize.
package prefs

import (
	"fmt"
	"maps"
	"slices"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindDocument:
		return "document"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Document is a nested mapping from string keys to values.
type Document map[string]Value

// Value is one of a scalar leaf, a list or a nested Document.
//
// The zero Value is a null scalar.
type Value struct {
	kind   Kind
	scalar any
	list   []Value
	doc    Document
}

// Scalar wraps a leaf value: bool, number, string, nil, or anything else
// the JSON encoder accepts.
func Scalar(v any) Value { return Value{kind: KindScalar, scalar: v} }

// List wraps a list of values.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Doc wraps a nested document. A nil document is stored as an empty one.
func Doc(d Document) Value {
	if d == nil {
		d = Document{}
	}
	return Value{kind: KindDocument, doc: d}
}

func (v Value) Kind() Kind { return v.kind }

// Scalar returns the leaf value and whether v holds one.
func (v Value) Scalar() (any, bool) { return v.scalar, v.kind == KindScalar }

// List returns the list items and whether v holds a list.
func (v Value) List() ([]Value, bool) { return v.list, v.kind == KindList }

// Document returns the nested document and whether v holds one.
func (v Value) Document() (Document, bool) { return v.doc, v.kind == KindDocument }

// Native converts v back to plain Go values (map[string]any, []any, leaves)
// suitable for an encoder.
func (v Value) Native() any {
	switch v.kind {
	case KindDocument:
		return v.doc.Native()
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}
		return out
	default:
		return v.scalar
	}
}

// Clone returns a deep copy of v. Scalars are copied by value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindDocument:
		return Doc(v.doc.Clone())
	case KindList:
		out := make([]Value, len(v.list))
		for i, item := range v.list {
			out[i] = item.Clone()
		}
		return List(out...)
	default:
		return v
	}
}

// Native converts d to a map[string]any tree.
func (d Document) Native() map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v.Native()
	}
	return out
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the keys of d in no particular order.
func (d Document) Keys() []string {
	return slices.Collect(maps.Keys(d))
}

// FromNative converts decoder output into a Value. Mappings become documents,
// slices become lists and everything else is kept as a scalar. Mapping keys
// that are not strings are formatted with fmt.
func FromNative(raw any) Value {
	switch t := raw.(type) {
	case Value:
		return t
	case Document:
		return Doc(t)
	case map[string]any:
		return Doc(DocumentFromNative(t))
	case map[any]any:
		d := make(Document, len(t))
		for k, item := range t {
			d[fmt.Sprint(k)] = FromNative(item)
		}
		return Doc(d)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromNative(item)
		}
		return List(items...)
	case []map[string]any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = Doc(DocumentFromNative(item))
		}
		return List(items...)
	default:
		return Scalar(raw)
	}
}

// DocumentFromNative converts a decoded mapping into a Document.
func DocumentFromNative(m map[string]any) Document {
	d := make(Document, len(m))
	for k, item := range m {
		d[k] = FromNative(item)
	}
	return d
}
