package prefs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ListMode controls how the Serializer treats list values.
type ListMode string

const (
	// ListsEncode encodes a whole list as one JSON string.
	ListsEncode ListMode = "encode"
	// ListsRecurse keeps the list and serializes each element.
	ListsRecurse ListMode = "recurse"
)

// ParseListMode maps a settings string to a ListMode. The empty string
// selects ListsEncode.
func ParseListMode(s string) (ListMode, error) {
	switch ListMode(strings.ToLower(s)) {
	case "", ListsEncode:
		return ListsEncode, nil
	case ListsRecurse:
		return ListsRecurse, nil
	default:
		return "", fmt.Errorf("unknown list mode %q", s)
	}
}

const (
	DefaultGateNamespace = "devtools"
	DefaultGateDepth     = 2
)

// Gate limits how deep the Serializer descends below one top-level key.
//
// Inside Namespace, a document whose key sits Depth levels below the
// namespace (its direct children are level 1) is not descended into: the
// whole value is encoded into a single string instead. Chromium stores
// devtools settings as devtools.preferences.<name> = "<json>", which is what
// the default gate reproduces.
type Gate struct {
	Namespace string
	Depth     int
}

// DefaultGate returns the devtools gate.
func DefaultGate() *Gate {
	return &Gate{Namespace: DefaultGateNamespace, Depth: DefaultGateDepth}
}

// EncodeError reports a leaf that could not be encoded.
type EncodeError struct {
	// Path is the dotted key path of the leaf; list items use [i].
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Serializer rewrites a freshly loaded document into the form the
// preferences store expects: every leaf becomes its JSON text held in a
// string, while nesting is kept.
//
// The zero Serializer applies the uniform policy with ListsEncode.
type Serializer struct {
	Lists ListMode
	// Gate enables depth-gating for one namespace when non-nil.
	Gate *Gate
}

// Serialize returns a new document; doc is not modified. Any leaf that fails
// to encode aborts the whole call.
func (s Serializer) Serialize(doc Document) (Document, error) {
	out := make(Document, len(doc))
	for k, v := range doc {
		var (
			sv  Value
			err error
		)
		if s.Gate != nil && k == s.gateNamespace() {
			sv, err = s.gated(v, k, 0)
		} else {
			sv, err = s.value(v, k)
		}
		if err != nil {
			return nil, err
		}
		out[k] = sv
	}
	return out, nil
}

// Leaves counts the string-encoded leaves in a serialized document.
func Leaves(doc Document) int {
	n := 0
	for _, v := range doc {
		n += leaves(v)
	}
	return n
}

func leaves(v Value) int {
	switch v.Kind() {
	case KindDocument:
		return Leaves(v.doc)
	case KindList:
		n := 0
		for _, item := range v.list {
			n += leaves(item)
		}
		return n
	default:
		return 1
	}
}

func (s Serializer) value(v Value, path string) (Value, error) {
	switch v.Kind() {
	case KindDocument:
		out := make(Document, len(v.doc))
		for k, item := range v.doc {
			sv, err := s.value(item, join(path, k))
			if err != nil {
				return Value{}, err
			}
			out[k] = sv
		}
		return Doc(out), nil
	case KindList:
		if s.Lists != ListsRecurse {
			return encode(v, path)
		}
		out := make([]Value, len(v.list))
		for i, item := range v.list {
			sv, err := s.value(item, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return Value{}, err
			}
			out[i] = sv
		}
		return List(out...), nil
	default:
		return encode(v, path)
	}
}

func (s Serializer) gated(v Value, path string, level int) (Value, error) {
	d, ok := v.Document()
	if !ok || level >= s.gateDepth() {
		return encode(v, path)
	}
	out := make(Document, len(d))
	for k, item := range d {
		sv, err := s.gated(item, join(path, k), level+1)
		if err != nil {
			return Value{}, err
		}
		out[k] = sv
	}
	return Doc(out), nil
}

func (s Serializer) gateNamespace() string {
	if s.Gate.Namespace == "" {
		return DefaultGateNamespace
	}
	return s.Gate.Namespace
}

func (s Serializer) gateDepth() int {
	if s.Gate.Depth <= 0 {
		return DefaultGateDepth
	}
	return s.Gate.Depth
}

func encode(v Value, path string) (Value, error) {
	text, err := EncodeLeaf(v.Native())
	if err != nil {
		return Value{}, &EncodeError{Path: path, Err: err}
	}
	return Scalar(text), nil
}

// EncodeLeaf returns the compact JSON text of v. HTML characters are not
// escaped and non-ASCII text is kept as is. Floats keep a fractional part
// (1.0 stays "1.0") and timestamps are rejected.
func EncodeLeaf(v any) (string, error) {
	leaf, err := jsonLeaf(v)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(leaf); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func jsonLeaf(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			leaf, err := jsonLeaf(item)
			if err != nil {
				return nil, err
			}
			out[k] = leaf
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			leaf, err := jsonLeaf(item)
			if err != nil {
				return nil, err
			}
			out[i] = leaf
		}
		return out, nil
	case float64:
		return jsonFloat(t), nil
	case float32:
		return jsonFloat(t), nil
	case time.Time:
		return nil, fmt.Errorf("timestamp %s is not a JSON value", t.Format(time.RFC3339))
	default:
		return v, nil
	}
}

// jsonFloat writes whole numbers with a trailing ".0" so a float never
// reads back as an integer. Large values switch to exponent form at 1e16.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return nil, &json.UnsupportedValueError{
			Value: reflect.ValueOf(v),
			Str:   strconv.FormatFloat(v, 'g', -1, 64),
		}
	case v != math.Trunc(v):
		return json.Marshal(v)
	case math.Abs(v) < 1e16:
		return []byte(strconv.FormatFloat(v, 'f', -1, 64) + ".0"), nil
	default:
		return []byte(strconv.FormatFloat(v, 'e', -1, 64)), nil
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
