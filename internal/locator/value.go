// Package locator decodes arbitrarily shaped JSON into a tagged Value tree and
// finds the subtrees that structurally match a predicate, without relying on
// absolute paths into the document.
package locator

import (
	"strings"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// Member is a single key of an object, members keep their document order.
type Member struct {
	Key   string
	Value *Value
}

// Value is one node of a decoded JSON document. Every accessor is safe to call
// on a nil *Value, a missing branch simply reads as Null.
type Value struct {
	kind Kind
	// literal text of String, Number and Bool nodes
	text    string
	items   []*Value
	members []Member
}

func NewString(s string) *Value {
	return &Value{kind: String, text: s}
}

func NewArray(items ...*Value) *Value {
	return &Value{kind: Array, items: items}
}

func NewObject(members ...Member) *Value {
	return &Value{kind: Object, members: members}
}

func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

func (v *Value) IsObject() bool { return v.Kind() == Object }
func (v *Value) IsArray() bool  { return v.Kind() == Array }
func (v *Value) IsNull() bool   { return v.Kind() == Null }

// IsContainer is true for objects and arrays, the only nodes a walk descends into.
func (v *Value) IsContainer() bool {
	k := v.Kind()
	return k == Object || k == Array
}

// Str returns the text of a String node.
func (v *Value) Str() (string, bool) {
	if v.Kind() != String {
		return "", false
	}
	return v.text, true
}

// Text returns the text of a String node, or the literal of a Number node,
// and "" for anything else.
func (v *Value) Text() string {
	switch v.Kind() {
	case String, Number:
		return v.text
	}
	return ""
}

// Get returns the value of the first member named key, or nil.
func (v *Value) Get(key string) *Value {
	if v.Kind() != Object {
		return nil
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

func (v *Value) Has(key string) bool {
	return v.Get(key) != nil
}

// Path follows keys one object level at a time.
func (v *Value) Path(keys ...string) *Value {
	current := v
	for _, k := range keys {
		current = current.Get(k)
		if current == nil {
			return nil
		}
	}
	return current
}

func (v *Value) Index(i int) *Value {
	if v.Kind() != Array || i < 0 || i >= len(v.items) {
		return nil
	}
	return v.items[i]
}

func (v *Value) Items() []*Value {
	if v.Kind() != Array {
		return nil
	}
	return v.items
}

func (v *Value) Members() []Member {
	if v.Kind() != Object {
		return nil
	}
	return v.members
}

// Len is the number of items or members, 0 for scalars.
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	}
	return 0
}

// FirstText returns the first non-empty trimmed text found at the given paths,
// in order. Each path is a list of object keys.
func (v *Value) FirstText(paths ...[]string) string {
	for _, p := range paths {
		text := strings.TrimSpace(v.Path(p...).Text())
		if text != "" {
			return text
		}
	}
	return ""
}
