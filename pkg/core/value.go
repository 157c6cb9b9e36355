/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: value.go
Description: Tagged property values and the insertion-ordered Properties mapping attached
to every analysis result. Values are one of string, signed integer, unsigned integer,
list or nested mapping so consumers can switch exhaustively on the kind.
*/

package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Velocidex/ordereddict"
)

// ValueKind identifies which field of a Value is populated
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindUint
	KindList
	KindMap
)

// String returns the kind name
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged union over the property shapes analyzers produce
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
	Uint uint64
	List []Value
	Map  *Properties
}

// StringValue builds a string value
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// IntValue builds a signed integer value
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// UintValue builds an unsigned integer value
func UintValue(u uint64) Value {
	return Value{Kind: KindUint, Uint: u}
}

// ListValue builds a list value
func ListValue(items ...Value) Value {
	return Value{Kind: KindList, List: items}
}

// StringList builds a list of string values
func StringList(items []string) Value {
	list := make([]Value, 0, len(items))
	for _, item := range items {
		list = append(list, StringValue(item))
	}
	return ListValue(list...)
}

// MapValue builds a nested mapping value
func MapValue(p *Properties) Value {
	if p == nil {
		p = NewProperties()
	}
	return Value{Kind: KindMap, Map: p}
}

// Interface converts the value into plain Go values. Nested maps become ordered dicts
// so the key order survives JSON encoding.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindUint:
		return v.Uint
	case KindList:
		items := make([]interface{}, 0, len(v.List))
		for _, item := range v.List {
			items = append(items, item.Interface())
		}
		return items
	case KindMap:
		return v.Map.Dict()
	default:
		return nil
	}
}

// String renders the value for terminal output
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindUint:
		return fmt.Sprintf("%d", v.Uint)
	case KindList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			parts = append(parts, item.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		return v.Map.String()
	default:
		return ""
	}
}

// MarshalJSON encodes the value as its plain Go representation
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Properties is an insertion-ordered mapping of named values
type Properties struct {
	keys   []string
	values map[string]Value
}

// NewProperties creates an empty property set
func NewProperties() *Properties {
	return &Properties{values: make(map[string]Value)}
}

// Set stores a value, keeping the original position when the key already exists
func (p *Properties) Set(key string, value Value) *Properties {
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// SetString is shorthand for Set(key, StringValue(s))
func (p *Properties) SetString(key, s string) *Properties {
	return p.Set(key, StringValue(s))
}

// SetUint is shorthand for Set(key, UintValue(u))
func (p *Properties) SetUint(key string, u uint64) *Properties {
	return p.Set(key, UintValue(u))
}

// Get returns the value stored under key
func (p *Properties) Get(key string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is present
func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys returns the keys in insertion order
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of entries
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Dict converts the properties into an ordered dict of plain Go values
func (p *Properties) Dict() *ordereddict.Dict {
	dict := ordereddict.NewDict()
	if p == nil {
		return dict
	}
	for _, key := range p.keys {
		dict.Set(key, p.values[key].Interface())
	}
	return dict
}

// String renders the properties as {k: v, ...} in insertion order
func (p *Properties) String() string {
	if p == nil {
		return "{}"
	}
	parts := make([]string, 0, len(p.keys))
	for _, key := range p.keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, p.values[key].String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON encodes the properties as a JSON object in insertion order
func (p *Properties) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Dict())
}
