package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON-like value. Mappings preserve key order.
//
// Values are shared by pointer and the pointer is the value's identity: two
// decodes of the same text produce distinct identities. A nil *Value behaves
// like null.
type Value struct {
	kind   Kind
	b      bool
	num    float64
	text   string // string payload, or the literal form of a number
	items  []*Value
	keys   []string
	fields map[string]*Value
}

// Null returns a new null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a new boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Number returns a new number value.
func Number(f float64) *Value {
	return &Value{kind: KindNumber, num: f, text: formatNumber(f)}
}

// NumberLiteral parses s as a number and keeps s as its display form.
func NumberLiteral(s string) (*Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Null(), nil
	}
	return &Value{kind: KindNumber, num: f, text: s}, nil
}

// String returns a new string value.
func String(s string) *Value { return &Value{kind: KindString, text: s} }

// List returns a new sequence value holding items.
func List(items ...*Value) *Value {
	return &Value{kind: KindList, items: items}
}

// NewMap returns an empty mapping value. Populate it with Set before sharing it.
func NewMap() *Value {
	return &Value{kind: KindMap, fields: map[string]*Value{}}
}

// Set stores val under key. A new key is appended; an existing key keeps its position.
func (v *Value) Set(key string, val *Value) *Value {
	if v == nil || v.kind != KindMap {
		return v
	}
	if _, ok := v.fields[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = val
	return v
}

// Append adds items to a sequence value.
func (v *Value) Append(items ...*Value) *Value {
	if v == nil || v.kind != KindList {
		return v
	}
	v.items = append(v.items, items...)
	return v
}

// Kind reports the value's kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsNull() bool { return v.Kind() == KindNull }
func (v *Value) IsList() bool { return v.Kind() == KindList }
func (v *Value) IsMap() bool  { return v.Kind() == KindMap }

// IsScalar reports whether v is neither a sequence nor a mapping.
func (v *Value) IsScalar() bool {
	k := v.Kind()
	return k != KindList && k != KindMap
}

// BoolValue returns the boolean payload.
func (v *Value) BoolValue() bool { return v != nil && v.kind == KindBool && v.b }

// Float returns the numeric payload and whether v is a number.
func (v *Value) Float() (float64, bool) {
	if v == nil || v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the string payload of a string value, or the literal of a number.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	return v.text
}

// Len returns the number of items or keys.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.keys)
	default:
		return 0
	}
}

// Items returns the sequence items. The slice must not be modified.
func (v *Value) Items() []*Value {
	if v.Kind() != KindList {
		return nil
	}
	return v.items
}

// Index returns item i, or nil when out of range.
func (v *Value) Index(i int) *Value {
	if v.Kind() != KindList || i < 0 || i >= len(v.items) {
		return nil
	}
	return v.items[i]
}

// Keys returns the mapping keys in document order. The slice must not be modified.
func (v *Value) Keys() []string {
	if v.Kind() != KindMap {
		return nil
	}
	return v.keys
}

// Get returns the value stored under key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindMap {
		return nil, false
	}
	val, ok := v.fields[key]
	return val, ok
}

// Has reports whether a mapping contains key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// String converts v the way a string conversion does in the report: numbers in
// their literal form, sequences as comma separated items, null as "null".
func (v *Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber, KindString:
		return v.text
	case KindList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			if item.IsNull() {
				continue
			}
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// Compact returns the single-line JSON form of v. Numbers are written in
// their shortest form, so values that are Equal scalars compact alike.
func (v *Value) Compact() string {
	var buf bytes.Buffer
	v.writeJSON(&buf, false)
	return buf.String()
}

// Literal is like Compact but writes numbers as they were logged.
func (v *Value) Literal() string {
	var buf bytes.Buffer
	v.writeJSON(&buf, true)
	return buf.String()
}

// Indent returns the pretty-printed JSON form of v with two-space indentation,
// keys in document order and numbers as they were logged. It never fails.
func (v *Value) Indent() string {
	var buf, out bytes.Buffer
	v.writeJSON(&buf, true)
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return buf.String()
	}
	return out.String()
}

// MarshalJSON implements json.Marshaler preserving key order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.writeJSON(&buf, false)
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler preserving key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

func (v *Value) writeJSON(buf *bytes.Buffer, literal bool) {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if literal && v.text != "" && json.Valid([]byte(v.text)) {
			buf.WriteString(v.text)
		} else {
			buf.WriteString(formatNumber(v.num))
		}
	case KindString:
		quoted, _ := json.Marshal(v.text)
		buf.Write(quoted)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeJSON(buf, literal)
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			quoted, _ := json.Marshal(key)
			buf.Write(quoted)
			buf.WriteByte(':')
			v.fields[key].writeJSON(buf, literal)
		}
		buf.WriteByte('}')
	}
}

// Equal reports whether a and b hold the same data. Numbers compare by value.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.text == b.text
	case KindList:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	default:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for _, key := range a.keys {
			other, ok := b.fields[key]
			if !ok || !Equal(a.fields[key], other) {
				return false
			}
		}
		return true
	}
}

// Compare orders values numeric-aware: null < bool < number < string < list < map.
// Numbers compare numerically; strings that both look numeric compare as numbers,
// otherwise lexically. Containers compare by their JSON text.
func Compare(a, b *Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.Kind() {
	case KindNull:
		return 0
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindNumber:
		return compareFloat(a.num, b.num)
	case KindString:
		fa, errA := strconv.ParseFloat(strings.TrimSpace(a.text), 64)
		fb, errB := strconv.ParseFloat(strings.TrimSpace(b.text), 64)
		if errA == nil && errB == nil {
			if c := compareFloat(fa, fb); c != 0 {
				return c
			}
		}
		return strings.Compare(a.text, b.text)
	default:
		return strings.Compare(a.Compact(), b.Compact())
	}
}

func rank(v *Value) int {
	return int(v.Kind())
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseJSON decodes a single JSON document into a Value, preserving key order.
func ParseJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := DecodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// MustParseJSON is like ParseJSON but panics on error. Intended for tests and
// static fixtures.
func MustParseJSON(s string) *Value {
	v, err := ParseJSON([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

// DecodeValue reads the next JSON value from dec. The decoder should have
// UseNumber enabled so number literals keep their text.
func DecodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return NumberLiteral(t.String())
	case float64:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			list := List()
			for dec.More() {
				item, err := DecodeValue(dec)
				if err != nil {
					return nil, err
				}
				list.items = append(list.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := DecodeValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// FromAny converts plain Go data (as produced by encoding/json or yaml.v3) into
// a Value. Map keys are sorted because Go maps carry no order.
func FromAny(x any) *Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case *Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		if v, err := NumberLiteral(t.String()); err == nil {
			return v
		}
		return String(t.String())
	case int:
		return &Value{kind: KindNumber, num: float64(t), text: strconv.Itoa(t)}
	case int64:
		return &Value{kind: KindNumber, num: float64(t), text: strconv.FormatInt(t, 10)}
	case uint64:
		return &Value{kind: KindNumber, num: float64(t), text: strconv.FormatUint(t, 10)}
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case []any:
		list := List()
		for _, item := range t {
			list.items = append(list.items, FromAny(item))
		}
		return list
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromAny(t[k]))
		}
		return m
	default:
		return String(fmt.Sprint(t))
	}
}
