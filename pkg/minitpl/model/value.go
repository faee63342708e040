package model

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindRecord
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
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Value is a node of the data model: null, bool, number, string, list or
// record. The zero Value is Null. Values are immutable once built.
type Value struct {
	kind  Kind
	b     bool
	isInt bool
	i     int64
	f     float64
	s     string
	list  []Value
	rec   *Record
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer number.
func Int(i int64) Value { return Value{kind: KindNumber, isInt: true, i: i, f: float64(i)} }

// Float returns a floating point number.
func Float(f float64) Value { return Value{kind: KindNumber, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list holding items in order.
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// RecordValue wraps a record. A nil record is Null.
func RecordValue(r *Record) Value {
	if r == nil {
		return Null()
	}
	return Value{kind: KindRecord, rec: r}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsList() bool   { return v.kind == KindList }
func (v Value) IsRecord() bool { return v.kind == KindRecord }

// AsBool returns the boolean and whether v is a Bool.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsString returns the string and whether v is a String.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsInt returns the integer and whether v is an integer Number.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindNumber && v.isInt
}

// AsFloat returns the number as float64 and whether v is a Number.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindNumber
}

// Len returns the number of list items or record members, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindRecord:
		return v.rec.Len()
	default:
		return 0
	}
}

// Items returns the list items. The slice must not be modified.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Record returns the record, or nil when v is not a Record.
func (v Value) Record() *Record {
	if v.kind != KindRecord {
		return nil
	}
	return v.rec
}

// Member looks up a record member by name, case-insensitively.
func (v Value) Member(name string) (Value, bool) {
	if v.kind != KindRecord {
		return Null(), false
	}
	return v.rec.Get(name)
}

// String renders the value as template output text. Null renders empty.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		if v.isInt {
			return strconv.FormatInt(v.i, 10)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	case KindRecord:
		return v.rec.String()
	default:
		return ""
	}
}

// Member is a named record entry.
type Member struct {
	Name  string
	Value Value
}

// Record is an ordered set of named members. Lookup prefers an exact name
// match and falls back to a Unicode case-folded match.
type Record struct {
	members []Member
	exact   map[string]int
	folded  map[string]int
}

// NewRecord creates an empty record with room for size members.
func NewRecord(size int) *Record {
	return &Record{
		members: make([]Member, 0, size),
		exact:   make(map[string]int, size),
		folded:  make(map[string]int, size),
	}
}

// Set adds or replaces a member. Records are built once and then only read.
func (r *Record) Set(name string, v Value) *Record {
	if idx, ok := r.exact[name]; ok {
		r.members[idx].Value = v
		return r
	}
	r.members = append(r.members, Member{Name: name, Value: v})
	idx := len(r.members) - 1
	r.exact[name] = idx
	key := foldName(name)
	if _, taken := r.folded[key]; !taken {
		r.folded[key] = idx
	}
	return r
}

// Get returns the member named name.
func (r *Record) Get(name string) (Value, bool) {
	if r == nil {
		return Null(), false
	}
	if idx, ok := r.exact[name]; ok {
		return r.members[idx].Value, true
	}
	if idx, ok := r.folded[foldName(name)]; ok {
		return r.members[idx].Value, true
	}
	return Null(), false
}

// Len returns the number of members.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.members)
}

// Members returns the members in insertion order. The slice must not be
// modified.
func (r *Record) Members() []Member {
	if r == nil {
		return nil
	}
	return r.members
}

func (r *Record) String() string {
	if r.Len() == 0 {
		return "{ }"
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, m := range r.members {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(m.Name)
		sb.WriteString(" = ")
		sb.WriteString(m.Value.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// The folding Caser is stateless and safe for concurrent use.
var folder = cases.Fold()

func foldName(name string) string {
	return folder.String(name)
}
