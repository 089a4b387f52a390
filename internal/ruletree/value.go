// Package ruletree loads a rule-tree configuration export and flattens it into
// an ordered, depth-annotated sequence of rule nodes.
//
// The export is decoded into Value, an order-preserving JSON tree, then
// classified once into Elements (Container for objects with a children key,
// Opaque for everything else) before Flatten walks it.
package ruletree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/verustcode/rulemap/pkg/errors"
)

// Kind identifies the JSON type held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lowercase JSON type name
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
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a decoded JSON value that keeps object keys in document order.
// Numbers keep their source text.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	Str    string
	Items  []*Value
	Fields []Field
}

// Field is one key/value pair of an object
type Field struct {
	Key   string
	Value *Value
}

// Get returns the value stored under key in an object
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Decode reads exactly one JSON document from r.
// A repeated object key keeps its first position and its last value.
func Decode(r io.Reader) (*Value, error) {
	return DecodeWithOptions(r)
}

// DecodeWithOptions is Decode with a configurable nesting bound. Input nested
// deeper than the bound fails with E6002 before any deeper token is read.
func DecodeWithOptions(r io.Reader, opts ...Option) (*Value, error) {
	d := &decoder{
		dec:      json.NewDecoder(r),
		maxDepth: newGuard(opts...).maxDepth,
	}
	d.dec.UseNumber()

	v, err := d.value(0)
	if err != nil {
		return nil, err
	}
	if tok, err := d.dec.Token(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected %v after top-level value", tok)
	}
	return v, nil
}

type decoder struct {
	dec      *json.Decoder
	maxDepth int
}

func (d *decoder) value(level int) (*Value, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if level > d.maxDepth {
			return nil, errors.New(errors.ErrCodeTreeDepth, "rule tree nesting exceeds maximum depth").
				WithDetails(map[string]int{"max_depth": d.maxDepth})
		}
		switch t {
		case '{':
			return d.object(level)
		case '[':
			return d.array(level)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Number: t}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case nil:
		return &Value{Kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func (d *decoder) object(level int) (*Value, error) {
	v := &Value{Kind: KindObject}
	index := make(map[string]int)
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		child, err := d.value(level + 1)
		if err != nil {
			return nil, err
		}
		if i, dup := index[key]; dup {
			v.Fields[i].Value = child
			continue
		}
		index[key] = len(v.Fields)
		v.Fields = append(v.Fields, Field{Key: key, Value: child})
	}
	// closing '}'
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *decoder) array(level int) (*Value, error) {
	v := &Value{Kind: KindArray}
	for d.dec.More() {
		item, err := d.value(level + 1)
		if err != nil {
			return nil, err
		}
		v.Items = append(v.Items, item)
	}
	// closing ']'
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return v, nil
}

// Compact renders the value as single-line JSON
func (v *Value) Compact() string {
	var sb strings.Builder
	v.write(&sb, "", 0)
	return sb.String()
}

// Indent renders the value as JSON indented by the given unit per level.
// Empty arrays and objects stay on one line as [] and {}; object keys are
// followed by ": ".
func (v *Value) Indent(unit string) string {
	var sb strings.Builder
	v.write(&sb, unit, 0)
	return sb.String()
}

func (v *Value) write(sb *strings.Builder, unit string, level int) {
	if v == nil {
		sb.WriteString("null")
		return
	}

	switch v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		sb.WriteString(v.Number.String())
	case KindString:
		writeString(sb, v.Str)
	case KindArray:
		if len(v.Items) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			newline(sb, unit, level+1)
			item.write(sb, unit, level+1)
		}
		newline(sb, unit, level)
		sb.WriteByte(']')
	case KindObject:
		if len(v.Fields) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			newline(sb, unit, level+1)
			writeString(sb, f.Key)
			sb.WriteByte(':')
			if unit != "" {
				sb.WriteByte(' ')
			}
			f.Value.write(sb, unit, level+1)
		}
		newline(sb, unit, level)
		sb.WriteByte('}')
	}
}

func newline(sb *strings.Builder, unit string, level int) {
	if unit == "" {
		return
	}
	sb.WriteByte('\n')
	for i := 0; i < level; i++ {
		sb.WriteString(unit)
	}
}

// writeString quotes s as a JSON string. Non-ASCII text is kept as UTF-8.
func writeString(sb *strings.Builder, s string) {
	const hex = "0123456789abcdef"

	sb.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				sb.WriteString(`\"`)
			case '\\':
				sb.WriteString(`\\`)
			case '\n':
				sb.WriteString(`\n`)
			case '\r':
				sb.WriteString(`\r`)
			case '\t':
				sb.WriteString(`\t`)
			case '\b':
				sb.WriteString(`\b`)
			case '\f':
				sb.WriteString(`\f`)
			default:
				if c < 0x20 {
					sb.WriteString(`\u00`)
					sb.WriteByte(hex[c>>4])
					sb.WriteByte(hex[c&0xf])
				} else {
					sb.WriteByte(c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteString("\ufffd")
		} else {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	sb.WriteByte('"')
}
