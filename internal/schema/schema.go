// Package schema derives a JSON payload schema from Go struct tags.
//
// A capability's response type is the single definition of its shape: the prompt's field
// list, the provider's JSON-mode schema and the fallback payload all come from the same
// struct, so live and fallback responses cannot drift apart.
package schema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Type is a JSON type name.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Field describes one JSON property.
type Field struct {
	Name string
	// Desc is the prompt text from the `desc` struct tag.
	Desc string
	Type Type

	// Items describes array elements. Nil unless Type is TypeArray.
	Items *Field
	// Fields lists object properties. Empty unless Type is TypeObject.
	Fields []Field
}

// Schema is the top-level object shape of a capability response.
type Schema struct {
	Name   string
	Fields []Field
}

// For derives the schema of T, which must be a struct.
func For[T any]() Schema {
	var zero T
	return Of(zero)
}

// Of derives the schema of v's struct type. Embedded structs and fields tagged `json:"-"`
// are skipped, so provenance metadata never becomes part of the requested shape.
func Of(v any) Schema {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema: %v is not a struct", t))
	}
	return Schema{Name: t.Name(), Fields: structFields(t)}
}

func structFields(t reflect.Type) []Field {
	var out []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "" {
			continue
		}
		f := fieldOf(sf.Type)
		f.Name = name
		f.Desc = sf.Tag.Get("desc")
		out = append(out, f)
	}
	return out
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return sf.Name
	}
	return name
}

func fieldOf(t reflect.Type) Field {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return Field{Type: TypeString}
	case reflect.Bool:
		return Field{Type: TypeBoolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Field{Type: TypeInteger}
	case reflect.Float32, reflect.Float64:
		return Field{Type: TypeNumber}
	case reflect.Slice, reflect.Array:
		items := fieldOf(t.Elem())
		return Field{Type: TypeArray, Items: &items}
	case reflect.Struct:
		return Field{Type: TypeObject, Fields: structFields(t)}
	default:
		return Field{Type: TypeObject}
	}
}

// Names returns the top-level property names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// PromptLines renders one "- name: desc" line per top-level field.
func (s Schema) PromptLines() string {
	var b strings.Builder
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteByte('\n')
		}
		desc := f.Desc
		if desc == "" {
			desc = string(f.Type)
		}
		fmt.Fprintf(&b, "- %s: %s", f.Name, desc)
	}
	return b.String()
}

// Validate checks that a decoded JSON value (as produced by encoding/json into any)
// has every field of the schema with a matching type. Extra keys are reported too.
func (s Schema) Validate(v any) error {
	return validateObject("", s.Fields, v)
}

func validateObject(path string, fields []Field, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("%s: want object, got %s", pathOrRoot(path), typeName(v))
	}
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.Name] = struct{}{}
		val, ok := m[f.Name]
		if !ok {
			return fmt.Errorf("%s: missing field", join(path, f.Name))
		}
		if err := validateValue(join(path, f.Name), f, val); err != nil {
			return err
		}
	}
	var extra []string
	for k := range m {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("%s: unexpected fields %v", pathOrRoot(path), extra)
	}
	return nil
}

func validateValue(path string, f Field, v any) error {
	switch f.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%s: want string, got %s", path, typeName(v))
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: want boolean, got %s", path, typeName(v))
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%s: want number, got %s", path, typeName(v))
		}
	case TypeInteger:
		n, ok := v.(float64)
		if !ok || n != float64(int64(n)) {
			return fmt.Errorf("%s: want integer, got %s", path, typeName(v))
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: want array, got %s", path, typeName(v))
		}
		for i, el := range arr {
			if err := validateValue(fmt.Sprintf("%s[%d]", path, i), *f.Items, el); err != nil {
				return err
			}
		}
	case TypeObject:
		return validateObject(path, f.Fields, v)
	}
	return nil
}

// Coerce loosens the numeric fields of a decoded JSON value in place: numeric strings
// become numbers and integer fields are rounded to the nearest whole number. Values that
// cannot be coerced are left for the caller's decoder to reject.
func (s Schema) Coerce(v any) any {
	return coerceObject(s.Fields, v)
}

func coerceObject(fields []Field, v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for _, f := range fields {
		if val, ok := m[f.Name]; ok {
			m[f.Name] = coerceValue(f, val)
		}
	}
	return m
}

func coerceValue(f Field, v any) any {
	switch f.Type {
	case TypeNumber, TypeInteger:
		var n float64
		switch x := v.(type) {
		case float64:
			n = x
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
				return v
			}
			n = parsed
		default:
			return v
		}
		if f.Type == TypeInteger {
			n = math.Round(n)
		}
		return n
	case TypeArray:
		arr, ok := v.([]any)
		if !ok || f.Items == nil {
			return v
		}
		for i := range arr {
			arr[i] = coerceValue(*f.Items, arr[i])
		}
		return arr
	case TypeObject:
		return coerceObject(f.Fields, v)
	}
	return v
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func pathOrRoot(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
