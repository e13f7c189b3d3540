package canon

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// JSON renders v to whitespace-free JSON with object keys sorted by byte
// order, recursing through structs, maps, slices and pointers directly via
// reflection rather than round-tripping through encoding/json first — two
// encoders that happen to agree today is not the same guarantee as one
// encoder that is the only one in play, and it lets cycle detection walk the
// live value graph instead of a value encoding/json already flattened.
//
// Struct fields are emitted under their `json` tag name (falling back to the
// field name), honoring `json:"-"` and `,omitempty`. This mirrors just enough
// of encoding/json's tag conventions that existing struct definitions don't
// need a parallel canon-specific tag.
func JSON(v any) ([]byte, error) {
	enc := &jsonEncoder{seen: map[uintptr]bool{}}
	if err := enc.encode(reflect.ValueOf(v), "$"); err != nil {
		return nil, err
	}
	return enc.buf, nil
}

type jsonEncoder struct {
	buf  []byte
	seen map[uintptr]bool
}

func (e *jsonEncoder) encode(v reflect.Value, path string) error {
	if !v.IsValid() {
		e.buf = append(e.buf, "null"...)
		return nil
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		return e.encode(v.Elem(), path)

	case reflect.Ptr:
		if v.IsNil() {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		ptr := v.Pointer()
		if e.seen[ptr] {
			return newErr(ErrCycle, path)
		}
		e.seen[ptr] = true
		err := e.encode(v.Elem(), path)
		delete(e.seen, ptr)
		return err

	case reflect.Bool:
		if v.Bool() {
			e.buf = append(e.buf, "true"...)
		} else {
			e.buf = append(e.buf, "false"...)
		}
		return nil

	case reflect.String:
		e.encodeString(v.String())
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf = strconv.AppendInt(e.buf, v.Int(), 10)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf = strconv.AppendUint(e.buf, v.Uint(), 10)
		return nil

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return newErr(ErrNonFinite, path)
		}
		if f == math.Trunc(f) && math.Abs(f) < 1e21 {
			// Integral values print as plain decimal digits, exactly as an
			// integer of the same value does, so a number that came back
			// from a JSON parse as float64 canonicalizes unchanged.
			e.buf = strconv.AppendFloat(e.buf, f, 'f', -1, 64)
			return nil
		}
		e.buf = strconv.AppendFloat(e.buf, f, 'g', -1, 64)
		return nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			// []byte is rendered as a lowercase hex string; the kernel
			// never signs raw binary JSON values, only their hex forms.
			e.encodeString(fmt.Sprintf("%x", v.Bytes()))
			return nil
		}
		return e.encodeSlice(v, path)

	case reflect.Array:
		return e.encodeSlice(v, path)

	case reflect.Map:
		return e.encodeMap(v, path)

	case reflect.Struct:
		return e.encodeStruct(v, path)

	default:
		return newErr(ErrUnsupportedType, path)
	}
}

func (e *jsonEncoder) encodeSlice(v reflect.Value, path string) error {
	if v.Kind() == reflect.Slice && !v.IsNil() {
		ptr := v.Pointer()
		if e.seen[ptr] {
			return newErr(ErrCycle, path)
		}
		e.seen[ptr] = true
		defer delete(e.seen, ptr)
	}
	if v.Kind() == reflect.Slice && v.IsNil() {
		e.buf = append(e.buf, "null"...)
		return nil
	}
	e.buf = append(e.buf, '[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		if err := e.encode(v.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, ']')
	return nil
}

func (e *jsonEncoder) encodeMap(v reflect.Value, path string) error {
	if v.IsNil() {
		e.buf = append(e.buf, "null"...)
		return nil
	}
	ptr := v.Pointer()
	if e.seen[ptr] {
		return newErr(ErrCycle, path)
	}
	e.seen[ptr] = true
	defer delete(e.seen, ptr)

	if v.Type().Key().Kind() != reflect.String {
		return newErr(ErrUnsupportedType, path)
	}

	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	e.buf = append(e.buf, '{')
	for i, k := range keys {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.encodeString(k.String())
		e.buf = append(e.buf, ':')
		if err := e.encode(v.MapIndex(k), path+"."+k.String()); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *jsonEncoder) encodeStruct(v reflect.Value, path string) error {
	type field struct {
		name  string
		value reflect.Value
	}
	fields := make([]field, 0, v.NumField())
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		name, omitEmpty, skip := parseJSONTag(sf)
		if skip {
			continue
		}
		fv := v.Field(i)
		if omitEmpty && isEmptyValue(fv) {
			continue
		}
		fields = append(fields, field{name: name, value: fv})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].name < fields[j].name })

	e.buf = append(e.buf, '{')
	for i, f := range fields {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.encodeString(f.name)
		e.buf = append(e.buf, ':')
		if err := e.encode(f.value, path+"."+f.name); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *jsonEncoder) encodeString(s string) {
	e.buf = append(e.buf, '"')
	for _, r := range s {
		switch r {
		case '"':
			e.buf = append(e.buf, '\\', '"')
		case '\\':
			e.buf = append(e.buf, '\\', '\\')
		case '\n':
			e.buf = append(e.buf, '\\', 'n')
		case '\r':
			e.buf = append(e.buf, '\\', 'r')
		case '\t':
			e.buf = append(e.buf, '\\', 't')
		default:
			if r < 0x20 {
				e.buf = append(e.buf, fmt.Sprintf(`\u%04x`, r)...)
				continue
			}
			e.buf = append(e.buf, string(r)...)
		}
	}
	e.buf = append(e.buf, '"')
}

func parseJSONTag(sf reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	name = tag
	opts := ""
	for i, c := range tag {
		if c == ',' {
			name, opts = tag[:i], tag[i+1:]
			break
		}
	}
	if name == "" {
		name = sf.Name
	}
	omitEmpty = opts == "omitempty" || (len(opts) >= 9 && opts[:9] == "omitempty")
	return name, omitEmpty, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.Len() == 0
	case reflect.Array, reflect.Map, reflect.Slice:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
