// Package tlv maps decoded BER-TLV trees into Go structures using struct
// tags.
//
//	type Template struct {
//	    DFName  []byte         `tlv:"84" fmt:"ascii"`
//	    SFI     []byte         `tlv:"88"`
//	    Unknown []*bertlv.Tlv  `tlv:",unknown"`
//	}
//
// The tag in the struct tag is hexadecimal and compared with the numeric tag
// of each element. Elements that no field claims end up in the unknown field.
package tlv

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/sigsergv/pcsc-tutorial/pkg/bertlv"
)

// Unmarshaler allows custom types to implement their own TLV parsing logic.
// It receives the raw value field (re-encoded children for constructed tags).
type Unmarshaler interface {
	UnmarshalTLV(data []byte) error
}

var elementsType = reflect.TypeOf([]*bertlv.Tlv{})

// Unmarshal parses raw BER-TLV data and maps it into a target Go struct.
func Unmarshal(data []byte, target interface{}) error {
	elements, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Errorf("bertlv decode failed: %w", err)
	}
	return UnmarshalFromElements(elements, target)
}

// UnmarshalFromElements maps already decoded elements to a target struct.
// It supports multiple occurrences of the same tag if the target field is a slice.
func UnmarshalFromElements(elements []*bertlv.Tlv, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must point to a struct, got %s", v.Kind())
	}
	t := v.Type()

	consumed := make(map[int]bool)

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		tagConfig := fieldType.Tag.Get("tlv")

		if tagConfig == "" || isUnknownField(fieldType) {
			continue
		}

		tag, err := ParseTag(strings.Split(tagConfig, ",")[0])
		if err != nil {
			return fmt.Errorf("field %s: %w", fieldType.Name, err)
		}

		for idx, e := range elements {
			if e.Tag() != tag {
				continue
			}
			if err := mapElementToField(e, field); err != nil {
				return fmt.Errorf("field %s (%X): %w", fieldType.Name, tag, err)
			}
			consumed[idx] = true
		}
	}

	handleUnknownFields(v, t, elements, consumed)
	return nil
}

// ParseTag converts the hexadecimal tag notation used in struct tags ("9F38")
// into its numeric value.
func ParseTag(s string) (uint32, error) {
	tag, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	if err != nil || tag == 0 {
		return 0, fmt.Errorf("invalid tag %q", s)
	}
	return uint32(tag), nil
}

// mapElementToField dispatches the element to the appropriate reflection logic.
func mapElementToField(e *bertlv.Tlv, field reflect.Value) error {
	// A slice of structs (but not []byte) grows by one element per occurrence.
	if field.Kind() == reflect.Slice && !isByteSlice(field) && field.Type() != elementsType {
		newElem := reflect.New(field.Type().Elem()).Elem()
		if err := decodeToValue(e, newElem); err != nil {
			return err
		}
		field.Set(reflect.Append(field, newElem))
		return nil
	}

	return decodeToValue(e, field)
}

// decodeToValue handles the leaf-node decoding logic (custom Unmarshaler,
// byte slice, string, element list, nested struct).
func decodeToValue(e *bertlv.Tlv, field reflect.Value) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalTLV(RawValue(e))
		}
	}

	if isByteSlice(field) {
		field.SetBytes(RawValue(e))
		return nil
	}

	if field.Kind() == reflect.String {
		field.SetString(hex.EncodeToString(RawValue(e)))
		return nil
	}

	if field.Type() == elementsType {
		field.Set(reflect.ValueOf(e.Children()))
		return nil
	}

	if isStructOrPtrToStruct(field) {
		targetField := getTargetField(field)
		if e.Encoding() == bertlv.Constructed {
			return UnmarshalFromElements(e.Children(), targetField.Interface())
		}
		// Primitive tags sometimes carry TLV data anyway (proprietary templates).
		return Unmarshal(e.Bytes(), targetField.Interface())
	}

	return nil
}

// RawValue returns the value field of e as it would appear on the wire.
func RawValue(e *bertlv.Tlv) []byte {
	if children := e.Children(); len(children) > 0 {
		return bertlv.Encode(children...)
	}
	return e.Bytes()
}

func handleUnknownFields(v reflect.Value, t reflect.Type, elements []*bertlv.Tlv, consumed map[int]bool) {
	unknownField, found := findUnknownField(v, t)
	if !found {
		return
	}

	var leftovers []*bertlv.Tlv
	for idx, e := range elements {
		if !consumed[idx] {
			leftovers = append(leftovers, e)
		}
	}

	if len(leftovers) > 0 && unknownField.CanSet() {
		unknownField.Set(reflect.ValueOf(leftovers))
	}
}

func isUnknownField(f reflect.StructField) bool {
	return f.Tag.Get("tlv") == ",unknown" || f.Name == "Unknown"
}

func findUnknownField(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	for i := 0; i < v.NumField(); i++ {
		if isUnknownField(t.Field(i)) && t.Field(i).Type == elementsType {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// GetValue scans the raw data for a specific top-level tag and returns its raw payload.
func GetValue(data []byte, tag uint32) ([]byte, error) {
	elements, err := bertlv.Decode(data)
	if err != nil {
		return nil, err
	}

	e, ok := bertlv.Find(tag, elements)
	if !ok {
		return nil, fmt.Errorf("tag %X not found", tag)
	}
	return RawValue(e), nil
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func isStructOrPtrToStruct(v reflect.Value) bool {
	if v.Kind() == reflect.Struct {
		return true
	}
	if v.Kind() == reflect.Ptr && v.Type().Elem().Kind() == reflect.Struct {
		return true
	}
	return false
}

func getTargetField(field reflect.Value) reflect.Value {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return field
	}
	return field.Addr()
}
