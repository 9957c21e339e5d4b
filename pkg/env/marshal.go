package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// MarshalEnv renders one or more config structs (pointers) as .env content,
// using the key from each field's `env` tag. Zero values are skipped unless
// they differ from the field's envDefault, and untagged nested structs are
// flattened.
func MarshalEnv(cfgs ...any) (string, error) {
	var lines []string
	for _, c := range cfgs {
		v := reflect.ValueOf(c)
		if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
			return "", fmt.Errorf("env: expected pointer to struct, got %T", c)
		}
		lines = appendFields(lines, v.Elem())
	}

	result := strings.Join(lines, "\n")
	if result != "" {
		result += "\n"
	}
	return result, nil
}

func appendFields(lines []string, v reflect.Value) []string {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		val := v.Field(i)

		tag := field.Tag.Get("env")
		if tag == "" {
			if val.Kind() == reflect.Struct && val.Type() != durationType {
				lines = appendFields(lines, val)
			}
			continue
		}

		key, _, _ := strings.Cut(tag, ",")
		if key == "" || !shouldWrite(field, val) {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s=%s", key, formatValue(val)))
	}
	return lines
}

// shouldWrite keeps zero values out unless dropping them would bring back a
// different envDefault, such as false for a flag that defaults to true.
func shouldWrite(field reflect.StructField, val reflect.Value) bool {
	if !val.IsZero() {
		return true
	}
	def, ok := field.Tag.Lookup("envDefault")
	if !ok {
		return false
	}
	zero := formatValue(val)
	return zero != "" && zero != def
}

func formatValue(v reflect.Value) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() {
	case reflect.String:
		s := v.String()
		if strings.ContainsAny(s, " #\"'") {
			return strconv.Quote(s)
		}
		return s
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		items := make([]string, v.Len())
		for i := range items {
			items[i] = formatValue(v.Index(i))
		}
		return strings.Join(items, ",")
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
