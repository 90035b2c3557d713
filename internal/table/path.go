package table

import (
	"fmt"
	"reflect"
	"strings"
)

// fieldPath - цепочка индексов полей для пути вида "bank.name".
type fieldPath [][]int

// compilePath разбирает путь по типу T. Сегмент совпадает с именем поля
// (без учета регистра) или с именем из json-тега. Поля встроенных структур видны напрямую.
func compilePath(t reflect.Type, path string) (fieldPath, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnknownField)
	}

	var compiled fieldPath
	for _, segment := range strings.Split(path, ".") {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, path)
		}

		field, ok := lookupField(t, segment)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, path)
		}
		compiled = append(compiled, field.Index)
		t = field.Type
	}

	return compiled, nil
}

func lookupField(t reflect.Type, name string) (reflect.StructField, bool) {
	for _, field := range reflect.VisibleFields(t) {
		if !field.IsExported() {
			continue
		}
		if strings.EqualFold(field.Name, name) || jsonName(field) == name {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// resolve возвращает значение по пути. Nil-указатель по дороге дает nil.
func (p fieldPath) resolve(item any) any {
	v := reflect.ValueOf(item)
	for _, index := range p {
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil
			}
			v = v.Elem()
		}

		var err error
		v, err = v.FieldByIndexErr(index)
		if err != nil {
			return nil
		}
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

// containsText ищет term во всех строковых полях, включая вложенные структуры и срезы.
func containsText(v reflect.Value, term string) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return false
		}
		return containsText(v.Elem(), term)
	case reflect.String:
		return strings.Contains(strings.ToLower(v.String()), term)
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if containsText(v.Field(i), term) {
				return true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if containsText(v.Index(i), term) {
				return true
			}
		}
	}
	return false
}
