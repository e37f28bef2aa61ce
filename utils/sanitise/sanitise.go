package sanitise

import (
	"errors"
	"html"
	"reflect"
	"slices"

	"github.com/microcosm-cc/bluemonday"

	"github.com/openhms/hms/internal/errs"
	"github.com/openhms/hms/utils/tags"
)

// TagName holds the options of a field, e.g. `hms:"sanitise:false"`.
const TagName = "hms"

var (
	ErrSanitisation                = errors.New("failed sanitisation")
	ErrUnsupportedSanitisationType = errors.New("sanitisation type not supported")
	ErrUnstableSanitisation        = errors.New("sanitisation unstable")
	ErrNonSettableString           = errors.New("non settable string")
)

var policy = bluemonday.StrictPolicy()

// Stringlikes strips markup from every string reachable from obj, in place.
// obj must be a pointer for its strings to be settable. Values stay plain
// text: entities the policy produces are decoded again.
func Stringlikes[T any](obj T) (T, error) {
	fieldValue := getDerefFieldValue(reflect.ValueOf(obj))
	if !fieldValue.IsValid() {
		return obj, nil
	}

	err := sanitiseSwitch(fieldValue)
	if err != nil {
		return obj, errs.Wrap(ErrSanitisation, err)
	}

	return obj, nil
}

func sanitiseSwitch(fieldValue reflect.Value) error {
	switch fieldValue.Kind() {
	case reflect.Slice:
		return sanitiseFieldSlice(fieldValue)
	case reflect.Struct:
		return sanitiseFieldStruct(fieldValue)
	case reflect.String:
		return sanitiseFieldString(fieldValue)
	default:
		if isIgnoredType(fieldValue.Kind()) {
			return nil
		}

		return errs.Wrapf(ErrUnsupportedSanitisationType, "%v", fieldValue.Kind())
	}
}

func sanitiseFieldStruct(fieldValue reflect.Value) error {
	fieldType := fieldValue.Type()
	for i := range fieldValue.NumField() {
		field := fieldType.Field(i)
		if !field.IsExported() {
			continue
		}

		sanitise, err := checkSanitiseTag(field)
		if err != nil {
			return err
		}

		if !sanitise {
			continue
		}

		fieldValue := getDerefFieldValue(fieldValue.Field(i))
		if !fieldValue.IsValid() {
			// nil pointer
			continue
		}

		err = sanitiseSwitch(fieldValue)
		if err != nil {
			return err
		}
	}

	return nil
}

func sanitiseFieldSlice(fieldValue reflect.Value) error {
	for i := range fieldValue.Len() {
		fieldValue := getDerefFieldValue(fieldValue.Index(i))
		if !fieldValue.IsValid() {
			continue
		}

		err := sanitiseSwitch(fieldValue)
		if err != nil {
			return err
		}
	}

	return nil
}

func sanitiseFieldString(fieldValue reflect.Value) error {
	sanitised, err := String(fieldValue.String())
	if err != nil {
		return err
	}

	if sanitised == fieldValue.String() {
		return nil
	}

	if !fieldValue.CanSet() {
		return ErrNonSettableString
	}

	fieldValue.SetString(sanitised)

	return nil
}

// String removes markup until the value no longer changes.
func String(value string) (string, error) {
	const maxCntForStabilisation = 10

	for range maxCntForStabilisation {
		sanitised := html.UnescapeString(policy.Sanitize(value))
		if sanitised == value {
			return sanitised, nil
		}

		value = sanitised
	}

	return "", ErrUnstableSanitisation
}

func isIgnoredType(kind reflect.Kind) bool {
	// Arrays are only uuids and hashes here.
	ignored := []reflect.Kind{reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Float32, reflect.Float64, reflect.Array}

	return slices.Contains(ignored, kind)
}

func checkSanitiseTag(field reflect.StructField) (bool, error) {
	opts, err := tags.Parse(field.Tag, TagName)
	if err != nil {
		return false, err
	}

	return opts.Bool("sanitise", true)
}

func getDerefFieldValue(fieldValue reflect.Value) reflect.Value {
	for fieldValue.Kind() == reflect.Pointer || fieldValue.Kind() == reflect.Interface {
		fieldValue = fieldValue.Elem()
	}

	return fieldValue
}
