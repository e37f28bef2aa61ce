// Package tags reads the options of struct tags written as
// `key:"name:value;flag"`.
package tags

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/openhms/hms/internal/errs"
)

var ErrBadTag = errors.New("unrecognised struct tag")

// Options are the entries of one tag key. A flag without a value maps to "".
type Options map[string]string

func Parse(tag reflect.StructTag, key string) (Options, error) {
	opts := Options{}

	value, ok := tag.Lookup(key)
	if !ok || value == "" {
		return opts, nil
	}

	for entry := range strings.SplitSeq(value, ";") {
		name, v, _ := strings.Cut(entry, ":")
		if name == "" || strings.Contains(v, ":") {
			return opts, errs.Wrapf(ErrBadTag, "%s:%q", key, value)
		}

		opts[name] = v
	}

	return opts, nil
}

// Bool returns def when the option is absent. A bare flag counts as true.
func (o Options) Bool(name string, def bool) (bool, error) {
	v, ok := o[name]
	if !ok {
		return def, nil
	}

	if v == "" {
		return true, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, errs.Wrap(ErrBadTag, err)
	}

	return b, nil
}
