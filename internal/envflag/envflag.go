// Copyright 2026 The guardgen Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package envflag populates a struct of settings from a comma-separated
// environment variable such as GUARDGEN_DEBUG=log=debug,json.
package envflag

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// ErrInvalid is matched by errors for values that cannot be parsed.
var ErrInvalid = errors.New("invalid value")

type invalidError struct{ error }

func (invalidError) Is(err error) bool { return err == ErrInvalid }

// Init calls Parse with the value of the environment variable envVar.
func Init[T any](flags *T, envVar string) error {
	if err := Parse(flags, os.Getenv(envVar)); err != nil {
		return fmt.Errorf("cannot parse %s: %w", envVar, err)
	}
	return nil
}

// Parse sets the fields of *flags from their `envflag` tags and from env.
//
// A tag holds comma-separated options: `default:<value>` sets the value
// used when env does not mention the field, and `deprecated` rejects any
// value other than the default.
//
// env is a comma-separated list of name=value elements where the name is
// the lower-cased field name. A bare name sets a bool field to true.
// Fields may be bool, int, string or implement encoding.TextUnmarshaler
// through their pointer. All elements are processed; the errors are
// joined.
func Parse[T any](flags *T, env string) error {
	v := reflect.ValueOf(flags).Elem()
	fields, err := collect(v)
	if err != nil {
		return err
	}

	var errs []error
	for _, elem := range strings.Split(env, ",") {
		if elem == "" {
			continue
		}
		name, value, hasValue := strings.Cut(elem, "=")
		f, ok := fields[strings.ToLower(name)]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown flag %q", elem))
			continue
		}
		if !hasValue {
			if f.value.Kind() != reflect.Bool {
				errs = append(errs, fmt.Errorf("flag %q needs a value", f.name))
				continue
			}
			value = "true"
		}
		if f.deprecated {
			old := f.value.Interface()
			if err := f.set(value); err != nil {
				errs = append(errs, err)
				continue
			}
			if !reflect.DeepEqual(old, f.value.Interface()) {
				f.value.Set(reflect.ValueOf(old))
				errs = append(errs, fmt.Errorf("flag %q is deprecated and cannot be changed", f.name))
			}
			continue
		}
		if err := f.set(value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type field struct {
	name       string
	value      reflect.Value
	deprecated bool
}

func collect(v reflect.Value) (map[string]*field, error) {
	t := v.Type()
	fields := make(map[string]*field, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		f := &field{name: strings.ToLower(sf.Name), value: v.Field(i)}
		tag, ok := sf.Tag.Lookup("envflag")
		if ok {
			for _, opt := range strings.Split(tag, ",") {
				key, arg, hasArg := strings.Cut(opt, ":")
				switch {
				case key == "default" && hasArg:
					if err := f.set(arg); err != nil {
						return nil, fmt.Errorf("bad default for %s: %w", sf.Name, err)
					}
				case key == "deprecated" && !hasArg:
					f.deprecated = true
				default:
					return nil, fmt.Errorf("unknown envflag tag option %q on %s", opt, sf.Name)
				}
			}
		}
		fields[f.name] = f
	}
	return fields, nil
}

func (f *field) set(s string) error {
	if u, ok := f.value.Addr().Interface().(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return invalidError{fmt.Errorf("invalid value for %s: %v", f.name, err)}
		}
		return nil
	}
	switch f.value.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return invalidError{fmt.Errorf("invalid bool value for %s: %v", f.name, err)}
		}
		f.value.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(s)
		if err != nil {
			return invalidError{fmt.Errorf("invalid int value for %s: %v", f.name, err)}
		}
		f.value.SetInt(int64(n))
	case reflect.String:
		f.value.SetString(s)
	default:
		return invalidError{fmt.Errorf("unsupported kind %s for %s", f.value.Kind(), f.name)}
	}
	return nil
}
