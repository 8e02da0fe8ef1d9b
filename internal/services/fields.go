package services

import (
	"sort"
	"strings"
)

// Fields holds the submitted form values of a request. A key is present
// when the client sent it, even with an empty value.
type Fields map[string]string

// Has reports whether name was submitted.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

func (f Fields) requirePresent(names ...string) error {
	for _, name := range names {
		if !f.Has(name) {
			return invalidInput("Missing some required fields")
		}
	}
	return nil
}

// rejectEmpty fails when any of the named fields was submitted blank.
func (f Fields) rejectEmpty(names ...string) error {
	for _, name := range names {
		if value, ok := f[name]; ok && strings.TrimSpace(value) == "" {
			return emptyValue()
		}
	}
	return nil
}

func (f Fields) rejectUnknown(allowed ...string) error {
	var unknown []string
	for name := range f {
		if !contains(allowed, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return invalidInput("unknown field: " + strings.Join(unknown, ", "))
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
