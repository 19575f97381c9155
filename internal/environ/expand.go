package environ

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Matches ${NAME} and ${NAME:fallback}; the colon is captured so that ${NAME:} means "empty fallback".
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// ErrUndefinedVar is returned when a placeholder has no value and no fallback.
var ErrUndefinedVar = errors.New("environment variable not defined")

// Expand replaces ${NAME} and ${NAME:fallback} placeholders with values from the current
// environment. Placeholders that cannot be resolved are left in place and reported in the
// returned error.
func Expand(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		name, hasFallback, fallback := parts[1], parts[2] == ":", parts[3]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasFallback {
			return fallback
		}

		missing = append(missing, fmt.Errorf("%w: %s", ErrUndefinedVar, name))
		return match
	})

	return result, errors.Join(missing...)
}

// ExpandAll runs Expand over every element, returning a new slice.
func ExpandAll(inputs []string) ([]string, error) {
	if inputs == nil {
		return nil, nil
	}

	out := make([]string, len(inputs))
	var errs []error
	for i, in := range inputs {
		expanded, err := Expand(in)
		if err != nil {
			errs = append(errs, err)
		}
		out[i] = expanded
	}
	return out, errors.Join(errs...)
}
