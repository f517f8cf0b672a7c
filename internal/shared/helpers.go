// Package shared provides small helpers used across the app and adapter
// layers.
package shared

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// RequireValue returns value without surrounding whitespace, or an
// InvalidArgument error naming what is missing when nothing is left.
func RequireValue(value string, what string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(what + " is required")
	}
	return trimmed, nil
}

// SplitVersioned splits "name@version". hasVersion reports whether an '@'
// was present, so "name@" can be told apart from "name".
func SplitVersioned(value string) (name string, version string, hasVersion bool) {
	name, version, hasVersion = strings.Cut(strings.TrimSpace(value), "@")
	return strings.TrimSpace(name), strings.TrimSpace(version), hasVersion
}
