// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package criteria normalizes scoring criterion labels.
package criteria

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrBlank = errors.New("please enter a valid criterion")

// Normalize trims the input and upper-cases it. Blank or whitespace-only
// input is rejected with ErrBlank.
func Normalize(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrBlank
	}
	return Upper(trimmed), nil
}

// Upper applies Unicode upper-casing without locale tailoring.
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
