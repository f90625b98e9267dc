// Package normalize canonicalizes user-supplied values before they are
// stored or compared.
package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Email trims and lower-cases an email address.
func Email(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Name trims a display name and collapses runs of whitespace. Case is kept.
func Name(s string) string { return strings.Join(strings.Fields(s), " ") }

// Status trims and lower-cases a status value.
func Status(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Role trims and lower-cases a role.
func Role(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Phone strips spaces, dashes, dots and parentheses. A leading + is kept.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Wards parses a comma-separated ward list such as "1, 2,3".
// The result is sorted with duplicates removed. Blank input yields nil.
func Wards(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid ward %q", part)
		}
		out = append(out, n)
	}
	return Ints(out), nil
}

// Ints returns a sorted copy of ws without duplicates.
func Ints(ws []int) []int {
	if len(ws) == 0 {
		return nil
	}
	cp := append([]int(nil), ws...)
	sort.Ints(cp)
	out := cp[:1]
	for _, w := range cp[1:] {
		if w != out[len(out)-1] {
			out = append(out, w)
		}
	}
	return out
}

var wardRe = regexp.MustCompile(`(?i)\bward\s*(?:no\.?\s*)?(\d+)`)

// WardFromAddress extracts N from "Ward N" in an address.
// ok is false when the address names no ward.
func WardFromAddress(address string) (ward int, ok bool) {
	m := wardRe.FindStringSubmatch(address)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
