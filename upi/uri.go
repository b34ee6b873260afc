// Package upi builds UPI payment deep links.
package upi

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Currency is the only currency code emitted in the cu parameter.
const Currency = "INR"

var (
	// ErrMissingField is returned when the VPA or payee name is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidAmount is returned when the amount is not a finite number.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Payment holds the fields encoded into a upi://pay link. Amount and Note are
// optional; Amount is kept as the user typed it and normalized by BuildURI.
type Payment struct {
	VPA    string
	Name   string
	Amount string
	Note   string
}

type param struct {
	key, value string
}

// BuildURI returns the upi://pay link for p. Parameters are always emitted in
// the order pa, pn, cu, am, tn and every value is percent-encoded.
func BuildURI(p Payment) (string, error) {
	if p.VPA == "" {
		return "", fmt.Errorf("vpa: %w", ErrMissingField)
	}
	if p.Name == "" {
		return "", fmt.Errorf("name: %w", ErrMissingField)
	}

	params := []param{
		{"pa", p.VPA},
		{"pn", p.Name},
		{"cu", Currency},
	}
	if p.Amount != "" {
		am, err := FormatAmount(p.Amount)
		if err != nil {
			return "", err
		}
		params = append(params, param{"am", am})
	}
	if p.Note != "" {
		params = append(params, param{"tn", p.Note})
	}

	var b strings.Builder
	b.WriteString("upi://pay?")
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv.key)
		b.WriteByte('=')
		b.WriteString(Escape(kv.value))
	}
	return b.String(), nil
}

// FormatAmount parses s as a decimal number and renders it with two
// fractional digits.
func FormatAmount(s string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w %q: not a finite number", ErrInvalidAmount, s)
	}
	return strconv.FormatFloat(f, 'f', 2, 64), nil
}

const upperhex = "0123456789ABCDEF"

// Escape percent-encodes every byte of s except ASCII letters, digits and
// the characters _ . - ~ /.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return true
	}
	return false
}
