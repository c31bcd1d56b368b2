//go:build gofuzz
// +build gofuzz

package fuzz

import "github.com/tdewolff/cffsubr"

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	b, err := cffsubr.ParseEOT(data)
	if err != nil {
		return 0
	}
	_, _ = cffsubr.ParseSFNT(b)
	return 1
}
