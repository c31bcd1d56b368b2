//go:build gofuzz
// +build gofuzz

package fuzz

import "github.com/tdewolff/cffsubr"

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	b, err := cffsubr.ParseWOFF(data)
	if err != nil {
		return 0
	} else if _, err := cffsubr.ParseSFNT(b); err != nil {
		return 0
	}
	return 1
}
