//go:build gofuzz
// +build gofuzz

package fuzz

import "github.com/tdewolff/cffsubr"

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	sfnt, err := cffsubr.ParseSFNT(data)
	if err != nil {
		return 0
	}
	_, _ = sfnt.CFFTableTag()
	_, _ = sfnt.GlyphNames()
	_, _ = sfnt.FontName()
	_ = sfnt.Write()
	return 1
}
