//go:build gofuzz
// +build gofuzz

package fuzz

import (
	"bytes"

	"github.com/tdewolff/cffsubr"
)

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	b, err := cffsubr.ParseWOFF2(data)
	if err != nil {
		return 0
	}
	sfnt, err := cffsubr.ParseSFNT(b)
	if err != nil {
		return 0
	}
	woff2, err := sfnt.WriteWOFF2()
	if err != nil {
		panic(err)
	}
	b2, err := cffsubr.ParseWOFF2(woff2)
	if err != nil {
		panic(err)
	} else if sfnt2, err := cffsubr.ParseSFNT(b2); err != nil || len(sfnt2.Tables) != len(sfnt.Tables)-hasDSIG(sfnt) {
		panic("WOFF2 round trip changed the tables")
	} else if !bytes.Equal(sfnt2.Tables["CFF "], sfnt.Tables["CFF "]) {
		panic("WOFF2 round trip changed the CFF table")
	}
	return 1
}

func hasDSIG(sfnt *cffsubr.SFNT) int {
	if _, ok := sfnt.Tables["DSIG"]; ok {
		return 1
	}
	return 0
}
