package main

import (
	"fmt"

	"github.com/tdewolff/cffsubr"
)

type Info struct {
	Input string `index:"0" desc:"Input file, only tx info is printed when empty."`
}

func (cmd *Info) Run() error {
	fmt.Printf("cffsubr: %s\n", cffsubr.Version)
	if path, err := cffsubr.Path(); err != nil {
		Error.Println("tx:", err)
	} else if version, err := cffsubr.TXVersion(); err != nil {
		Error.Println("tx:", err)
	} else {
		fmt.Printf("tx: %s (%s)\n", version, path)
	}
	if cmd.Input == "" {
		return nil
	}

	b, err := readFile(cmd.Input)
	if err != nil {
		return err
	}
	mimetype, err := cffsubr.MediaType(b)
	if err != nil {
		return err
	} else if b, err = cffsubr.ToSFNT(b); err != nil {
		return err
	}
	sfnt, err := cffsubr.ParseSFNT(b)
	if err != nil {
		return err
	}

	fmt.Printf("\nFile: %s\n", cmd.Input)
	fmt.Printf("Type: %s\n", mimetype)
	if name, err := sfnt.FontName(); err != nil {
		Warning.Println(err)
	} else {
		fmt.Printf("Name: %s\n", name)
	}
	fmt.Printf("Glyphs: %d\n", sfnt.NumGlyphs())

	tag, err := sfnt.CFFTableTag()
	if err != nil {
		return err
	}
	fmt.Printf("Outlines: %q table, %s\n", tag, formatBytes(uint64(len(sfnt.Tables[tag]))))
	if names, err := sfnt.GlyphNames(); err != nil {
		Warning.Println(err)
	} else if names == nil {
		fmt.Printf("Glyph names: no\n")
	} else {
		fmt.Printf("Glyph names: yes\n")
	}
	return nil
}
