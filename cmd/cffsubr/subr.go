package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/tdewolff/argp"
	"github.com/tdewolff/cffsubr"
)

type Subr struct {
	Quiet          bool   `short:"q" desc:"Suppress output except for errors."`
	Force          bool   `short:"f" desc:"Force overwriting existing files."`
	CFFVersion     int    `name:"cff-version" desc:"Output CFF version, 1 or 2. Defaults to the version of the input font."`
	DropGlyphNames bool   `name:"drop-glyph-names" desc:"Don't keep glyph names in the post table when converting to CFF2."`
	Verify         bool   `desc:"Verify the output font, only for CFF output."`
	Type           string `short:"t" desc:"Explicitly set output mimetype, eg. font/woff2."`
	Output         string `short:"o" desc:"Output font file (only OTF/WOFF2 are supported). Defaults to the input file."`
	Input          string `index:"0" desc:"Input font file (OTF/WOFF/WOFF2/EOT)."`
}

func (cmd *Subr) Run() error {
	if cmd.Quiet {
		Warning = log.New(io.Discard, "", 0)
	}

	if cmd.Input == "" {
		return argp.ShowUsage
	} else if cmd.Output == "" {
		if cmd.Input == "-" {
			cmd.Output = "-"
		} else {
			cmd.Output = cmd.Input
		}
	}

	b, err := readFile(cmd.Input)
	if err != nil {
		return err
	}
	rLen := len(b)
	rMimetype, err := cffsubr.MediaType(b)
	if err != nil {
		return fmt.Errorf("%v: %v", cmd.Input, err)
	}

	mimetype := extMimetype[filepath.Ext(cmd.Output)]
	if cmd.Type != "" {
		mimetype = cmd.Type
	} else if mimetype == "" {
		mimetype = rMimetype
	}
	if mimetype != "font/opentype" && mimetype != "font/woff2" {
		Warning.Printf("cannot write %v, writing font/opentype instead\n", mimetype)
		mimetype = "font/opentype"
	}
	if cmd.Verify {
		if version, err := outputCFFVersion(b, cmd.CFFVersion); err != nil {
			return fmt.Errorf("%v: %v", cmd.Input, err)
		} else if version == 2 {
			Warning.Println("verification is only supported for CFF output")
		}
	}

	b, err = cffsubr.SubroutinizeFont(b, cffsubr.Options{
		CFFVersion:     cmd.CFFVersion,
		DropGlyphNames: cmd.DropGlyphNames,
		Verify:         cmd.Verify,
	})
	if err != nil {
		return fmt.Errorf("%v: %v", cmd.Input, err)
	}
	if b, err = encodeFont(b, mimetype); err != nil {
		return err
	}
	if err := writeFile(cmd.Output, cmd.Force, b); err != nil {
		return err
	}

	if !cmd.Quiet && cmd.Output != "-" {
		ratio := 1.0
		if 0 < rLen {
			ratio = float64(len(b)) / float64(rLen)
		}
		fmt.Printf("%v:  %v => %v (%.1f%%)\n", filepath.Base(cmd.Output), formatBytes(uint64(rLen)), formatBytes(uint64(len(b))), ratio*100.0)
	}
	return nil
}
