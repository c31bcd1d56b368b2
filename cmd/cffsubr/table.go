package main

import (
	"github.com/tdewolff/argp"
	"github.com/tdewolff/cffsubr"
)

type Table struct {
	Force  bool   `short:"f" desc:"Force overwriting existing files."`
	Output string `short:"o" desc:"Output file for the bare CFF2 table." default:"-"`
	Input  string `index:"0" desc:"Input font file."`
}

func (cmd *Table) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}

	b, err := readFile(cmd.Input)
	if err != nil {
		return err
	}
	if _, err := cffsubr.MediaType(b); err == nil {
		// tx does not read web fonts
		if b, err = cffsubr.ToSFNT(b); err != nil {
			return err
		}
	}

	cff2, err := cffsubr.Subroutinize(b)
	if err != nil {
		return err
	}
	return writeFile(cmd.Output, cmd.Force, cff2)
}
