package main

import (
	"log"
	"os"

	"github.com/tdewolff/argp"
)

var (
	Error   *log.Logger
	Warning *log.Logger
)

func main() {
	Error = log.New(os.Stderr, "ERROR: ", 0)
	Warning = log.New(os.Stderr, "WARNING: ", 0)

	cmd := argp.New("Subroutinize CFF and CFF2 fonts using the AFDKO tx tool - Taco de Wolff")
	cmd.AddCmd(&Subr{}, "subr", "Subroutinize the CFF outlines of a font")
	cmd.AddCmd(&Table{}, "table", "Output the subroutinized CFF2 table of a font")
	cmd.AddCmd(&Info{}, "info", "Get font and tx info")
	cmd.Parse()
}
