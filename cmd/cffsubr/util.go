package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tdewolff/cffsubr"
	"github.com/tdewolff/prompt"
)

var extMimetype = map[string]string{
	".otf":   "font/opentype",
	".woff2": "font/woff2",
}

func formatBytes(size uint64) string {
	if size < 10 {
		return fmt.Sprintf("%d B", size)
	}

	units := []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}
	scale := int(math.Floor((math.Log10(float64(size)) + math.Log10(2.0)) / 3.0))
	value := float64(size) / math.Pow10(scale*3.0)
	format := "%.0f %s"
	if value < 10.0 {
		format = "%.1f %s"
	}
	return fmt.Sprintf(format, value, units[scale])
}

// readFile reads from stdin when filename is "-".
func readFile(filename string) ([]byte, error) {
	var err error
	var r *os.File
	if filename == "-" {
		r = os.Stdin
	} else if r, err = os.Open(filename); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		r.Close()
		return nil, err
	} else if err := r.Close(); err != nil {
		return nil, err
	}
	return b, nil
}

// writeFile writes to stdout when filename is "-", and asks before overwriting an existing file unless forced.
func writeFile(filename string, force bool, b []byte) error {
	var err error
	var w io.WriteCloser
	if filename == "-" {
		w = os.Stdout
	} else {
		if _, err := os.Stat(filename); err == nil {
			if !force && !prompt.YesNo(fmt.Sprintf("%s already exists, overwrite?", filename), false) {
				return fmt.Errorf("file already exists")
			}
		}
		if w, err = os.Create(filename); err != nil {
			return err
		}
	}

	if _, err := w.Write(b); err != nil {
		w.Close()
		return err
	} else if err := w.Close(); err != nil {
		return err
	}
	return nil
}

// outputCFFVersion returns the CFF version of the output font, which is that of the input font unless set explicitly.
func outputCFFVersion(b []byte, version int) (int, error) {
	if version != 0 {
		return version, nil
	}
	b, err := cffsubr.ToSFNT(b)
	if err != nil {
		return 0, err
	}
	sfnt, err := cffsubr.ParseSFNT(b)
	if err != nil {
		return 0, err
	}
	return sfnt.CFFVersion()
}

// encodeFont encodes an SFNT font in the given output format.
func encodeFont(b []byte, mimetype string) ([]byte, error) {
	switch mimetype {
	case "font/opentype":
		return b, nil
	case "font/woff2":
		sfnt, err := cffsubr.ParseSFNT(b)
		if err != nil {
			return nil, err
		}
		return sfnt.WriteWOFF2()
	case "":
		return nil, fmt.Errorf("mimetype not set")
	}
	return nil, fmt.Errorf("unsupported output file type: %v", mimetype)
}
