package cffsubr

import (
	"encoding/binary"
	"fmt"
)

// MediaType returns the media type (MIME) of the font, which is determined by its magic number.
func MediaType(b []byte) (string, error) {
	if len(b) < 4 {
		return "", ErrInvalidFontData
	}
	tag := string(b[:4])
	switch tag {
	case "wOFF":
		return "font/woff", nil
	case "wOF2":
		return "font/woff2", nil
	case "true", "\x00\x01\x00\x00":
		return "font/truetype", nil
	case "OTTO":
		return "font/opentype", nil
	case "ttcf":
		return "font/collection", nil
	}
	if 36 <= len(b) && binary.LittleEndian.Uint16(b[34:]) == 0x504C {
		return "application/vnd.ms-fontobject", nil
	}
	return "", fmt.Errorf("unrecognized font file format")
}

// ToSFNT converts a WOFF, WOFF2, or EOT font to the SFNT font format (TTF or OTF). SFNT input is returned as is.
func ToSFNT(b []byte) ([]byte, error) {
	mediatype, err := MediaType(b)
	if err != nil {
		return nil, err
	}

	switch mediatype {
	case "font/truetype", "font/opentype":
		return b, nil
	case "font/woff":
		return ParseWOFF(b)
	case "font/woff2":
		return ParseWOFF2(b)
	case "application/vnd.ms-fontobject":
		return ParseEOT(b)
	}
	return nil, fmt.Errorf("unsupported font file format: %s", mediatype)
}
