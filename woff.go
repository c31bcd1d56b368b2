package cffsubr

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/tdewolff/parse/v2"
)

// ParseWOFF parses the WOFF font format and returns its contained SFNT font format (TTF or OTF). See https://www.w3.org/TR/WOFF/
func ParseWOFF(b []byte) ([]byte, error) {
	sfnt, err := parseWOFF(b)
	if err != nil {
		return nil, err
	}
	return sfnt.Write(), nil
}

func parseWOFF(b []byte) (*SFNT, error) {
	if len(b) < 44 {
		return nil, ErrInvalidFontData
	}

	r := parse.NewBinaryReader(b)
	signature := r.ReadString(4)
	if signature != "wOFF" {
		return nil, fmt.Errorf("bad signature")
	}
	flavor := uint32ToString(r.ReadUint32())
	if flavor == "ttcf" {
		return nil, fmt.Errorf("collections are unsupported")
	}
	length := r.ReadUint32()        // length
	numTables := r.ReadUint16()     // numTables
	reserved := r.ReadUint16()      // reserved
	totalSfntSize := r.ReadUint32() // totalSfntSize
	_ = r.ReadBytes(24)             // version, metadata and private data block

	frontSize := 44 + 20*uint32(numTables) // can never exceed uint32 as numTables is uint16
	if length != uint32(len(b)) || numTables == 0 || length <= frontSize || reserved != 0 {
		// file size does not match length in header
		// or numTables is zero
		// or table directory is bigger or equal to the file size
		// or reserved is not zero (required by WOFF 1.0)
		return nil, ErrInvalidFontData
	} else if MaxMemory < totalSfntSize {
		return nil, ErrExceedsMemory
	}

	sfnt := &SFNT{
		Version:    flavor,
		IsCFF:      flavor == "OTTO",
		IsTrueType: flavor != "OTTO",
		Tables:     make(map[string][]byte, numTables),
	}
	var uncompressedSize uint32
	for i := 0; i < int(numTables); i++ {
		tag := uint32ToString(r.ReadUint32())
		offset := r.ReadUint32()
		compLength := r.ReadUint32()
		origLength := r.ReadUint32()
		_ = r.ReadUint32() // origChecksum
		if length < offset || length-offset < compLength || origLength < compLength {
			// table extends beyond file
			// or compressed size larger then uncompressed
			return nil, ErrInvalidFontData
		} else if _, ok := sfnt.Tables[tag]; ok {
			return nil, fmt.Errorf("%s: table defined more than once", tag)
		} else if MaxMemory-uncompressedSize < origLength {
			return nil, ErrExceedsMemory
		}
		uncompressedSize += origLength

		data := b[offset : offset+compLength : offset+compLength]
		if compLength != origLength {
			zr, err := zlib.NewReader(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", tag, err)
			}
			buf := bytes.NewBuffer(make([]byte, 0, origLength))
			if _, err = io.Copy(buf, io.LimitReader(zr, int64(origLength)+1)); err != nil {
				return nil, fmt.Errorf("%s: %w", tag, err)
			} else if err = zr.Close(); err != nil {
				return nil, fmt.Errorf("%s: %w", tag, err)
			}
			data = buf.Bytes()
		}
		if uint32(len(data)) != origLength {
			return nil, fmt.Errorf("%s: bad origLength", tag)
		}
		sfnt.Tables[tag] = data
	}
	if _, ok := sfnt.Tables["head"]; !ok || len(sfnt.Tables["head"]) < 54 {
		return nil, fmt.Errorf("head: must be present")
	}
	return sfnt, nil
}
