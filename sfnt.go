package cffsubr

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/tdewolff/parse/v2"
)

// SFNT is an OpenType font split into its tables.
type SFNT struct {
	Length            uint32
	Version           string
	IsCFF, IsTrueType bool // only one can be true
	Tables            map[string][]byte
}

// ParseSFNT parses the table directory of an OpenType font. Font collections are not supported.
func ParseSFNT(b []byte) (*SFNT, error) {
	if len(b) < 12 || uint(math.MaxUint32) < uint(len(b)) {
		return nil, ErrInvalidFontData
	}

	r := parse.NewBinaryReader(b)
	sfntVersion := r.ReadString(4)
	if sfntVersion == "ttcf" {
		return nil, fmt.Errorf("collections are unsupported")
	} else if sfntVersion != "OTTO" && sfntVersion != "true" && binary.BigEndian.Uint32([]byte(sfntVersion)) != 0x00010000 {
		return nil, fmt.Errorf("bad SFNT version")
	}
	numTables := r.ReadUint16()
	_ = r.ReadUint16()                  // searchRange
	_ = r.ReadUint16()                  // entrySelector
	_ = r.ReadUint16()                  // rangeShift
	if r.Len() < 16*uint32(numTables) { // can never exceed uint32 as numTables is uint16
		return nil, ErrInvalidFontData
	}

	tables := make(map[string][]byte, numTables)
	for i := 0; i < int(numTables); i++ {
		tag := r.ReadString(4)
		_ = r.ReadUint32() // checksum
		offset := r.ReadUint32()
		length := r.ReadUint32()

		if uint32(len(b)) <= offset || uint32(len(b))-offset < length {
			return nil, ErrInvalidFontData
		} else if tag == "head" && length < 54 {
			return nil, fmt.Errorf("head: bad table")
		} else if _, ok := tables[tag]; ok {
			return nil, fmt.Errorf("%s: table defined more than once", tag)
		}
		tables[tag] = b[offset : offset+length : offset+length]
	}

	sfnt := &SFNT{}
	sfnt.Length = uint32(len(b))
	sfnt.Version = sfntVersion
	sfnt.IsCFF = sfntVersion == "OTTO"
	sfnt.IsTrueType = !sfnt.IsCFF
	sfnt.Tables = tables

	for _, requiredTable := range []string{"head", "maxp"} {
		if _, ok := tables[requiredTable]; !ok {
			return nil, fmt.Errorf("%s: missing table", requiredTable)
		}
	}
	if len(tables["maxp"]) < 6 {
		return nil, fmt.Errorf("maxp: bad table")
	}
	return sfnt, nil
}

// NumGlyphs returns the number of glyphs as specified in the maxp table.
func (sfnt *SFNT) NumGlyphs() uint16 {
	return binary.BigEndian.Uint16(sfnt.Tables["maxp"][4:])
}

// CFFTableTag returns the tag of the table holding the CFF outlines, either "CFF " or "CFF2".
func (sfnt *SFNT) CFFTableTag() (string, error) {
	_, hasCFF := sfnt.Tables["CFF "]
	_, hasCFF2 := sfnt.Tables["CFF2"]
	if hasCFF && hasCFF2 {
		return "", fmt.Errorf("font contains both CFF and CFF2 tables")
	} else if hasCFF {
		return "CFF ", nil
	} else if hasCFF2 {
		return "CFF2", nil
	}
	return "", fmt.Errorf("CFF: missing table")
}

// CFFVersion returns 1 for fonts with a "CFF " table and 2 for fonts with a "CFF2" table.
func (sfnt *SFNT) CFFVersion() (int, error) {
	tag, err := sfnt.CFFTableTag()
	if err != nil {
		return 0, err
	} else if tag == "CFF2" {
		return 2, nil
	}
	return 1, nil
}

// GlyphNames returns the glyph names from the post table, or from the CFF charset when the post table has none. It returns nil when the font has no glyph names.
func (sfnt *SFNT) GlyphNames() ([]string, error) {
	numGlyphs := sfnt.NumGlyphs()
	if post, ok := sfnt.Tables["post"]; ok && 4 <= len(post) && binary.BigEndian.Uint32(post) == 0x00020000 {
		names, err := parsePostNames(post, numGlyphs)
		if err != nil {
			return nil, err
		}
		return names, nil
	}

	b, ok := sfnt.Tables["CFF "]
	if !ok {
		return nil, nil
	}
	cff, err := parseCFF(b)
	if err != nil {
		return nil, err
	} else if cff.numGlyphs != int(numGlyphs) {
		return nil, fmt.Errorf("CFF: number of glyphs does not match maxp table")
	}
	return cff.GlyphNames(), nil
}

// Write writes out the SFNT file. Table checksums and the head table's checkSumAdjustment are recalculated.
func (sfnt *SFNT) Write() []byte {
	tags := make([]string, 0, len(sfnt.Tables))
	for tag := range sfnt.Tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	// write header
	w := parse.NewBinaryWriter([]byte{})
	if sfnt.IsCFF {
		w.WriteString("OTTO") // sfntVersion
	} else {
		w.WriteUint32(0x00010000) // sfntVersion
	}
	numTables := uint16(len(tags))
	searchRange, entrySelector, rangeShift := searchParams(numTables)
	w.WriteUint16(numTables)     // numTables
	w.WriteUint16(searchRange)   // searchRange
	w.WriteUint16(entrySelector) // entrySelector
	w.WriteUint16(rangeShift)    // rangeShift

	// we'll write the table records at the end
	w.WriteBytes(make([]byte, uint32(numTables)<<4))

	// write tables
	checksumAdjustmentPos := -1
	offsets, lengths := make([]uint32, numTables), make([]uint32, numTables)
	for i, tag := range tags {
		offsets[i] = uint32(len(w.Bytes()))
		table := sfnt.Tables[tag]
		if tag == "head" {
			checksumAdjustmentPos = len(w.Bytes()) + 8
			w.WriteBytes(table[:8])
			w.WriteUint32(0) // checkSumAdjustment
			w.WriteBytes(table[12:])
		} else {
			w.WriteBytes(table)
		}
		lengths[i] = uint32(len(w.Bytes())) - offsets[i]
		w.WriteBytes(make([]byte, padding(lengths[i])))
	}

	// add table record entries
	buf := w.Bytes()
	for i, tag := range tags {
		pos := 12 + i<<4
		copy(buf[pos:], []byte(tag))
		checksum := calcChecksum(buf[offsets[i] : offsets[i]+lengths[i]+padding(lengths[i])])
		binary.BigEndian.PutUint32(buf[pos+4:], checksum)
		binary.BigEndian.PutUint32(buf[pos+8:], offsets[i])
		binary.BigEndian.PutUint32(buf[pos+12:], lengths[i])
	}
	if checksumAdjustmentPos != -1 {
		binary.BigEndian.PutUint32(buf[checksumAdjustmentPos:], 0xB1B0AFBA-calcChecksum(buf))
	}
	sfnt.Length = uint32(len(buf))
	return buf
}
