package cffsubr

import (
	"encoding/binary"
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// parsePostNames returns the glyph names of a version 2 post table.
func parsePostNames(b []byte, numGlyphs uint16) ([]string, error) {
	if len(b) < 34 {
		return nil, fmt.Errorf("post: bad table")
	}

	r := parse.NewBinaryReader(b)
	if version := r.ReadUint32(); version != 0x00020000 {
		return nil, fmt.Errorf("post: bad version")
	}
	_ = r.ReadBytes(28)
	if r.ReadUint16() != numGlyphs {
		return nil, fmt.Errorf("post: numGlyphs does not match maxp table numGlyphs")
	} else if uint32(len(b)) < 34+2*uint32(numGlyphs) {
		return nil, fmt.Errorf("post: bad table")
	}

	numStrings := 0
	glyphNameIndex := make([]uint16, numGlyphs)
	for i := 0; i < int(numGlyphs); i++ {
		glyphNameIndex[i] = r.ReadUint16()
		if 258 <= glyphNameIndex[i] {
			numStrings++
		}
	}

	stringData := make([]string, 0, numStrings)
	for 0 < r.Len() {
		length := r.ReadByte()
		if r.Len() < uint32(length) {
			return nil, fmt.Errorf("post: bad stringData")
		}
		stringData = append(stringData, string(r.ReadBytes(uint32(length))))
	}

	names := make([]string, numGlyphs)
	for glyphID, index := range glyphNameIndex {
		if index < 258 {
			names[glyphID] = macintoshGlyphNames[index]
		} else if int(index)-258 < len(stringData) {
			names[glyphID] = stringData[index-258]
		} else {
			return nil, fmt.Errorf("post: bad glyphNameIndex")
		}
	}
	return names, nil
}

// writePostNames returns a version 2 post table with the given glyph names, the header fields are copied from post.
func writePostNames(post []byte, names []string) ([]byte, error) {
	if len(post) < 32 {
		return nil, fmt.Errorf("post: bad table")
	} else if 65535 < len(names) {
		return nil, fmt.Errorf("post: too many glyphs")
	}

	macIndex := make(map[string]uint16, len(macintoshGlyphNames))
	for i, name := range macintoshGlyphNames {
		macIndex[name] = uint16(i)
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00020000) // version
	w.WriteBytes(post[4:32])
	w.WriteUint16(uint16(len(names))) // numGlyphs

	stringIndex := map[string]uint16{}
	stringData := []string{}
	for _, name := range names {
		if index, ok := macIndex[name]; ok {
			w.WriteUint16(index)
		} else if index, ok := stringIndex[name]; ok {
			w.WriteUint16(index)
		} else if 255 < len(name) {
			return nil, fmt.Errorf("post: glyph name too long: %s", name)
		} else if 65535-258 < len(stringData) {
			return nil, fmt.Errorf("post: too many glyph names")
		} else {
			index = uint16(258 + len(stringData))
			stringIndex[name] = index
			stringData = append(stringData, name)
			w.WriteUint16(index)
		}
	}
	for _, name := range stringData {
		w.WriteBytes([]byte{byte(len(name))})
		w.WriteString(name)
	}
	return w.Bytes(), nil
}

// writePostNoNames returns a version 3 post table that provides no glyph names, the header fields are copied from post.
func writePostNoNames(post []byte) ([]byte, error) {
	if len(post) < 32 {
		return nil, fmt.Errorf("post: bad table")
	}
	b := make([]byte, 32)
	copy(b, post[:32])
	binary.BigEndian.PutUint32(b, 0x00030000) // version
	return b, nil
}
