package cffsubr

import (
	"encoding/binary"
	"testing"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/test"
)

var testGlyphNames = []string{".notdef", "space", "A", "uni20AC", "A.alt"}

func writeTestINDEX(w *parse.BinaryWriter, items [][]byte) {
	w.WriteUint16(uint16(len(items))) // count
	if len(items) == 0 {
		return
	}
	w.WriteBytes([]byte{4}) // offSize
	offset := uint32(1)
	w.WriteUint32(offset)
	for _, item := range items {
		offset += uint32(len(item))
		w.WriteUint32(offset)
	}
	for _, item := range items {
		w.WriteBytes(item)
	}
}

func testTopDICT(charset, charStrings uint32) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteBytes([]byte{29})
	w.WriteUint32(charset)
	w.WriteBytes([]byte{15}) // charset
	w.WriteBytes([]byte{29})
	w.WriteUint32(charStrings)
	w.WriteBytes([]byte{17}) // CharStrings
	return w.Bytes()
}

// buildTestCFF returns a CFF table with a format 0 charset and an empty charstring for every glyph.
func buildTestCFF(names []string) []byte {
	custom := [][]byte{}
	sids := make([]uint16, len(names))
	for i, name := range names {
		sid := -1
		for j, std := range cffStandardStrings {
			if std == name {
				sid = j
				break
			}
		}
		if sid == -1 {
			sid = len(cffStandardStrings) + len(custom)
			custom = append(custom, []byte(name))
		}
		sids[i] = uint16(sid)
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteBytes([]byte{1, 0, 4, 4}) // major, minor, hdrSize, offSize
	writeTestINDEX(w, [][]byte{[]byte("Test")})
	topPos := len(w.Bytes())
	writeTestINDEX(w, [][]byte{testTopDICT(0, 0)})
	writeTestINDEX(w, custom)
	writeTestINDEX(w, nil) // Global Subr INDEX

	charset := uint32(len(w.Bytes()))
	w.WriteBytes([]byte{0}) // format
	for _, sid := range sids[1:] {
		w.WriteUint16(sid)
	}

	charStrings := uint32(len(w.Bytes()))
	items := make([][]byte, len(names))
	for i := range items {
		items[i] = []byte{14} // endchar
	}
	writeTestINDEX(w, items)

	// count, offSize, and two offsets precede the Top DICT
	b := w.Bytes()
	copy(b[topPos+11:], testTopDICT(charset, charStrings))
	return b
}

// buildTestCFF2 returns a CFF2 header followed by the given data.
func buildTestCFF2(data []byte) []byte {
	return append([]byte{2, 0, 5, 0, 0}, data...)
}

func buildTestName() []byte {
	mac := []byte("Caf\x8E")
	windows := []byte{}
	for _, r := range "Test Regular" {
		windows = append(windows, 0, byte(r))
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)                    // version
	w.WriteUint16(2)                    // count
	w.WriteUint16(6 + 2*12)             // storageOffset
	w.WriteUint16(1)                    // platformID
	w.WriteUint16(0)                    // encodingID
	w.WriteUint16(0)                    // languageID
	w.WriteUint16(4)                    // nameID
	w.WriteUint16(uint16(len(mac)))     // length
	w.WriteUint16(0)                    // stringOffset
	w.WriteUint16(3)                    // platformID
	w.WriteUint16(1)                    // encodingID
	w.WriteUint16(0x0409)               // languageID
	w.WriteUint16(4)                    // nameID
	w.WriteUint16(uint16(len(windows))) // length
	w.WriteUint16(uint16(len(mac)))     // stringOffset
	w.WriteBytes(mac)
	w.WriteBytes(windows)
	return w.Bytes()
}

// buildTestTables returns the tables of an OpenType font with CFF outlines and a version 3 post table, or CFF2 outlines and a version 2 post table.
func buildTestTables(tb testing.TB, cff1 bool) map[string][]byte {
	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head[0:], 0x00010000)  // version
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5) // magicNumber
	binary.BigEndian.PutUint16(head[18:], 1000)       // unitsPerEm

	maxp := make([]byte, 6)
	binary.BigEndian.PutUint32(maxp[0:], 0x00005000)
	binary.BigEndian.PutUint16(maxp[4:], uint16(len(testGlyphNames)))

	post := make([]byte, 32)
	binary.BigEndian.PutUint32(post[0:], 0x00030000)
	binary.BigEndian.PutUint16(post[8:], 0xFF9C) // underlinePosition

	tables := map[string][]byte{
		"head": head,
		"maxp": maxp,
		"name": buildTestName(),
	}
	if cff1 {
		tables["CFF "] = buildTestCFF(testGlyphNames)
		tables["post"] = post
	} else {
		var err error
		tables["CFF2"] = buildTestCFF2(nil)
		tables["post"], err = writePostNames(post, testGlyphNames)
		if err != nil {
			tb.Fatal(err)
		}
	}
	return tables
}

func buildTestOTF(tb testing.TB, cff1 bool) []byte {
	sfnt := &SFNT{
		Version: "OTTO",
		IsCFF:   true,
		Tables:  buildTestTables(tb, cff1),
	}
	return sfnt.Write()
}

// addTestMetrics adds the cmap, hhea, hmtx, and OS/2 tables that golang.org/x/image/font/sfnt requires. The cmap maps U+0041 to the glyph named "A".
func addTestMetrics(tables map[string][]byte) {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)                  // version
	w.WriteUint16(1)                  // numTables
	w.WriteUint16(3)                  // platformID
	w.WriteUint16(1)                  // encodingID
	w.WriteUint32(12)                 // offset
	w.WriteUint16(4)                  // format
	w.WriteUint16(32)                 // length
	w.WriteUint16(0)                  // language
	w.WriteUint16(4)                  // segCountX2
	w.WriteUint16(4)                  // searchRange
	w.WriteUint16(1)                  // entrySelector
	w.WriteUint16(0)                  // rangeShift
	w.WriteUint16(0x0041)             // endCode
	w.WriteUint16(0xFFFF)             // endCode
	w.WriteUint16(0)                  // reservedPad
	w.WriteUint16(0x0041)             // startCode
	w.WriteUint16(0xFFFF)             // startCode
	w.WriteUint16(0x10000 + 2 - 0x41) // idDelta, maps U+0041 to glyph 2
	w.WriteUint16(1)                  // idDelta
	w.WriteUint16(0)                  // idRangeOffset
	w.WriteUint16(0)                  // idRangeOffset
	tables["cmap"] = w.Bytes()

	hhea := make([]byte, 36)
	binary.BigEndian.PutUint32(hhea[0:], 0x00010000) // version
	binary.BigEndian.PutUint16(hhea[4:], 800)        // ascender
	binary.BigEndian.PutUint16(hhea[6:], 0xFF38)     // descender
	binary.BigEndian.PutUint16(hhea[18:], 1)         // caretSlopeRise
	binary.BigEndian.PutUint16(hhea[34:], 1)         // numberOfHMetrics
	tables["hhea"] = hhea

	hmtx := make([]byte, 4+2*(len(testGlyphNames)-1))
	binary.BigEndian.PutUint16(hmtx[0:], 500) // advanceWidth
	tables["hmtx"] = hmtx

	os2 := make([]byte, 96)
	binary.BigEndian.PutUint16(os2[0:], 4)    // version
	binary.BigEndian.PutUint16(os2[86:], 500) // sxHeight
	binary.BigEndian.PutUint16(os2[88:], 700) // sCapHeight
	tables["OS/2"] = os2
}

func TestSearchParams(t *testing.T) {
	var tts = []struct {
		numTables uint16
		expected  [3]uint16 // searchRange, entrySelector, rangeShift
	}{
		{1, [3]uint16{16, 0, 0}},
		{2, [3]uint16{32, 1, 0}},
		{9, [3]uint16{128, 3, 16}},
		{16, [3]uint16{256, 4, 0}},
	}
	for _, tt := range tts {
		searchRange, entrySelector, rangeShift := searchParams(tt.numTables)
		test.T(t, [3]uint16{searchRange, entrySelector, rangeShift}, tt.expected)
	}
}

func TestPadding(t *testing.T) {
	test.T(t, padding(0), uint32(0))
	test.T(t, padding(1), uint32(3))
	test.T(t, padding(6), uint32(2))
	test.T(t, padding(8), uint32(0))
}
