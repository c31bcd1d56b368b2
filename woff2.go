package cffsubr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/andybalholm/brotli"
	"github.com/tdewolff/parse/v2"
)

// Specification:
// https://www.w3.org/TR/WOFF2/

var woff2TableTags = []string{
	"cmap", "head", "hhea", "hmtx",
	"maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca",
	"prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern",
	"LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS",
	"GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL",
	"SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar",
	"fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar",
	"mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat",
	"Gloc", "Feat", "Sill",
}

// ParseWOFF2 parses the WOFF2 font format and returns its contained SFNT font format. Only fonts with CFF outlines are supported, since the glyf, loca, and hmtx table transforms are not reconstructed.
func ParseWOFF2(b []byte) ([]byte, error) {
	sfnt, err := parseWOFF2(b)
	if err != nil {
		return nil, err
	}
	return sfnt.Write(), nil
}

func parseWOFF2(b []byte) (*SFNT, error) {
	if len(b) < 48 {
		return nil, ErrInvalidFontData
	}

	r := parse.NewBinaryReader(b)
	signature := r.ReadString(4)
	if signature != "wOF2" {
		return nil, fmt.Errorf("bad signature")
	}
	flavor := uint32ToString(r.ReadUint32())
	if flavor == "ttcf" {
		return nil, fmt.Errorf("collections are unsupported")
	} else if flavor != "OTTO" {
		return nil, fmt.Errorf("only fonts with CFF outlines are supported")
	}
	length := r.ReadUint32()              // length
	numTables := r.ReadUint16()           // numTables
	reserved := r.ReadUint16()            // reserved
	_ = r.ReadUint32()                    // totalSfntSize
	totalCompressedSize := r.ReadUint32() // totalCompressedSize
	_ = r.ReadBytes(24)                   // version, metadata and private data block
	if r.EOF() {
		return nil, ErrInvalidFontData
	} else if length != uint32(len(b)) {
		return nil, fmt.Errorf("length in header must match file size")
	} else if numTables == 0 {
		return nil, fmt.Errorf("numTables in header must not be zero")
	} else if reserved != 0 {
		return nil, fmt.Errorf("reserved in header must be zero")
	}

	tags := make([]string, 0, numTables)
	lengths := make([]uint32, 0, numTables)
	var uncompressedSize uint32
	for i := 0; i < int(numTables); i++ {
		flags := r.ReadByte()
		tagIndex := int(flags & 0x3F)
		transformVersion := int((flags & 0xC0) >> 6)

		var tag string
		if tagIndex == 63 {
			tag = uint32ToString(r.ReadUint32())
		} else if tagIndex < len(woff2TableTags) {
			tag = woff2TableTags[tagIndex]
		} else {
			return nil, fmt.Errorf("bad tag index %d", tagIndex)
		}

		origLength, err := readUintBase128(r)
		if err != nil {
			return nil, err
		}
		if tag == "glyf" || tag == "loca" || tag == "hmtx" && transformVersion != 0 {
			return nil, fmt.Errorf("%s: transformed tables are unsupported", tag)
		} else if transformVersion != 0 {
			return nil, fmt.Errorf("%s: invalid transformation", tag)
		}
		for _, prev := range tags {
			if prev == tag {
				return nil, fmt.Errorf("%s: table defined more than once", tag)
			}
		}
		if math.MaxUint32-uncompressedSize < origLength {
			return nil, ErrInvalidFontData
		}
		uncompressedSize += origLength
		tags = append(tags, tag)
		lengths = append(lengths, origLength)
	}

	// decompress font data using Brotli
	compData := r.ReadBytes(totalCompressedSize)
	if r.EOF() {
		return nil, ErrInvalidFontData
	} else if MaxMemory < uncompressedSize {
		return nil, ErrExceedsMemory
	}
	rBrotli := brotli.NewReader(bytes.NewReader(compData))
	dataBuf := bytes.NewBuffer(make([]byte, 0, uncompressedSize))
	if _, err := io.Copy(dataBuf, io.LimitReader(rBrotli, int64(uncompressedSize)+1)); err != nil {
		return nil, err
	}
	data := dataBuf.Bytes()
	if uint32(len(data)) != uncompressedSize {
		return nil, fmt.Errorf("sum of table lengths must match decompressed font data size")
	}

	sfnt := &SFNT{
		Version: flavor,
		IsCFF:   true,
		Tables:  make(map[string][]byte, numTables),
	}
	var offset uint32
	for i, tag := range tags {
		sfnt.Tables[tag] = data[offset : offset+lengths[i] : offset+lengths[i]]
		offset += lengths[i]
	}

	head, ok := sfnt.Tables["head"]
	if !ok || len(head) < 54 {
		return nil, fmt.Errorf("head: must be present")
	} else if flags := binary.BigEndian.Uint16(head[16:]); flags&0x0800 == 0 {
		return nil, fmt.Errorf("head: bit 11 in flags must be set")
	}
	return sfnt, nil
}

func readUintBase128(r *parse.BinaryReader) (uint32, error) {
	// see https://www.w3.org/TR/WOFF2/#DataTypes
	var accum uint32
	for i := 0; i < 5; i++ {
		dataByte := r.ReadByte()
		if r.EOF() {
			return 0, ErrInvalidFontData
		}
		if i == 0 && dataByte == 0x80 {
			return 0, fmt.Errorf("readUintBase128: must not start with leading zeros")
		}
		if (accum & 0xFE000000) != 0 {
			return 0, fmt.Errorf("readUintBase128: overflow")
		}
		accum = (accum << 7) | uint32(dataByte&0x7F)
		if (dataByte & 0x80) == 0 {
			return accum, nil
		}
	}
	return 0, fmt.Errorf("readUintBase128: exceeds 5 bytes")
}

func writeUintBase128(w *parse.BinaryWriter, accum uint32) {
	// see https://www.w3.org/TR/WOFF2/#DataTypes
	if accum == 0 {
		w.WriteBytes([]byte{0})
		return
	}
	written := false
	for i := 4; 0 <= i; i-- {
		mask := uint32(0x7F) << (i * 7)
		if v := accum & mask; written || v != 0 {
			v >>= i * 7
			if i != 0 {
				v |= 0x80
			}
			w.WriteBytes([]byte{byte(v)})
			written = true
		}
	}
}

// WriteWOFF2 writes out the font in the WOFF2 format. Tables are compressed without transformations, which requires the font to have CFF outlines.
func (sfnt *SFNT) WriteWOFF2() ([]byte, error) {
	if !sfnt.IsCFF {
		return nil, fmt.Errorf("only fonts with CFF outlines are supported")
	}

	tags := make([]string, 0, len(sfnt.Tables))
	for tag := range sfnt.Tables {
		if tag == "DSIG" {
			continue // exclude DSIG table
		}
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	totalSfntSize := 12 + 16*uint32(len(tags))
	for _, tag := range tags {
		n := uint32(len(sfnt.Tables[tag]))
		totalSfntSize += n + padding(n)
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteString("wOF2")            // signature
	w.WriteString(sfnt.Version)      // flavor
	w.WriteUint32(0)                 // length (set later)
	w.WriteUint16(uint16(len(tags))) // numTables
	w.WriteUint16(0)                 // reserved
	w.WriteUint32(totalSfntSize)     // totalSfntSize
	w.WriteUint32(0)                 // totalCompressedSize (set later)
	w.WriteUint16(1)                 // majorVersion
	w.WriteUint16(0)                 // minorVersion
	w.WriteUint32(0)                 // metaOffset
	w.WriteUint32(0)                 // metaLength
	w.WriteUint32(0)                 // metaOrigLength
	w.WriteUint32(0)                 // privOffset
	w.WriteUint32(0)                 // privLength

	for _, tag := range tags {
		tagIndex := 63
		for index, woff2Tag := range woff2TableTags {
			if woff2Tag == tag {
				tagIndex = index
				break
			}
		}

		// transformVersion zero is the null transform for all tables but glyf and loca
		w.WriteBytes([]byte{byte(tagIndex)}) // flags
		if tagIndex == 63 {
			w.WriteString(tag) // tag
		}
		writeUintBase128(w, uint32(len(sfnt.Tables[tag])))
	}

	compData := &bytes.Buffer{}
	wBrotli := brotli.NewWriterLevel(compData, brotli.BestCompression)
	for _, tag := range tags {
		table := sfnt.Tables[tag]
		if tag == "head" {
			head := make([]byte, len(table))
			copy(head, table)
			flags := binary.BigEndian.Uint16(head[16:])
			flags |= 0x0800 // set bit 11, font is compressed
			binary.BigEndian.PutUint16(head[16:], flags)
			table = head
		}
		if _, err := wBrotli.Write(table); err != nil {
			return nil, err
		}
	}
	if err := wBrotli.Close(); err != nil {
		return nil, err
	}
	w.WriteBytes(compData.Bytes())

	// pad to 4-byte boundary
	w.WriteBytes(make([]byte, padding(uint32(len(w.Bytes())))))

	b := w.Bytes()
	binary.BigEndian.PutUint32(b[8:], uint32(len(b)))          // length
	binary.BigEndian.PutUint32(b[20:], uint32(compData.Len())) // totalCompressedSize
	return b, nil
}
