package cffsubr

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestPostNames(t *testing.T) {
	header := make([]byte, 32)
	binary.BigEndian.PutUint32(header, 0x00030000)
	binary.BigEndian.PutUint32(header[4:], 0xFFFF0000) // italicAngle
	binary.BigEndian.PutUint32(header[12:], 1)         // isFixedPitch

	names := []string{".notdef", "A", "foo", "baz", "foo", "space"}
	post, err := writePostNames(header, names)
	test.Error(t, err)
	test.T(t, binary.BigEndian.Uint32(post), uint32(0x00020000))
	test.T(t, string(post[4:32]), string(header[4:32]))
	test.T(t, binary.BigEndian.Uint16(post[32:]), uint16(len(names)))

	// glyphNameIndex
	indices := []uint16{}
	for i := range names {
		indices = append(indices, binary.BigEndian.Uint16(post[34+2*i:]))
	}
	test.T(t, indices, []uint16{0, 36, 258, 259, 258, 3})
	test.T(t, string(post[34+2*len(names):]), "\x03foo\x03baz")

	parsed, err := parsePostNames(post, uint16(len(names)))
	test.Error(t, err)
	test.T(t, parsed, names)

	// standard Macintosh names are not stored
	post, err = writePostNames(header, []string{".notdef", "bar"})
	test.Error(t, err)
	test.T(t, binary.BigEndian.Uint16(post[36:]), uint16(95))
	test.T(t, len(post), 38)
}

func TestPostNamesErrors(t *testing.T) {
	header := make([]byte, 32)
	_, err := writePostNames(header[:20], nil)
	test.T(t, err.Error(), "post: bad table")
	_, err = writePostNames(header, []string{strings.Repeat("a", 256)})
	test.That(t, err != nil, "glyph names are limited to 255 bytes")

	post, err := writePostNames(header, []string{".notdef", "a"})
	test.Error(t, err)
	_, err = parsePostNames(post, 3)
	test.T(t, err.Error(), "post: numGlyphs does not match maxp table numGlyphs")

	_, err = parsePostNames(header, 0)
	test.T(t, err.Error(), "post: bad table")

	// glyphNameIndex beyond stringData
	post, err = writePostNames(header, []string{".notdef", "a"})
	test.Error(t, err)
	binary.BigEndian.PutUint16(post[36:], 260)
	_, err = parsePostNames(post, 2)
	test.T(t, err.Error(), "post: bad glyphNameIndex")

	// truncated stringData
	post, err = writePostNames(header, []string{".notdef", "glyph1"})
	test.Error(t, err)
	_, err = parsePostNames(post[:len(post)-1], 2)
	test.T(t, err.Error(), "post: bad stringData")
}

func TestPostNoNames(t *testing.T) {
	header := make([]byte, 32)
	binary.BigEndian.PutUint32(header[4:], 0xFFFF0000) // italicAngle

	post, err := writePostNames(header, []string{".notdef", "foo"})
	test.Error(t, err)
	post, err = writePostNoNames(post)
	test.Error(t, err)
	test.T(t, len(post), 32)
	test.T(t, binary.BigEndian.Uint32(post), uint32(0x00030000))
	test.T(t, binary.BigEndian.Uint32(post[4:]), uint32(0xFFFF0000))

	_, err = writePostNoNames(post[:31])
	test.T(t, err.Error(), "post: bad table")
}
