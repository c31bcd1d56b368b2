package cffsubr

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type nameRecord struct {
	Platform PlatformID
	Encoding EncodingID
	Language uint16
	Name     NameID
	Value    []byte
}

func (record nameRecord) String() string {
	var decoder *encoding.Decoder
	if record.Platform == PlatformUnicode || record.Platform == PlatformWindows {
		decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	} else if record.Platform == PlatformMacintosh && record.Encoding == EncodingMacintoshRoman {
		decoder = charmap.Macintosh.NewDecoder()
	} else {
		return string(record.Value)
	}
	s, _, err := transform.String(decoder, string(record.Value))
	if err == nil {
		return s
	}
	return string(record.Value)
}

func parseName(b []byte) ([]nameRecord, error) {
	if len(b) < 6 {
		return nil, fmt.Errorf("name: bad table")
	}

	r := parse.NewBinaryReader(b)
	version := r.ReadUint16()
	if version != 0 && version != 1 {
		return nil, fmt.Errorf("name: bad version")
	}
	count := r.ReadUint16()
	storageOffset := uint32(r.ReadUint16())
	if uint32(len(b)) < 6+12*uint32(count) || uint32(len(b)) < storageOffset {
		return nil, fmt.Errorf("name: bad table")
	}

	records := make([]nameRecord, count)
	for i := 0; i < int(count); i++ {
		records[i].Platform = PlatformID(r.ReadUint16())
		records[i].Encoding = EncodingID(r.ReadUint16())
		records[i].Language = r.ReadUint16()
		records[i].Name = NameID(r.ReadUint16())

		length := uint32(r.ReadUint16())
		offset := uint32(r.ReadUint16())
		if uint32(len(b))-storageOffset < offset || uint32(len(b))-storageOffset-offset < length {
			return nil, fmt.Errorf("name: bad table")
		}
		records[i].Value = b[storageOffset+offset : storageOffset+offset+length]
	}
	return records, nil
}

// FontName returns the full font name, or the family name if there is no full name. Windows records are preferred over other platforms.
func (sfnt *SFNT) FontName() (string, error) {
	b, ok := sfnt.Tables["name"]
	if !ok {
		return "", fmt.Errorf("name: missing table")
	}
	records, err := parseName(b)
	if err != nil {
		return "", err
	}

	for _, name := range []NameID{NameFull, NameFontFamily} {
		var found *nameRecord
		for i, record := range records {
			if record.Name != name {
				continue
			} else if found == nil || record.Platform == PlatformWindows && found.Platform != PlatformWindows {
				found = &records[i]
			}
		}
		if found != nil {
			return found.String(), nil
		}
	}
	return "", nil
}
