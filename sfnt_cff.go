package cffsubr

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tdewolff/parse/v2"
)

// cffTableVersion returns the major version of a bare CFF or CFF2 table, or zero if the header is invalid.
func cffTableVersion(b []byte) int {
	if len(b) < 4 {
		return 0
	}
	major, minor, hdrSize := b[0], b[1], b[2]
	if minor != 0 {
		return 0
	} else if major == 1 && 4 <= hdrSize && b[3] != 0 && b[3] <= 4 {
		return 1
	} else if major == 2 && hdrSize == 5 && 5 <= len(b) {
		return 2
	}
	return 0
}

type cffTable struct {
	name      string
	top       *cffTopDICT
	strings   *cffINDEX
	numGlyphs int
	charset   []uint16 // SID for every glyph, or CID for CID-keyed fonts
}

func parseCFF(b []byte) (*cffTable, error) {
	if cffTableVersion(b) != 1 {
		return nil, fmt.Errorf("CFF: bad version")
	}
	r := parse.NewBinaryReader(b)
	_ = r.ReadBytes(2) // major and minor
	hdrSize := r.ReadByte()
	if hdrSize < 4 {
		return nil, fmt.Errorf("CFF: bad hdrSize")
	}
	_ = r.ReadBytes(uint32(hdrSize) - 3)

	nameINDEX, err := parseINDEX(r)
	if err != nil {
		return nil, fmt.Errorf("CFF: Name INDEX: %w", err)
	} else if nameINDEX.Len() != 1 {
		return nil, fmt.Errorf("CFF: Name INDEX: bad count")
	}

	topINDEX, err := parseINDEX(r)
	if err != nil {
		return nil, fmt.Errorf("CFF: Top INDEX: %w", err)
	} else if topINDEX.Len() != nameINDEX.Len() {
		return nil, fmt.Errorf("CFF: Top INDEX: bad count")
	}

	stringINDEX, err := parseINDEX(r)
	if err != nil {
		return nil, fmt.Errorf("CFF: String INDEX: %w", err)
	}

	topDICT, err := parseTopDICT(topINDEX.Get(0))
	if err != nil {
		return nil, fmt.Errorf("CFF: Top DICT: %w", err)
	} else if topDICT.CharStrings <= 0 || len(b) <= topDICT.CharStrings {
		return nil, fmt.Errorf("CFF: bad CharStrings offset")
	}

	charStringsINDEX, err := parseINDEX(parse.NewBinaryReader(b[topDICT.CharStrings:]))
	if err != nil {
		return nil, fmt.Errorf("CFF: CharStrings INDEX: %w", err)
	} else if charStringsINDEX.Len() == 0 {
		return nil, fmt.Errorf("CFF: CharStrings INDEX: no glyphs")
	}

	charset, err := parseCharset(b, topDICT.Charset, charStringsINDEX.Len(), topDICT.IsCID)
	if err != nil {
		return nil, fmt.Errorf("CFF: charset: %w", err)
	}
	return &cffTable{
		name:      string(nameINDEX.Get(0)),
		top:       topDICT,
		strings:   stringINDEX,
		numGlyphs: charStringsINDEX.Len(),
		charset:   charset,
	}, nil
}

// GlyphNames returns the glyph names of the charset. CID-keyed fonts have no glyph names and return nil.
func (cff *cffTable) GlyphNames() []string {
	if cff.top.IsCID {
		return nil
	}
	names := make([]string, len(cff.charset))
	for glyphID, sid := range cff.charset {
		names[glyphID] = cff.strings.GetSID(int(sid))
	}
	return names
}

func parseCharset(b []byte, offset, numGlyphs int, isCID bool) ([]uint16, error) {
	charset := make([]uint16, numGlyphs) // glyph zero is .notdef
	if offset == 0 && !isCID {
		// ISOAdobe
		if 229 < numGlyphs {
			return nil, fmt.Errorf("too many glyphs for ISOAdobe charset")
		}
		for i := range charset {
			charset[i] = uint16(i)
		}
		return charset, nil
	} else if offset == 1 || offset == 2 {
		return nil, fmt.Errorf("expert charsets are unsupported")
	} else if offset <= 2 || len(b) <= offset {
		return nil, fmt.Errorf("bad offset")
	}

	r := parse.NewBinaryReader(b[offset:])
	format := r.ReadByte()
	switch format {
	case 0:
		for i := 1; i < numGlyphs; i++ {
			charset[i] = r.ReadUint16()
		}
	case 1, 2:
		for i := 1; i < numGlyphs; {
			first := r.ReadUint16()
			var nLeft int
			if format == 1 {
				nLeft = int(r.ReadByte())
			} else {
				nLeft = int(r.ReadUint16())
			}
			if r.EOF() {
				break
			}
			for j := 0; j <= nLeft && i < numGlyphs; j++ {
				charset[i] = first + uint16(j)
				i++
			}
		}
	default:
		return nil, fmt.Errorf("bad format %d", format)
	}
	if r.EOF() {
		return nil, ErrInvalidFontData
	}
	return charset, nil
}

type cffINDEX struct {
	offset []uint32
	data   []byte
}

func (t *cffINDEX) Len() int {
	if len(t.offset) == 0 {
		return 0
	}
	return len(t.offset) - 1
}

func (t *cffINDEX) Get(i uint16) []byte {
	if int(i) < t.Len() {
		return t.data[t.offset[i]:t.offset[i+1]]
	}
	return nil
}

func (t *cffINDEX) GetSID(sid int) string {
	// only for String INDEX
	if sid < len(cffStandardStrings) {
		return cffStandardStrings[sid]
	}
	sid -= len(cffStandardStrings)
	if math.MaxUint16 < sid {
		return ""
	}
	if b := t.Get(uint16(sid)); b != nil {
		return string(b)
	}
	return ""
}

func parseINDEX(r *parse.BinaryReader) (*cffINDEX, error) {
	t := &cffINDEX{}
	count := uint32(r.ReadUint16())
	if r.EOF() {
		return nil, fmt.Errorf("bad data")
	} else if count == 0 {
		// empty
		return t, nil
	}

	offSize := r.ReadByte()
	if offSize == 0 || 4 < offSize {
		return nil, fmt.Errorf("bad offSize")
	}
	if r.Len() < uint32(offSize)*(count+1) {
		return nil, fmt.Errorf("bad data")
	}

	t.offset = make([]uint32, count+1)
	for i := uint32(0); i < count+1; i++ {
		var offset uint32
		for j := 0; j < int(offSize); j++ {
			offset = offset<<8 | uint32(r.ReadByte())
		}
		if offset == 0 || 0 < i && offset-1 < t.offset[i-1] {
			return nil, fmt.Errorf("bad offset")
		}
		t.offset[i] = offset - 1
	}
	if t.offset[0] != 0 || r.Len() < t.offset[count] {
		return nil, fmt.Errorf("bad data")
	}
	t.data = r.ReadBytes(t.offset[count])
	return t, nil
}

type cffTopDICT struct {
	IsCID       bool
	Charset     int
	CharStrings int
}

func parseTopDICT(b []byte) (*cffTopDICT, error) {
	dict := &cffTopDICT{}
	err := parseDICT(b, func(b0 int, is []int) {
		switch b0 {
		case 15:
			dict.Charset = is[0]
		case 17:
			dict.CharStrings = is[0]
		case 256 + 30:
			dict.IsCID = true
		}
	})
	if err != nil {
		return nil, err
	}
	return dict, nil
}

// parseDICT calls the callback for every operator with its integer operands.
func parseDICT(b []byte, callback func(b0 int, is []int)) error {
	opSize := map[int]int{
		15:       1,
		17:       1,
		256 + 30: 3,
	}

	r := parse.NewBinaryReader(b)
	ints := []int{}
	for 0 < r.Len() {
		b0 := int(r.ReadByte())
		if b0 < 22 {
			// operator
			if b0 == 12 {
				b0 = 256 + int(r.ReadByte())
			}
			if size, ok := opSize[b0]; ok {
				if len(ints) < size {
					return fmt.Errorf("too few operands for operator")
				}
				callback(b0, ints[len(ints)-size:])
			}
			ints = ints[:0]
		} else if 22 <= b0 && b0 < 28 || b0 == 31 || b0 == 255 {
			// reserved
		} else {
			if 48 <= len(ints) {
				return fmt.Errorf("too many operands for operator")
			}
			i, f := parseDICTNumber(b0, r)
			if !math.IsNaN(f) {
				i = int(f + 0.5)
			}
			ints = append(ints, i)
		}
		if r.EOF() {
			return ErrInvalidFontData
		}
	}
	return nil
}

func parseDICTNumber(b0 int, r *parse.BinaryReader) (int, float64) {
	if b0 == 28 {
		return int(int16(r.ReadUint16())), math.NaN()
	} else if b0 == 29 {
		return int(int32(r.ReadUint32())), math.NaN()
	} else if b0 == 30 {
		num := []byte{}
		for !r.EOF() {
			b := r.ReadByte()
			for i := 0; i < 2; i++ {
				switch b >> 4 {
				case 0x0A:
					num = append(num, '.')
				case 0x0B:
					num = append(num, 'E')
				case 0x0C:
					num = append(num, 'E', '-')
				case 0x0D:
					// reserved
				case 0x0E:
					num = append(num, '-')
				case 0x0F:
					f, err := strconv.ParseFloat(string(num), 32)
					if err != nil {
						return 0, 0.0
					}
					return 0, f
				default:
					num = append(num, '0'+byte(b>>4))
				}
				b = b << 4
			}
		}
		return 0, 0.0
	} else if b0 < 247 {
		return b0 - 139, math.NaN()
	} else if b0 < 251 {
		b1 := int(r.ReadByte())
		return (b0-247)*256 + b1 + 108, math.NaN()
	} else if b0 < 255 {
		b1 := int(r.ReadByte())
		return -(b0-251)*256 - b1 - 108, math.NaN()
	}
	// reserved
	return 0, math.NaN()
}
