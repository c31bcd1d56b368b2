package cffsubr

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// ParseEOT parses the EOT font format and returns its contained SFNT font format (TTF or OTF). Compressed (MTX) fonts are not supported. See https://www.w3.org/Submission/EOT/
func ParseEOT(b []byte) ([]byte, error) {
	r := parse.NewBinaryReaderLE(b)
	eotSize := r.ReadUint32()
	fontDataSize := r.ReadUint32()
	version := r.ReadUint32()
	if version != 0x00010000 && version != 0x00020001 && version != 0x00020002 {
		return nil, fmt.Errorf("unsupported version")
	} else if eotSize != uint32(len(b)) {
		return nil, ErrInvalidFontData
	}
	flags := r.ReadUint32()
	_ = r.ReadBytes(16) // FontPANOSE, Charset, Italic, Weight
	_ = r.ReadUint16()  // fsType
	if magicNumber := r.ReadUint16(); magicNumber != 0x504C {
		return nil, fmt.Errorf("invalid magic number")
	}
	_ = r.ReadBytes(24) // Unicode and CodePage ranges
	_ = r.ReadUint32()  // CheckSumAdjustment
	_ = r.ReadBytes(16) // Reserved
	_ = r.ReadUint16()  // Padding1

	// FamilyName, StyleName, VersionName, and FullName, each followed by padding except the last
	for i := 0; i < 4; i++ {
		if i != 0 {
			_ = r.ReadUint16() // Padding
		}
		size := r.ReadUint16()
		_ = r.ReadBytes(uint32(size))
	}
	if version == 0x00020001 || version == 0x00020002 {
		_ = r.ReadUint16()                      // Padding5
		rootStringSize := r.ReadUint16()        // RootStringSize
		_ = r.ReadBytes(uint32(rootStringSize)) // RootString
	}
	if version == 0x00020002 {
		_ = r.ReadUint32()                     // RootStringCheckSum
		_ = r.ReadUint32()                     // EUDCCodePage
		_ = r.ReadUint16()                     // Padding6
		signatureSize := r.ReadUint16()        // SignatureSize
		_ = r.ReadBytes(uint32(signatureSize)) // Signature
		_ = r.ReadUint32()                     // EUDCFlags
		eudcFontSize := r.ReadUint32()         // EUDCFontSize
		_ = r.ReadBytes(eudcFontSize)          // EUDCFontData
	}

	fontData := r.ReadBytes(fontDataSize)
	if r.EOF() {
		return nil, ErrInvalidFontData
	}

	if flags&0x00000004 != 0 {
		return nil, fmt.Errorf("EOT compression not supported")
	} else if flags&0x10000000 != 0 {
		// XOR-obfuscated, don't modify the input buffer
		data := make([]byte, len(fontData))
		for i := range fontData {
			data[i] = fontData[i] ^ 0x50
		}
		fontData = data
	}
	return fontData, nil
}
