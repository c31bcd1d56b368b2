package cffsubr

import (
	"encoding/binary"
	"fmt"
)

// MaxMemory is the maximum memory that can be allocated when decoding a font.
var MaxMemory uint32 = 30 * 1024 * 1024

// ErrExceedsMemory is returned if decoding a font would allocate more than MaxMemory.
var ErrExceedsMemory = fmt.Errorf("memory limit exceded")

// ErrInvalidFontData is returned if the font is malformed.
var ErrInvalidFontData = fmt.Errorf("invalid font data")

func calcChecksum(b []byte) uint32 {
	if len(b)%4 != 0 {
		panic("data not multiple of four bytes")
	}
	var sum uint32
	for i := 0; i < len(b); i += 4 {
		sum += binary.BigEndian.Uint32(b[i : i+4])
	}
	return sum
}

func uint32ToString(v uint32) string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return string(b)
}

// searchParams returns the searchRange, entrySelector, and rangeShift values of an SFNT offset table.
func searchParams(numTables uint16) (uint16, uint16, uint16) {
	var searchRange uint16 = 1
	var entrySelector uint16
	for {
		if searchRange*2 > numTables {
			break
		}
		searchRange *= 2
		entrySelector++
	}
	searchRange *= 16
	return searchRange, entrySelector, numTables*16 - searchRange
}

func padding(n uint32) uint32 {
	return (4 - n&3) & 3
}
