package testutil

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Compound file (MS-CFB) version 3 layout.
const (
	cfbSectorSize = 512
	cfbEntrySize  = 128
	cfbFreeSect   = 0xFFFFFFFF
	cfbEndChain   = 0xFFFFFFFE
	cfbFatSect    = 0xFFFFFFFD
	cfbNoStream   = 0xFFFFFFFF

	// Streams below this size would live in the mini stream.
	cfbStreamSize = 4096
)

// Word 97-2003 FIB fields used by the reader.
const (
	docTextOffset = 0x800
	docWhichTable = 0x0200
	docCompressed = 0x40000000
)

var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// DOC builds a Word 97-2003 file holding one paragraph per line. The text is
// stored as a single CP1252 piece and the piece table lives in 1Table.
func DOC(lines ...string) []byte {
	text := ""
	if len(lines) > 0 {
		text = strings.Join(lines, "\r") + "\r"
	}
	encoded, err := charmap.Windows1252.NewEncoder().String(text)
	if err != nil {
		panic(err)
	}
	if docTextOffset+len(encoded) > cfbStreamSize {
		panic("testutil: DOC text too long")
	}

	word := make([]byte, cfbStreamSize)
	binary.LittleEndian.PutUint16(word, 0xA5EC)
	binary.LittleEndian.PutUint16(word[0x000A:], docWhichTable)
	binary.LittleEndian.PutUint32(word[0x004C:], uint32(len(encoded)))
	copy(word[docTextOffset:], encoded)

	plc := make([]byte, 4*2+8)
	binary.LittleEndian.PutUint32(plc[4:], uint32(len(encoded)))
	binary.LittleEndian.PutUint32(plc[8+2:], uint32(docTextOffset*2)|docCompressed)
	clx := []byte{0x02}
	clx = binary.LittleEndian.AppendUint32(clx, uint32(len(plc)))
	clx = append(clx, plc...)

	table := make([]byte, cfbStreamSize)
	copy(table, clx)
	binary.LittleEndian.PutUint32(word[0x01A2:], 0)
	binary.LittleEndian.PutUint32(word[0x01A6:], uint32(len(clx)))

	return compoundFile(word, table)
}

// compoundFile lays out sector 0 as the FAT, sector 1 as the directory, then
// the WordDocument and 1Table streams back to back.
func compoundFile(word, table []byte) []byte {
	const (
		fatSector = 0
		dirSector = 1
		wordStart = 2
	)
	perStream := uint32(cfbStreamSize / cfbSectorSize)
	tableStart := wordStart + perStream
	total := tableStart + perStream

	header := make([]byte, cfbSectorSize)
	copy(header, cfbSignature)
	binary.LittleEndian.PutUint16(header[0x18:], 0x003E)
	binary.LittleEndian.PutUint16(header[0x1A:], 0x0003)
	binary.LittleEndian.PutUint16(header[0x1C:], 0xFFFE)
	binary.LittleEndian.PutUint16(header[0x1E:], 0x0009)
	binary.LittleEndian.PutUint16(header[0x20:], 0x0006)
	binary.LittleEndian.PutUint32(header[0x2C:], 1)
	binary.LittleEndian.PutUint32(header[0x30:], dirSector)
	binary.LittleEndian.PutUint32(header[0x38:], cfbStreamSize)
	binary.LittleEndian.PutUint32(header[0x3C:], cfbEndChain)
	binary.LittleEndian.PutUint32(header[0x44:], cfbEndChain)
	for i := 0; i < 109; i++ {
		binary.LittleEndian.PutUint32(header[0x4C+4*i:], cfbFreeSect)
	}
	binary.LittleEndian.PutUint32(header[0x4C:], fatSector)

	fat := make([]byte, cfbSectorSize)
	for i := uint32(0); i < cfbSectorSize/4; i++ {
		next := uint32(cfbFreeSect)
		switch {
		case i == fatSector:
			next = cfbFatSect
		case i == dirSector, i == tableStart-1, i == total-1:
			next = cfbEndChain
		case i < total:
			next = i + 1
		}
		binary.LittleEndian.PutUint32(fat[4*i:], next)
	}

	// Root -> WordDocument, with 1Table as its left sibling since shorter
	// names sort first.
	dir := make([]byte, cfbSectorSize)
	dirEntry(dir[0:], "Root Entry", 5, cfbNoStream, 1, cfbEndChain, 0)
	dirEntry(dir[cfbEntrySize:], "WordDocument", 2, 2, cfbNoStream, wordStart, len(word))
	dirEntry(dir[2*cfbEntrySize:], "1Table", 2, cfbNoStream, cfbNoStream, tableStart, len(table))
	for i := 3; i < cfbSectorSize/cfbEntrySize; i++ {
		e := dir[i*cfbEntrySize:]
		binary.LittleEndian.PutUint32(e[0x44:], cfbNoStream)
		binary.LittleEndian.PutUint32(e[0x48:], cfbNoStream)
		binary.LittleEndian.PutUint32(e[0x4C:], cfbNoStream)
	}

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(fat)
	buf.Write(dir)
	buf.Write(word)
	buf.Write(table)
	return buf.Bytes()
}

func dirEntry(e []byte, name string, objectType byte, left, child, start uint32, size int) {
	units := utf16.Encode([]rune(name))
	for i, u := range units {
		binary.LittleEndian.PutUint16(e[2*i:], u)
	}
	binary.LittleEndian.PutUint16(e[0x40:], uint16(2*(len(units)+1)))
	e[0x42] = objectType
	e[0x43] = 1 // black
	binary.LittleEndian.PutUint32(e[0x44:], left)
	binary.LittleEndian.PutUint32(e[0x48:], cfbNoStream)
	binary.LittleEndian.PutUint32(e[0x4C:], child)
	binary.LittleEndian.PutUint32(e[0x74:], start)
	binary.LittleEndian.PutUint64(e[0x78:], uint64(size))
}
