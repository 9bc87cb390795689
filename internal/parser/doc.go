package parser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Word 97-2003 binary layout (MS-DOC).
const (
	wordIdent        = 0xA5EC
	fibFlagsOffset   = 0x000A
	fibCcpTextOffset = 0x004C
	fibFcClxOffset   = 0x01A2
	fibLcbClxOffset  = 0x01A6
	fibMinSize       = 0x01AA

	flagWhichTable = 0x0200
	flagEncrypted  = 0x0100

	clxPrc  = 0x01
	clxPcdt = 0x02

	pcdSize        = 8
	fcCompressed   = 0x40000000
	fcMask         = 0x3FFFFFFF
	maxPieceLength = 1 << 24
)

const (
	chFieldBegin     = 0x13
	chFieldSeparator = 0x14
	chFieldEnd       = 0x15
)

var errShortStream = errors.New("stream too short")

func extractDOC(data []byte) ([]string, error) {
	cfb, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, corrupt("doc", err)
	}

	streams := make(map[string][]byte)
	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		switch entry.Name {
		case "WordDocument", "0Table", "1Table":
			buf := make([]byte, entry.Size)
			if _, err := io.ReadFull(entry, buf); err != nil {
				return nil, corrupt("doc", fmt.Errorf("read %s: %v", entry.Name, err))
			}
			streams[entry.Name] = buf
		}
	}

	word, ok := streams["WordDocument"]
	if !ok {
		return nil, corrupt("doc", "missing WordDocument stream")
	}
	text, err := wordText(word, streams)
	if err != nil {
		return nil, corrupt("doc", err)
	}
	return splitLines(text), nil
}

// wordText reassembles the main document story from the piece table found in
// the CLX of the table stream selected by the FIB.
func wordText(word []byte, streams map[string][]byte) (string, error) {
	if len(word) < fibMinSize {
		return "", fmt.Errorf("word document: %w", errShortStream)
	}
	if ident := binary.LittleEndian.Uint16(word); ident != wordIdent {
		return "", fmt.Errorf("unsupported word format 0x%04X", ident)
	}
	flags := binary.LittleEndian.Uint16(word[fibFlagsOffset:])
	if flags&flagEncrypted != 0 {
		return "", errors.New("document is encrypted")
	}
	tableName := "0Table"
	if flags&flagWhichTable != 0 {
		tableName = "1Table"
	}
	table, ok := streams[tableName]
	if !ok {
		return "", fmt.Errorf("missing %s stream", tableName)
	}

	ccpText := binary.LittleEndian.Uint32(word[fibCcpTextOffset:])
	fcClx := binary.LittleEndian.Uint32(word[fibFcClxOffset:])
	lcbClx := binary.LittleEndian.Uint32(word[fibLcbClxOffset:])
	if uint64(fcClx)+uint64(lcbClx) > uint64(len(table)) {
		return "", fmt.Errorf("clx: %w", errShortStream)
	}

	plc, err := pieceTable(table[fcClx : fcClx+lcbClx])
	if err != nil {
		return "", err
	}

	var raw strings.Builder
	n := (len(plc) - 4) / (4 + pcdSize)
	for i := 0; i < n; i++ {
		cpStart := binary.LittleEndian.Uint32(plc[4*i:])
		cpEnd := binary.LittleEndian.Uint32(plc[4*(i+1):])
		if cpStart >= ccpText {
			break
		}
		if cpEnd > ccpText {
			cpEnd = ccpText
		}
		if cpEnd <= cpStart || cpEnd-cpStart > maxPieceLength {
			continue
		}
		pcd := plc[4*(n+1)+pcdSize*i:]
		fc := binary.LittleEndian.Uint32(pcd[2:])
		piece, err := decodePiece(word, fc, int(cpEnd-cpStart))
		if err != nil {
			return "", fmt.Errorf("piece %d: %w", i, err)
		}
		raw.WriteString(piece)
	}
	return cleanWordText(raw.String()), nil
}

// pieceTable skips the Prc entries of a CLX and returns the PlcPcd of its Pcdt.
func pieceTable(clx []byte) ([]byte, error) {
	for i := 0; i < len(clx); {
		switch clx[i] {
		case clxPrc:
			if i+3 > len(clx) {
				return nil, fmt.Errorf("clx prc: %w", errShortStream)
			}
			i += 3 + int(binary.LittleEndian.Uint16(clx[i+1:]))
		case clxPcdt:
			if i+5 > len(clx) {
				return nil, fmt.Errorf("clx pcdt: %w", errShortStream)
			}
			lcb := int(binary.LittleEndian.Uint32(clx[i+1:]))
			if lcb < 4 || (lcb-4)%(4+pcdSize) != 0 || i+5+lcb > len(clx) {
				return nil, fmt.Errorf("invalid piece table size %d", lcb)
			}
			return clx[i+5 : i+5+lcb], nil
		default:
			return nil, fmt.Errorf("unexpected clx entry 0x%02X", clx[i])
		}
	}
	return nil, errors.New("clx has no piece table")
}

// decodePiece reads count characters at fc: CP1252 bytes when the compressed
// bit is set, UTF-16LE otherwise.
func decodePiece(word []byte, fc uint32, count int) (string, error) {
	if fc&fcCompressed != 0 {
		off := int((fc & fcMask) / 2)
		if off+count > len(word) {
			return "", errShortStream
		}
		return charmap.Windows1252.NewDecoder().String(string(word[off : off+count]))
	}
	off := int(fc & fcMask)
	if off+2*count > len(word) {
		return "", errShortStream
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	b, err := dec.Bytes(word[off : off+2*count])
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// cleanWordText maps Word control characters to plain text. Field codes are
// dropped and only their displayed result is kept.
func cleanWordText(s string) string {
	var (
		b      strings.Builder
		fields []bool // per open field: still inside the code part
	)
	for _, r := range s {
		switch r {
		case chFieldBegin:
			fields = append(fields, true)
			continue
		case chFieldSeparator:
			if len(fields) > 0 {
				fields[len(fields)-1] = false
			}
			continue
		case chFieldEnd:
			if len(fields) > 0 {
				fields = fields[:len(fields)-1]
			}
			continue
		}
		if inFieldCode(fields) {
			continue
		}
		switch {
		case r == '\r' || r == 0x0B || r == 0x0E || r == 0x07:
			b.WriteByte('\n')
		case r == 0x0C:
			b.WriteString("\n\f\n")
		case r == 0x1E:
			b.WriteByte('-')
		case r == '\t':
			b.WriteByte('\t')
		case r < 0x20:
			// pictures, footnote marks and other anchors
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func inFieldCode(fields []bool) bool {
	for _, code := range fields {
		if code {
			return true
		}
	}
	return false
}
