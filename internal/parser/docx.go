package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

func extractDOCX(data []byte) ([]string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, corrupt("docx", err)
	}
	defer r.Close()

	lines, err := documentXMLLines(r.Editable().GetContent())
	if err != nil {
		return nil, corrupt("docx", err)
	}
	return lines, nil
}

// documentXMLLines walks WordprocessingML and emits one line per paragraph.
// Only w:t runs carry text; w:tab, w:br and w:cr map to whitespace. Tab stop
// definitions inside w:tabs are ignored.
func documentXMLLines(content string) ([]string, error) {
	var (
		lines  []string
		line   strings.Builder
		inText bool
		inTabs bool
	)
	dec := xml.NewDecoder(strings.NewReader(content))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabs = true
			case "tab":
				if !inTabs {
					line.WriteByte('\t')
				}
			case "br", "cr":
				lines = append(lines, line.String())
				line.Reset()
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabs = false
			case "p":
				lines = append(lines, line.String())
				line.Reset()
			}
		case xml.CharData:
			if inText {
				line.Write(el)
			}
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines, nil
}
