package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"simventas/internal/sheet"
)

// ReadInput loads a single local file the way a mail attachment would be read.
// kind is one of eml, xlsx, html, pdf or text.
func ReadInput(kind, path string) (Extraction, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Extraction{}, err
	}
	name := filepath.Base(path)

	switch kind {
	case "eml":
		return ExtractFromEmailRaw(blob)
	case "xlsx":
		rows, err := sheet.ReadRowsBytes(blob)
		if err != nil {
			return Extraction{}, err
		}
		return Extraction{
			Attachments: []string{name},
			Tables:      []Table{{Source: SourceXLSX, Attachment: name, Rows: rows}},
		}, nil
	case "html":
		out := Extraction{Attachments: []string{name}}
		if rows := parseHTMLTables(string(blob)); len(rows) > 0 {
			out.Tables = []Table{{Source: SourceHTMLTable, Attachment: name, Rows: rows}}
		}
		return out, nil
	case "pdf":
		text, err := pdfText(blob)
		if err != nil {
			return Extraction{}, err
		}
		return Extraction{Attachments: []string{name}, ScanTexts: nonEmpty(text)}, nil
	case "text":
		return Extraction{Text: string(blob), ScanTexts: nonEmpty(cleanText(string(blob)))}, nil
	default:
		return Extraction{}, fmt.Errorf("unsupported input type: %s", kind)
	}
}

func nonEmpty(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}
