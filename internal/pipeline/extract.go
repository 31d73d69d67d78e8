package pipeline

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/ledongthuc/pdf"

	"simventas/internal/sheet"
)

type RowSource string

const (
	SourceHTMLTable RowSource = "email_html_table"
	SourceXLSX      RowSource = "xlsx"
)

// Table is a block of header->value rows found in a message.
type Table struct {
	Source     RowSource
	Attachment string
	Rows       []map[string]any
}

// Extraction is everything usable pulled out of one e-mail.
type Extraction struct {
	Subject     string
	Text        string
	Attachments []string
	Tables      []Table
	// ScanTexts are free texts for the scan matcher: plain body and PDF text.
	ScanTexts []string
}

func (e Extraction) RowCount() int {
	n := 0
	for _, t := range e.Tables {
		n += len(t.Rows)
	}
	return n
}

var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^--+$`),
	regexp.MustCompile(`(?i)^(gracias|cordialmente|saludos|atentamente)`),
	regexp.MustCompile(`(?i)^(tel|cel|e-?mail)[:.\s]`),
	regexp.MustCompile(`(?i)^http`),
	regexp.MustCompile(`^>`),
}

var reSpaces = regexp.MustCompile(`\s+`)

func ExtractFromEmailRaw(raw []byte) (Extraction, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Extraction{}, err
	}

	out := Extraction{Subject: env.GetHeader("Subject"), Text: env.Text}
	if text := cleanText(env.Text); text != "" {
		out.ScanTexts = append(out.ScanTexts, text)
	}
	if env.HTML != "" {
		if rows := parseHTMLTables(env.HTML); len(rows) > 0 {
			out.Tables = append(out.Tables, Table{Source: SourceHTMLTable, Rows: rows})
		}
	}

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		out.Attachments = append(out.Attachments, filename)
		lower := strings.ToLower(filename)

		switch {
		case strings.HasSuffix(lower, ".xlsx"):
			rows, err := sheet.ReadRowsBytes(att.Content)
			if err == nil && len(rows) > 0 {
				out.Tables = append(out.Tables, Table{Source: SourceXLSX, Attachment: filename, Rows: rows})
			}
		case strings.HasSuffix(lower, ".pdf"):
			text, err := pdfText(att.Content)
			if err == nil && text != "" {
				out.ScanTexts = append(out.ScanTexts, text)
			}
		case strings.HasSuffix(lower, ".txt"):
			if text := cleanText(string(att.Content)); text != "" {
				out.ScanTexts = append(out.ScanTexts, text)
			}
		}
	}
	return out, nil
}

// parseHTMLTables reads every table with a header row and at least one data row.
func parseHTMLTables(html string) []map[string]any {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []map[string]any{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, normalizeSpaces(cell.Text()))
		})

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			record := map[string]any{}
			row.Find("th,td").Each(func(i int, cell *goquery.Selection) {
				if i >= len(headers) || headers[i] == "" {
					return
				}
				if _, dup := record[headers[i]]; dup {
					return
				}
				record[headers[i]] = normalizeSpaces(cell.Text())
			})
			if !emptyRecord(record) {
				out = append(out, record)
			}
		})
	})
	return out
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		lines = append(lines, splitLines(text)...)
	}
	return strings.Join(lines, "\n"), nil
}

// cleanText drops signatures, quoted replies and links, keeping one line per row.
func cleanText(text string) string {
	var keep []string
	for _, line := range splitLines(text) {
		line = normalizeSpaces(line)
		if line == "" || isLikelyNoise(line) {
			continue
		}
		keep = append(keep, line)
	}
	return strings.Join(keep, "\n")
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func isLikelyNoise(line string) bool {
	for _, re := range ignorePatterns {
		if re.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

func emptyRecord(record map[string]any) bool {
	for _, v := range record {
		if s, _ := v.(string); s != "" {
			return false
		}
	}
	return true
}
