package report

import (
	"bytes"
	"strings"
)

// ExportCSV renders the view as comma-separated text. The name column
// is always quoted with inner quotes doubled so payee text containing
// commas or quotes survives a round trip through spreadsheet software.
// An empty view produces no output.
func ExportCSV(v View) []byte {
	if v.Empty() {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(v.columns(), ","))
	buf.WriteByte('\n')

	for _, t := range v.reversed() {
		buf.WriteString(t.DisplayDate())
		buf.WriteByte(',')
		if v.WithCategory {
			buf.WriteString(categoryCell(t))
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(t.Name, `"`, `""`))
		buf.WriteString(`",`)
		buf.WriteString(t.Amount.StringFixed(2))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
