// Package export writes leads as CSV or XLSX.
package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-scout/internal/model"
)

// Columns are the export headers in order.
var Columns = []string{
	"Business Name",
	"Owner",
	"Website Status",
	"Lead Score",
	"Contact Email",
	"Phone",
	"Address",
	"City",
	"State",
	"Personal Hook",
}

// Row maps a lead to its export values, ordered as Columns.
func Row(l *model.BusinessLead) []string {
	return []string{
		l.BusinessName,            // Business Name
		l.OwnerName,               // Owner
		string(l.WebsiteStatus),   // Website Status
		strconv.Itoa(l.LeadScore), // Lead Score
		l.ContactEmail(),          // Contact Email
		l.PhonePrimary,            // Phone
		l.Address,                 // Address
		l.City,                    // City
		l.State,                   // State
		l.PersonalHook,            // Personal Hook
	}
}

// CSV renders leads with a header row. Every field is double-quoted with
// embedded quotes doubled, rows are joined by "\n" and there is no trailing
// newline.
func CSV(leads []model.BusinessLead) string {
	var b strings.Builder
	writeRecord(&b, Columns)
	for i := range leads {
		b.WriteByte('\n')
		writeRecord(&b, Row(&leads[i]))
	}
	return b.String()
}

// WriteCSV writes CSV(leads) to w.
func WriteCSV(w io.Writer, leads []model.BusinessLead) error {
	if _, err := io.WriteString(w, CSV(leads)); err != nil {
		return eris.Wrap(err, "export: write csv")
	}
	return nil
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

// sheetName is the worksheet holding exported leads.
const sheetName = "Leads"

// XLSX builds a workbook with one "Leads" sheet. Lead Score is a numeric
// cell; everything else is text.
func XLSX(leads []model.BusinessLead) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range Columns {
		header.AddCell().SetString(c)
	}

	for i := range leads {
		row := sheet.AddRow()
		for j, v := range Row(&leads[i]) {
			cell := row.AddCell()
			if Columns[j] == "Lead Score" {
				cell.SetInt(leads[i].LeadScore)
				continue
			}
			cell.SetString(v)
		}
	}
	return f, nil
}

// WriteXLSX writes the XLSX workbook for leads to w.
func WriteXLSX(w io.Writer, leads []model.BusinessLead) error {
	f, err := XLSX(leads)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
