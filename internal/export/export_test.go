package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-scout/internal/model"
)

const header = `"Business Name","Owner","Website Status","Lead Score","Contact Email","Phone","Address","City","State","Personal Hook"`

func sampleLeads() []model.BusinessLead {
	return []model.BusinessLead{
		{
			BusinessName:  "Corner Cafe",
			OwnerName:     "Maria Lopez",
			WebsiteStatus: model.WebsiteNone,
			LeadScore:     92,
			EmailBusiness: "x@y.com",
			PhonePrimary:  "(512) 555-0100",
			Address:       "12 Oak St",
			City:          "Austin",
			State:         "TX",
			PersonalHook:  `Loved the "latte art" post.`,
		},
		{
			BusinessName:  "Quiet Books, LLC",
			WebsiteStatus: model.WebsiteOutdated,
			LeadScore:     45,
			OwnerContact:  "owner@quietbooks.com",
		},
	}
}

func TestCSV(t *testing.T) {
	got := CSV(sampleLeads())
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, header, lines[0])
	assert.Equal(t, `"Corner Cafe","Maria Lopez","NO_WEBSITE","92","x@y.com","(512) 555-0100","12 Oak St","Austin","TX","Loved the ""latte art"" post."`, lines[1])
	assert.Equal(t, `"Quiet Books, LLC","","OUTDATED_SITE","45","owner@quietbooks.com","","","","",""`, lines[2])
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestCSV_HeaderOnly(t *testing.T) {
	assert.Equal(t, header, CSV(nil))
}

func TestCSV_BusinessEmailPreferred(t *testing.T) {
	leads := []model.BusinessLead{{BusinessName: "A", EmailBusiness: "x@y.com", OwnerContact: "o@y.com"}}
	row := strings.Split(CSV(leads), "\n")[1]
	assert.Contains(t, row, `"x@y.com"`)
	assert.NotContains(t, row, "o@y.com")
}

func TestCSV_MultilineFieldStaysQuoted(t *testing.T) {
	leads := []model.BusinessLead{{BusinessName: "A", PersonalHook: "line one\nline two"}}
	assert.True(t, strings.HasSuffix(CSV(leads), "\"line one\nline two\""))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleLeads()))
	assert.Equal(t, CSV(sampleLeads()), buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleLeads()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := f.Sheet["Leads"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	var hdr []string
	for _, c := range sheet.Rows[0].Cells {
		hdr = append(hdr, c.String())
	}
	assert.Equal(t, Columns, hdr)

	first := sheet.Rows[1].Cells
	assert.Equal(t, "Corner Cafe", first[0].String())
	score, err := first[3].Int()
	require.NoError(t, err)
	assert.Equal(t, 92, score)
	assert.Equal(t, "owner@quietbooks.com", sheet.Rows[2].Cells[4].String())
}
