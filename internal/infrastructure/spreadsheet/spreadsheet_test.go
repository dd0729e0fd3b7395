package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/fieldsales/backend/internal/domain/report"
	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		for j, v := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", axis, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadTable(t *testing.T) {
	buf := workbook(t, [][]any{
		{"DATE ", "CHANNEL", "MTD VOLUME"},
		{time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "Retail", 12},
		{"3/11/2024", " Online ", 1234567},
	})

	table, err := ReadTable(buf, WithDateColumns(sales.ColDate))
	require.NoError(t, err)

	assert.Equal(t, []string{"DATE", "CHANNEL", "MTD VOLUME"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "3/10/2024", table.Rows[0].Get("DATE"))
	assert.Equal(t, "12", table.Rows[0].Get("MTD VOLUME"))
	assert.Equal(t, "3/11/2024", table.Rows[1].Get("DATE"))
	assert.Equal(t, "Online", table.Rows[1].Get("CHANNEL"))
	assert.Equal(t, "1234567", table.Rows[1].Get("MTD VOLUME"))
}

func TestReadTable_NotAWorkbook(t *testing.T) {
	_, err := ReadTable(bytes.NewBufferString("DATE,CHANNEL\n"))
	assert.Error(t, err)
}

func TestExporter_Export(t *testing.T) {
	w := report.Window{Period: report.PeriodMTD, DaysPassed: 15}
	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	cur := []*sales.Record{{OutletType: "DCM", MTDVolume: "175", SaleDate: &d, SalesType: sales.SalesTypeSellOut}}
	rep := report.BuildChannelReport(report.ChannelInput{
		Window:  w,
		Measure: report.MeasureVolume,
		Current: report.Aggregate(cur, report.DimOutletType, report.MeasureVolume),
	})

	f, err := NewExporter().Export("Channel Wise", rep)
	require.NoError(t, err)

	rows, err := f.GetRows("Channel Wise")
	require.NoError(t, err)
	require.Len(t, rows, 2+len(report.KnownChannels))
	assert.Equal(t, report.ChannelColumns, rows[0])
	assert.Equal(t, report.GrandTotalLabel, rows[1][0])
	assert.Equal(t, "DCM", rows[2][0])
	assert.Equal(t, "175", rows[2][2])
	assert.Equal(t, report.NotAvailable, rows[2][7])

	width, err := f.GetColWidth("Channel Wise", "A")
	require.NoError(t, err)
	assert.Equal(t, 22.0, width)
	width, err = f.GetColWidth("Channel Wise", "C")
	require.NoError(t, err)
	assert.Equal(t, 14.0, width)
	assert.NoError(t, f.Close())
}

func TestExporter_Export_InvalidSheetName(t *testing.T) {
	rep := report.BuildMarketReport(report.MarketInput{Window: report.Window{Period: report.PeriodMTD, DaysPassed: 1}})

	f, err := NewExporter().Export("Channel: Wise", rep)
	require.Error(t, err)
	assert.Nil(t, f)
	assert.Contains(t, err.Error(), "failed to name sheet")
}
