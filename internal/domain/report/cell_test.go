package report

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_JSON(t *testing.T) {
	cells := []Cell{Text("DCM"), Int(175), Ratio(decimal.NewFromFloat(12.5)), NA()}

	data, err := json.Marshal(cells)
	require.NoError(t, err)
	assert.JSONEq(t, `["DCM",175,"12.50","N/A"]`, string(data))
}

func TestRow_JSONKeepsColumnOrder(t *testing.T) {
	row := newRow([]string{"b", "a", "c"}, []Cell{Int(1), Int(2), Text("x")})

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":2,"c":"x"}`, string(data))
}

func TestReport_Sequence(t *testing.T) {
	cols := []string{"Channel", "MTD"}
	total := newRow(cols, []Cell{Text(GrandTotalLabel), Int(3)})
	rows := []Row{
		newRow(cols, []Cell{Text("A"), Int(2)}),
		newRow(cols, []Cell{Text("B"), Int(1)}),
	}
	r := newReport(cols, "Channel", total, rows)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"Channel":"Channel","MTD":"MTD"},{"Channel":"Grand Total","MTD":3},{"Channel":"A","MTD":2},{"Channel":"B","MTD":1}]`,
		string(data))

	b, ok := r.Row("B")
	require.True(t, ok)
	assert.Equal(t, int64(1), b.Cell("MTD").IntValue())

	_, ok = r.Row("C")
	assert.False(t, ok)
}
