package report

import (
	"errors"
	"testing"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	records := []*sales.Record{
		newRecord(withChannel("B"), withVolume("10"), withValue("1,000"), withModel("M1", "North", "Low")),
		newRecord(withChannel("A"), withVolume("abc"), withValue("12.9")),
		nil,
		newRecord(withChannel("B"), withVolume("5"), withValue(""), withModel("M1", "South", "High")),
	}

	t.Run("volume", func(t *testing.T) {
		a := Aggregate(records, DimChannel, MeasureVolume)
		assert.Equal(t, []string{"B", "A"}, a.Keys())
		assert.Equal(t, int64(15), a.Get("B").Current)
		assert.Equal(t, int64(0), a.Get("A").Current)
		assert.Equal(t, 2, a.Get("B").Records)
		assert.Equal(t, int64(15), a.Total())
	})

	t.Run("value coerces malformed text", func(t *testing.T) {
		a := Aggregate(records, DimChannel, MeasureValue)
		assert.Equal(t, int64(1000), a.Get("B").Current)
		assert.Equal(t, int64(12), a.Get("A").Current)
	})

	t.Run("metadata is first observed", func(t *testing.T) {
		a := Aggregate(records, DimChannel, MeasureVolume)
		g, ok := a.Lookup("B")
		require.True(t, ok)
		assert.Equal(t, "North", g.Market)
		assert.Equal(t, "Low", g.PriceBand)
	})

	t.Run("missing key is a zero group", func(t *testing.T) {
		a := Aggregate(records, DimChannel, MeasureVolume)
		assert.Equal(t, Group{Key: "Z"}, a.Get("Z"))
	})

	t.Run("nil aggregation", func(t *testing.T) {
		var a *Aggregation
		assert.Equal(t, 0, a.Len())
		assert.Equal(t, int64(0), a.Get("A").Current)
		assert.Nil(t, a.Keys())
	})
}

func TestParseMeasure(t *testing.T) {
	m, err := ParseMeasure("", MeasureVolume)
	require.NoError(t, err)
	assert.Equal(t, MeasureVolume, m)

	m, err = ParseMeasure("VALUE", MeasureVolume)
	require.NoError(t, err)
	assert.Equal(t, MeasureValue, m)

	_, err = ParseMeasure("units", MeasureValue)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
