package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHierarchyLevel(t *testing.T) {
	level, err := ParseHierarchyLevel(" tse ")
	require.NoError(t, err)
	assert.Equal(t, LevelTSE, level)

	_, err = ParseHierarchyLevel("CEO")
	assert.Error(t, err)
}

func TestHierarchyLevel_Column(t *testing.T) {
	for _, level := range HierarchyLevels() {
		col, ok := level.Column()
		assert.True(t, ok, string(level))
		assert.NotEmpty(t, col)
	}

	_, ok := HierarchyLevel("DROP TABLE").Column()
	assert.False(t, ok)
}

func TestFieldFor(t *testing.T) {
	row := NewRawRow(2,
		[]string{ColDate, "TSE", "ASM"},
		[]string{"03/15/2024", "Ravi", "Meena"},
	)
	admitted, ok := ShouldAdmit(row, nil)
	require.True(t, ok)
	record := NewRecordFromRow(admitted)

	assert.Equal(t, "Ravi", FieldFor(LevelTSE, record))
	assert.Equal(t, "Meena", FieldFor(LevelASM, record))
	assert.Equal(t, "", FieldFor(LevelZSM, record))
	assert.Equal(t, "", FieldFor(LevelTSE, nil))
}
