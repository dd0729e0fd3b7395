package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowError(t *testing.T) {
	assert.Equal(t, "row 3, column 'Code': field 'Code' is required",
		NewRowError(3, "Code", ErrCodeImportRequiredField, "field 'Code' is required").Error())
	assert.Equal(t, "row 4: bad", NewRowError(4, "", ErrCodeImportValidation, "bad").Error())
}

func TestErrorCollection(t *testing.T) {
	t.Run("Truncates after limit", func(t *testing.T) {
		ec := NewErrorCollection(2)
		ec.AddRequiredError(2, "Code")
		ec.AddTypeError(3, "MODEL TARGET", "int", "ten")
		ec.AddRequiredError(4, "Name")

		assert.True(t, ec.HasErrors())
		assert.Len(t, ec.Errors(), 2)
		assert.Equal(t, 3, ec.TotalCount())
		assert.True(t, ec.IsTruncated())
		assert.Equal(t, "ten", ec.Errors()[1].Value)
		assert.Contains(t, ec.String(), "showing first 2")
	})

	t.Run("Default limit", func(t *testing.T) {
		ec := NewErrorCollection(0)
		assert.False(t, ec.HasErrors())
		assert.Equal(t, "no errors", ec.String())
	})
}
