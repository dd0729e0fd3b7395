package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = []string{ColDate, ColChannel, ColSalesType, ColMTDVolume}

func TestRawRow_Identity(t *testing.T) {
	t.Run("joins values in column order", func(t *testing.T) {
		row := NewRawRow(2, testColumns, []string{"03/15/2024", "DCM", "Sell Out", "100"})
		assert.Equal(t, "03/15/2024|DCM|Sell Out|100", row.Identity())
	})

	t.Run("column order changes identity", func(t *testing.T) {
		a := NewRawRow(2, testColumns, []string{"03/15/2024", "DCM", "Sell Out", "100"})
		b := NewRawRow(2, testColumns, []string{"DCM", "03/15/2024", "Sell Out", "100"})
		assert.NotEqual(t, a.Identity(), b.Identity())
	})

	t.Run("embedded delimiter does not collide", func(t *testing.T) {
		a := NewRawRow(2, []string{"A", "B"}, []string{"x|y", "z"})
		b := NewRawRow(2, []string{"A", "B"}, []string{"x", "y|z"})
		assert.NotEqual(t, a.Identity(), b.Identity())
		assert.NotEqual(t, HashIdentity(a.Identity()), HashIdentity(b.Identity()))
	})
}

func TestRawRow_Get(t *testing.T) {
	row := NewRawRow(3, testColumns, []string{" 03/15/2024 ", "DCM"})

	assert.Equal(t, "03/15/2024", row.Get(ColDate))
	assert.Equal(t, "DCM", row.Get(ColChannel))
	assert.Equal(t, "", row.Get(ColMTDVolume), "short row reads missing column as empty")
	assert.Equal(t, "", row.Get("UNKNOWN"))
}

func TestPeriodBucketOf(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"03/15/2024", 3},
		{"3/5/2024", 3},
		{"12/01/2023", 12},
		{"2024-03-15", 0},
		{"", 0},
		{"13/01/2024", 0},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodBucketOf(tt.date))
		})
	}
}

func TestShouldAdmit(t *testing.T) {
	row := NewRawRow(2, testColumns, []string{"03/15/2024", "DCM", "Sell Out", "100"})

	t.Run("admits unseen row with identity and bucket", func(t *testing.T) {
		admitted, ok := ShouldAdmit(row, HashSet{})
		require.True(t, ok)
		assert.Equal(t, "03/15/2024|DCM|Sell Out|100", admitted.Identity)
		assert.Equal(t, HashIdentity(admitted.Identity), admitted.IdentityHash)
		assert.Equal(t, 3, admitted.PeriodBucket)
	})

	t.Run("rejects known identity", func(t *testing.T) {
		seen := HashSet{}
		seen.Add(HashIdentity(row.Identity()))

		_, ok := ShouldAdmit(row, seen)
		assert.False(t, ok)
	})

	t.Run("nil set admits everything", func(t *testing.T) {
		_, ok := ShouldAdmit(row, nil)
		assert.True(t, ok)
	})

	t.Run("does not mutate the set", func(t *testing.T) {
		seen := HashSet{}
		_, ok := ShouldAdmit(row, seen)
		require.True(t, ok)
		assert.Empty(t, seen)
	})
}
