package sales

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// IdentityDelimiter separates field values inside a record identity
const IdentityDelimiter = "|"

var identityEscaper = strings.NewReplacer(`\`, `\\`, IdentityDelimiter, `\`+IdentityDelimiter)

// RawRow is one uploaded row with its values in source column order
type RawRow struct {
	Line    int
	Columns []string
	Values  []string
	index   map[string]int
}

// NewRawRow pairs header names with values. Values beyond the header are
// kept for the identity but are not addressable by name.
func NewRawRow(line int, columns, values []string) RawRow {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return RawRow{Line: line, Columns: columns, Values: values, index: idx}
}

// Get returns the value of a named column, or "" when absent
func (r RawRow) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.Values) {
		return ""
	}
	return strings.TrimSpace(r.Values[i])
}

// Identity joins every value in column order. Values containing the
// delimiter are escaped so distinct rows never share an identity.
func (r RawRow) Identity() string {
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = identityEscaper.Replace(v)
	}
	return strings.Join(parts, IdentityDelimiter)
}

// HashIdentity returns the hex SHA-256 of an identity. The digest carries the
// uniqueness constraint in storage; the identity itself can exceed index limits.
func HashIdentity(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])
}

// PeriodBucketOf returns the month number taken from the leading token of a
// MM/DD/YYYY date, or 0 when that token is not a number.
func PeriodBucketOf(date string) int {
	token, _, _ := strings.Cut(strings.TrimSpace(date), "/")
	month, err := strconv.Atoi(token)
	if err != nil || month < 1 || month > 12 {
		return 0
	}
	return month
}

// Admitted is a raw row stamped with its identity and period bucket
type Admitted struct {
	RawRow
	Identity     string
	IdentityHash string
	PeriodBucket int
}

// IdentitySet answers whether an identity is already known
type IdentitySet interface {
	Contains(identityHash string) bool
}

// HashSet is an in-memory IdentitySet keyed by identity hash
type HashSet map[string]struct{}

// Contains implements IdentitySet
func (s HashSet) Contains(identityHash string) bool {
	_, ok := s[identityHash]
	return ok
}

// Add records an identity hash
func (s HashSet) Add(identityHash string) {
	s[identityHash] = struct{}{}
}

// ShouldAdmit stamps the row with its identity and reports whether it is new
// with respect to seen. It does not modify seen.
func ShouldAdmit(row RawRow, seen IdentitySet) (Admitted, bool) {
	identity := row.Identity()
	hash := HashIdentity(identity)
	if seen != nil && seen.Contains(hash) {
		return Admitted{}, false
	}
	return Admitted{
		RawRow:       row,
		Identity:     identity,
		IdentityHash: hash,
		PeriodBucket: PeriodBucketOf(row.Get(ColDate)),
	}, true
}
