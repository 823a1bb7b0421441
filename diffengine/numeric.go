package diffengine

import (
	"github.com/oapi-codegen/nullable"
	"github.com/shopspring/decimal"

	"github.com/supabase/pg-toolbelt-sub004/catalog"
)

// columnDefaultPayload builds the ColumnDefaultChange for c: a null
// Nullable when the column no longer has a default, the expression
// otherwise.
func columnDefaultPayload(c *catalog.Column) ColumnDefaultChange {
	if !c.HasDefault {
		return ColumnDefaultChange{Column: c.Name, Default: nullable.NewNullNullable[string]()}
	}
	return ColumnDefaultChange{Column: c.Name, Default: nullable.NewNullableWithValue(c.Default)}
}

// defaultsEqual compares two column DEFAULT expressions for semantic
// equality. Most defaults are arbitrary SQL expressions compared verbatim,
// but a literal numeric default round-trips through the catalog with
// whatever scale the server chose to print ("100.0" vs "100.00"), which
// would otherwise produce a spurious ALTER COLUMN SET DEFAULT on every run.
// When both sides parse as decimal literals, they compare by value;
// otherwise this falls back to exact text comparison.
func defaultsEqual(a, c string) bool {
	if a == c {
		return true
	}
	da, errA := decimal.NewFromString(a)
	dc, errC := decimal.NewFromString(c)
	if errA != nil || errC != nil {
		return false
	}
	return da.Equal(dc)
}
