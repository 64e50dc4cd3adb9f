// Package screener filters and ranks a universe of stocks by fundamental
// criteria. The universe is loaded once from a data source; every query
// returns a fresh slice and leaves the universe untouched.
package screener

import (
	"errors"
	"sort"
	"strings"

	"github.com/fundamenta/fundamenta/pkg/models"
)

// ErrNotReady is returned when a query runs before the universe is
// loaded. This is a caller programming error, unlike missing fundamental
// data, which queries absorb silently by excluding rows.
var ErrNotReady = errors.New("screener: universe not loaded")

// DefaultTopN is the default result size for ranked queries.
const DefaultTopN = 10

// Predicate decides whether a universe row passes a filter. Predicates
// compose by logical AND; a row whose column is absent fails the
// predicate and is excluded, never an error.
type Predicate func(*models.ScreenerRow) bool

// Min keeps rows whose column is present and >= bound.
func Min(column string, bound float64) Predicate {
	return func(r *models.ScreenerRow) bool {
		v := r.Field(column)
		return v != nil && *v >= bound
	}
}

// Max keeps rows whose column is present and <= bound.
func Max(column string, bound float64) Predicate {
	return func(r *models.ScreenerRow) bool {
		v := r.Field(column)
		return v != nil && *v <= bound
	}
}

// Gt keeps rows whose column is present and strictly > bound.
func Gt(column string, bound float64) Predicate {
	return func(r *models.ScreenerRow) bool {
		v := r.Field(column)
		return v != nil && *v > bound
	}
}

// Lt keeps rows whose column is present and strictly < bound.
func Lt(column string, bound float64) Predicate {
	return func(r *models.ScreenerRow) bool {
		v := r.Field(column)
		return v != nil && *v < bound
	}
}

// SectorContains keeps rows whose sector contains the substring,
// case-insensitively.
func SectorContains(substr string) Predicate {
	needle := strings.ToLower(substr)
	return func(r *models.ScreenerRow) bool {
		return strings.Contains(strings.ToLower(r.Sector), needle)
	}
}

// Screener holds a fundamentals universe, one row per ticker. The zero
// value is usable but not ready: load rows before querying.
type Screener struct {
	rows   []models.ScreenerRow
	loaded bool
}

// New builds a ready screener over the given rows.
func New(rows []models.ScreenerRow) *Screener {
	s := &Screener{}
	s.Load(rows)
	return s
}

// Load replaces the universe. The slice is copied; later caller
// mutations do not affect the screener.
func (s *Screener) Load(rows []models.ScreenerRow) {
	cp := make([]models.ScreenerRow, len(rows))
	copy(cp, rows)
	s.rows = cp
	s.loaded = true
}

// Ready reports whether a universe has been loaded.
func (s *Screener) Ready() bool { return s.loaded }

// Universe returns a copy of all rows.
func (s *Screener) Universe() ([]models.ScreenerRow, error) {
	if !s.loaded {
		return nil, ErrNotReady
	}
	cp := make([]models.ScreenerRow, len(s.rows))
	copy(cp, s.rows)
	return cp, nil
}

// Filter returns the rows passing every predicate, in universe order.
func (s *Screener) Filter(preds ...Predicate) ([]models.ScreenerRow, error) {
	if !s.loaded {
		return nil, ErrNotReady
	}
	return filterRows(s.rows, preds), nil
}

// RankBy orders rows by a column and returns the first topN. Rows where
// the column is absent or exactly zero are dropped before sorting; ties
// keep universe order (stable sort). topN <= 0 falls back to DefaultTopN.
func (s *Screener) RankBy(column string, ascending bool, topN int) ([]models.ScreenerRow, error) {
	if !s.loaded {
		return nil, ErrNotReady
	}
	return rankRows(s.rows, column, ascending, topN), nil
}

// ValueStocks ranks cheap earners: P/E restricted to (0, 20), ascending.
func (s *Screener) ValueStocks(topN int) ([]models.ScreenerRow, error) {
	if !s.loaded {
		return nil, ErrNotReady
	}
	rows := filterRows(s.rows, []Predicate{Gt("pl", 0), Lt("pl", 20)})
	return rankRows(rows, "pl", true, topN), nil
}

// DividendStocks ranks the highest dividend payers: yield > 0, descending.
func (s *Screener) DividendStocks(topN int) ([]models.ScreenerRow, error) {
	if !s.loaded {
		return nil, ErrNotReady
	}
	rows := filterRows(s.rows, []Predicate{Gt("dividend_yield", 0)})
	return rankRows(rows, "dividend_yield", false, topN), nil
}

// QualityStocks ranks by profitability: ROE > 0, descending.
func (s *Screener) QualityStocks(topN int) ([]models.ScreenerRow, error) {
	if !s.loaded {
		return nil, ErrNotReady
	}
	rows := filterRows(s.rows, []Predicate{Gt("roe", 0)})
	return rankRows(rows, "roe", false, topN), nil
}

// --- shared query plumbing ---

func filterRows(rows []models.ScreenerRow, preds []Predicate) []models.ScreenerRow {
	out := make([]models.ScreenerRow, 0, len(rows))
	for i := range rows {
		keep := true
		for _, p := range preds {
			if !p(&rows[i]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rows[i])
		}
	}
	return out
}

func rankRows(rows []models.ScreenerRow, column string, ascending bool, topN int) []models.ScreenerRow {
	if topN <= 0 {
		topN = DefaultTopN
	}

	type keyed struct {
		row models.ScreenerRow
		val float64
	}
	ranked := make([]keyed, 0, len(rows))
	for i := range rows {
		v := rows[i].Field(column)
		if v == nil || *v == 0 {
			continue
		}
		ranked = append(ranked, keyed{row: rows[i], val: *v})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ascending {
			return ranked[i].val < ranked[j].val
		}
		return ranked[i].val > ranked[j].val
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]models.ScreenerRow, len(ranked))
	for i, k := range ranked {
		out[i] = k.row
	}
	return out
}
