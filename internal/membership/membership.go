// Package membership holds the micrograph to optics group table produced by
// the group finder and consumed when optics groups are applied to particles.
package membership

import (
	"path/filepath"
	"slices"
	"strings"
)

// Row is one micrograph. MTFFile and OrigAngpix are only meaningful when the
// owning Table has HasMTF set.
type Row struct {
	Filename      string
	FilelistGroup int
	Foilhole      int
	ShiftX        int
	ShiftY        int
	Date          int
	Time          string
	MTFFile       string
	OrigAngpix    float64
	OpticsGroup   int
}

type Table struct {
	Rows   []Row
	HasMTF bool
}

// Key reduces a micrograph path to the name used for lookups: the base name
// without its extension.
func Key(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Index maps each filename to the positions of the rows carrying it.
func (t Table) Index() map[string][]int {
	idx := make(map[string][]int, len(t.Rows))
	for i, r := range t.Rows {
		idx[r.Filename] = append(idx[r.Filename], i)
	}
	return idx
}

// GroupRange returns the smallest and largest optics group ids. ok is false
// for an empty table.
func (t Table) GroupRange() (lo, hi int, ok bool) {
	if len(t.Rows) == 0 {
		return 0, 0, false
	}
	lo, hi = t.Rows[0].OpticsGroup, t.Rows[0].OpticsGroup
	for _, r := range t.Rows[1:] {
		lo = min(lo, r.OpticsGroup)
		hi = max(hi, r.OpticsGroup)
	}
	return lo, hi, true
}

// First returns the first row assigned to group.
func (t Table) First(group int) (Row, bool) {
	for _, r := range t.Rows {
		if r.OpticsGroup == group {
			return r, true
		}
	}
	return Row{}, false
}

// Summary describes one optics group.
type Summary struct {
	OpticsGroup   int
	FilelistGroup int
	ShiftX        int
	ShiftY        int
	Count         int
}

// Summaries lists the groups in ascending id order with their member counts.
// Position fields come from the first member of each group.
func (t Table) Summaries() []Summary {
	byGroup := make(map[int]*Summary)
	var ids []int
	for _, r := range t.Rows {
		s, ok := byGroup[r.OpticsGroup]
		if !ok {
			s = &Summary{
				OpticsGroup:   r.OpticsGroup,
				FilelistGroup: r.FilelistGroup,
				ShiftX:        r.ShiftX,
				ShiftY:        r.ShiftY,
			}
			byGroup[r.OpticsGroup] = s
			ids = append(ids, r.OpticsGroup)
		}
		s.Count++
	}
	slices.Sort(ids)
	out := make([]Summary, len(ids))
	for i, id := range ids {
		out[i] = *byGroup[id]
	}
	return out
}
