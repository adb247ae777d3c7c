package opticsgroup

import (
	"fmt"
	"log"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
	"github.com/kttn8769/relion-optics-group-assigner/internal/membership"
	"github.com/kttn8769/relion-optics-group-assigner/internal/star"
)

// BuildInput carries everything Build needs. Particles must already hold
// _rlnOpticsGroup (see Assign).
type BuildInput struct {
	Version    star.Version
	Particles  *star.Table
	Optics     *star.Table
	Membership membership.Table
	// ImageSize is the particle box size in pixels; zero means unset. It is
	// required for legacy input.
	ImageSize int
	Logger    *log.Logger
}

// GroupCount is the number of particles in one optics group.
type GroupCount struct {
	OpticsGroup int
	Particles   int
}

// Result holds the tables in write order: optics first, then particles.
type Result struct {
	Optics    *star.Table
	Particles *star.Table
	Counts    []GroupCount
}

// Build derives the data_optics table and migrates the particle table to the
// 3.1 layout when the input is legacy.
func Build(in BuildInput) (*Result, error) {
	logger := in.Logger
	if logger == nil {
		logger = log.Default()
	}
	if in.Particles == nil {
		return nil, fault.MissingInput("no particle table")
	}
	if in.Version.IsLegacy() && in.ImageSize <= 0 {
		return nil, fault.MissingInput("image size is required for STAR version %d", in.Version)
	}

	groupOf, err := intColumn(in.Particles, ColOpticsGroup)
	if err != nil {
		return nil, err
	}
	ids, counts := countGroups(groupOf, in.Membership)
	for _, c := range counts {
		logger.Printf("OpticsGroup %3d : %7d particles", c.OpticsGroup, c.Particles)
	}

	res := &Result{Counts: counts}
	var (
		groups []Group
		layout opticsLayout
	)
	if in.Version.IsLegacy() {
		if groups, err = legacyGroups(in.Particles, groupOf, ids, in.ImageSize); err != nil {
			return nil, err
		}
		layout = opticsLayout{hasMTF: in.Membership.HasMTF, values: opticsValueColumns}
		if res.Particles, err = migrateLegacy(in.Particles); err != nil {
			return nil, err
		}
	} else {
		if in.Optics == nil || in.Optics.Len() == 0 {
			return nil, fault.Consistency("input optics table is empty")
		}
		layout = templateLayout(in.Optics.Columns, in.Membership.HasMTF)
		groups = templateGroups(in.Optics, layout, ids)
		res.Particles = in.Particles.Clone()
	}

	if in.Membership.HasMTF {
		for i := range groups {
			row, ok := in.Membership.First(groups[i].ID)
			if !ok {
				return nil, fault.Consistency("optics group %d is not in the membership table", groups[i].ID)
			}
			groups[i].MTFFile = row.MTFFile
			groups[i].OrigAngpix = row.OrigAngpix
		}
	}
	res.Optics = layout.render(groups)
	return res, nil
}

// countGroups returns the distinct ids in groupOf, ascending, and the
// particle count of every id between the smallest and largest membership
// ids, including ids with no particles.
func countGroups(groupOf []int, m membership.Table) ([]int, []GroupCount) {
	n := make(map[int]int)
	var ids []int
	for _, g := range groupOf {
		if n[g] == 0 {
			ids = append(ids, g)
		}
		n[g]++
	}
	slices.Sort(ids)

	lo, hi, ok := m.GroupRange()
	if !ok {
		if len(ids) == 0 {
			return ids, nil
		}
		lo, hi = ids[0], ids[len(ids)-1]
	}
	counts := make([]GroupCount, 0, hi-lo+1)
	for id := lo; id <= hi; id++ {
		counts = append(counts, GroupCount{OpticsGroup: id, Particles: n[id]})
	}
	return ids, counts
}

// legacyGroups builds one optics row per group from the per-particle optics
// columns, which must agree within a group.
func legacyGroups(t *star.Table, groupOf []int, ids []int, imageSize int) ([]Group, error) {
	idx := make([]int, len(legacyOpticsColumns))
	for i, c := range legacyOpticsColumns {
		if idx[i] = t.Index(c); idx[i] < 0 {
			return nil, fault.Format("legacy particle table has no %s column", c)
		}
	}
	members := make(map[int][]int, len(ids))
	for row, g := range groupOf {
		members[g] = append(members[g], row)
	}

	groups := make([]Group, 0, len(ids))
	for _, id := range ids {
		rows := members[id]
		first := t.Rows[rows[0]]
		for i, c := range legacyOpticsColumns {
			for _, r := range rows[1:] {
				if t.Rows[r][idx[i]] != first[idx[i]] {
					return nil, fault.Consistency("%s of group %d is inconsistent", c, id)
				}
			}
		}
		mag, err := parseFloat(first[idx[0]], ColMagnification)
		if err != nil {
			return nil, err
		}
		det, err := parseFloat(first[idx[1]], ColDetectorPixelSize)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{
			ID:                  id,
			AmplitudeContrast:   first[idx[2]],
			SphericalAberration: first[idx[3]],
			Voltage:             first[idx[4]],
			ImagePixelSize:      fmt.Sprintf("%.6f", pixelSize(det, mag)),
			ImageSize:           strconv.Itoa(imageSize),
			ImageDimensionality: "2",
		})
	}
	return groups, nil
}

// templateGroups clones the first row of optics once per group id.
func templateGroups(optics *star.Table, l opticsLayout, ids []int) []Group {
	template := optics.Rows[0]
	groups := make([]Group, 0, len(ids))
	for _, id := range ids {
		g := Group{ID: id}
		for _, c := range l.values {
			g.setValue(c, template[optics.Index(c)])
		}
		for _, c := range l.extra {
			g.Extra = append(g.Extra, template[optics.Index(c)])
		}
		groups = append(groups, g)
	}
	return groups
}

// migrateLegacy drops the per-particle optics columns and replaces the pixel
// origin offsets with angstrom offsets.
func migrateLegacy(t *star.Table) (*star.Table, error) {
	out := t.Clone()
	mag, err := floatColumn(out, ColMagnification)
	if err != nil {
		return nil, err
	}
	det, err := floatColumn(out, ColDetectorPixelSize)
	if err != nil {
		return nil, err
	}
	angpix := make([]float64, len(det))
	floats.DivTo(angpix, det, mag)
	floats.Scale(1e4, angpix)
	out.DropColumns(legacyOpticsColumns...)

	for _, c := range []struct{ from, to string }{
		{ColOriginX, ColOriginXAngst},
		{ColOriginY, ColOriginYAngst},
	} {
		if !out.Has(c.from) {
			continue
		}
		origin, err := floatColumn(out, c.from)
		if err != nil {
			return nil, err
		}
		floats.Mul(origin, angpix)
		values := make([]string, len(origin))
		for i, v := range origin {
			values[i] = fmt.Sprintf("%.6f", v)
		}
		if err := out.SetColumn(c.to, values); err != nil {
			return nil, err
		}
	}
	out.DropColumns(ColOriginX, ColOriginY)
	return out, nil
}

// pixelSize converts a detector pixel size in micrometres at the given
// magnification to angstroms per image pixel.
func pixelSize(detectorMicron, magnification float64) float64 {
	return detectorMicron / magnification * 1e4
}

func parseFloat(s, col string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fault.Format("%s %q is not a number", col, s)
	}
	return v, nil
}

func floatColumn(t *star.Table, col string) ([]float64, error) {
	values, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, s := range values {
		if out[i], err = parseFloat(s, col); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return out, nil
}

func intColumn(t *star.Table, col string) ([]int, error) {
	values, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	for i, s := range values {
		if out[i], err = strconv.Atoi(s); err != nil {
			return nil, fault.Format("row %d: %s %q is not an integer", i+1, col, s)
		}
	}
	return out, nil
}
