package opticsgroup

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/kttn8769/relion-optics-group-assigner/internal/star"
)

// Group is one row of the data_optics table.
type Group struct {
	ID         int
	MTFFile    string
	OrigAngpix float64

	Voltage             string
	SphericalAberration string
	AmplitudeContrast   string
	ImagePixelSize      string
	ImageSize           string
	ImageDimensionality string

	// Extra holds the values of columns copied from an input optics table
	// that have no field above, aligned with opticsLayout.extra.
	Extra []string
}

func (g Group) Name() string {
	return fmt.Sprintf("opticsGroup%d", g.ID)
}

func (g Group) value(col string) string {
	switch col {
	case ColVoltage:
		return g.Voltage
	case ColSphericalAberration:
		return g.SphericalAberration
	case ColAmplitudeContrast:
		return g.AmplitudeContrast
	case ColImagePixelSize:
		return g.ImagePixelSize
	case ColImageSize:
		return g.ImageSize
	case ColImageDimensionality:
		return g.ImageDimensionality
	}
	return ""
}

func (g *Group) setValue(col, v string) {
	switch col {
	case ColVoltage:
		g.Voltage = v
	case ColSphericalAberration:
		g.SphericalAberration = v
	case ColAmplitudeContrast:
		g.AmplitudeContrast = v
	case ColImagePixelSize:
		g.ImagePixelSize = v
	case ColImageSize:
		g.ImageSize = v
	case ColImageDimensionality:
		g.ImageDimensionality = v
	}
}

// opticsLayout decides which columns the data_optics table carries.
type opticsLayout struct {
	hasMTF bool
	values []string
	extra  []string
}

// templateLayout keeps the standard value columns present in template and
// appends the template's remaining columns after them.
func templateLayout(template []string, hasMTF bool) opticsLayout {
	fixed := []string{ColOpticsGroupName, ColOpticsGroup}
	fixed = append(fixed, opticsValueColumns...)
	if hasMTF {
		fixed = append(fixed, ColMtfFileName, ColMicrographOrigPixelSize)
	}
	l := opticsLayout{hasMTF: hasMTF}
	for _, c := range opticsValueColumns {
		if slices.Contains(template, c) {
			l.values = append(l.values, c)
		}
	}
	for _, c := range template {
		if !slices.Contains(fixed, c) {
			l.extra = append(l.extra, c)
		}
	}
	return l
}

func (l opticsLayout) columns() []string {
	cols := []string{ColOpticsGroupName, ColOpticsGroup}
	if l.hasMTF {
		cols = append(cols, ColMtfFileName, ColMicrographOrigPixelSize)
	}
	cols = append(cols, l.values...)
	return append(cols, l.extra...)
}

func (l opticsLayout) render(groups []Group) *star.Table {
	t := star.NewTable(l.columns()...)
	for _, g := range groups {
		row := []string{g.Name(), strconv.Itoa(g.ID)}
		if l.hasMTF {
			row = append(row, g.MTFFile, fmt.Sprintf("%.6f", g.OrigAngpix))
		}
		for _, c := range l.values {
			row = append(row, g.value(c))
		}
		row = append(row, g.Extra...)
		t.Rows = append(t.Rows, row)
	}
	return t
}
