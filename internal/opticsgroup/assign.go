package opticsgroup

import (
	"strconv"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
	"github.com/kttn8769/relion-optics-group-assigner/internal/membership"
	"github.com/kttn8769/relion-optics-group-assigner/internal/star"
)

// unassigned marks a particle that has not been given a group yet.
const unassigned = 0

// Assign returns a copy of particles with _rlnOpticsGroup set from the
// membership row matching each particle's micrograph. An existing
// _rlnOpticsGroup column is overwritten in place.
func Assign(particles *star.Table, m membership.Table) (*star.Table, error) {
	names, err := particles.Column(ColMicrographName)
	if err != nil {
		return nil, err
	}

	idx := m.Index()
	groups := make([]int, len(names))
	for i := range groups {
		groups[i] = unassigned
	}
	for i, name := range names {
		key := membership.Key(name)
		switch pos := idx[key]; len(pos) {
		case 0:
			return nil, fault.Consistency("particle %d: micrograph %s has no optics group", i+1, key)
		case 1:
			groups[i] = m.Rows[pos[0]].OpticsGroup
		default:
			return nil, fault.Consistency("particle %d: micrograph %s matches %d membership rows", i+1, key, len(pos))
		}
	}

	values := make([]string, len(groups))
	for i, g := range groups {
		if g == unassigned {
			return nil, fault.Postcondition("particle %d (%s) has no optics group", i+1, names[i])
		}
		values[i] = strconv.Itoa(g)
	}

	out := particles.Clone()
	if err := out.SetColumn(ColOpticsGroup, values); err != nil {
		return nil, err
	}
	return out, nil
}
