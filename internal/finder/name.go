package finder

import (
	"strconv"
	"strings"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

// Acquisition is the metadata encoded in a micrograph filename.
type Acquisition struct {
	Foilhole int
	ShiftX   int
	ShiftY   int
	Date     int
	Time     string
}

// NameParser extracts acquisition metadata from a micrograph key (the
// filename without directory and extension).
type NameParser func(key string) (Acquisition, error)

// ParseEPUName reads an EPU movie name such as
// FoilHole_<foilhole>_Data_<shift_x>_<shift_y>_<date>_<time>[_suffix].
// Tokens are taken by position after splitting on underscores.
func ParseEPUName(key string) (Acquisition, error) {
	words := strings.Split(key, "_")
	if len(words) < 7 {
		return Acquisition{}, fault.Format("%s: expected at least 7 underscore separated fields, got %d", key, len(words))
	}
	var (
		a   = Acquisition{Time: words[6]}
		err error
	)
	for _, f := range []struct {
		dst  *int
		idx  int
		name string
	}{
		{&a.Foilhole, 1, "foilhole"},
		{&a.ShiftX, 3, "shift_x"},
		{&a.ShiftY, 4, "shift_y"},
		{&a.Date, 5, "date"},
	} {
		if *f.dst, err = strconv.Atoi(words[f.idx]); err != nil {
			return Acquisition{}, fault.Format("%s: %s %q is not an integer", key, f.name, words[f.idx])
		}
	}
	return a, nil
}
