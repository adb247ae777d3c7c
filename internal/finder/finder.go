// Package finder groups micrographs into optics groups by the beam shift
// position encoded in their filenames.
package finder

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
	"github.com/kttn8769/relion-optics-group-assigner/internal/membership"
)

type Option func(*Finder) error

// WithMTF attaches one MTF entry per filelist, in filelist order.
func WithMTF(entries []MTFEntry) Option {
	return func(f *Finder) error {
		if len(entries) == 0 {
			return fault.MissingInput("no mtf entries given")
		}
		f.mtf = entries
		return nil
	}
}

// WithNameParser replaces ParseEPUName.
func WithNameParser(p NameParser) Option {
	return func(f *Finder) error {
		if p == nil {
			return errors.New("nil name parser")
		}
		f.parse = p
		return nil
	}
}

// WithLogger sets where the group summary is printed. A nil logger
// silences it.
func WithLogger(l *log.Logger) Option {
	return func(f *Finder) error {
		f.logger = l
		f.quiet = l == nil
		return nil
	}
}

type Finder struct {
	parse  NameParser
	mtf    []MTFEntry
	logger *log.Logger
	quiet  bool
}

func New(opts ...Option) (*Finder, error) {
	f := new(Finder)
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	if f.parse == nil {
		f.parse = ParseEPUName
	}
	if f.logger == nil && !f.quiet {
		f.logger = log.Default()
	}
	return f, nil
}

// Find reads the filelists and groups their micrographs.
func Find(filelists []string, opts ...Option) (membership.Table, error) {
	f, err := New(opts...)
	if err != nil {
		return membership.Table{}, err
	}
	return f.Find(filelists)
}

func (f *Finder) Find(filelists []string) (membership.Table, error) {
	sources := make([][]string, len(filelists))
	for i, path := range filelists {
		mics, err := ReadFilelist(path)
		if err != nil {
			return membership.Table{}, err
		}
		sources[i] = mics
	}
	return f.Group(sources)
}

type groupKey struct {
	filelist int
	shiftX   int
	shiftY   int
}

// Group assigns optics groups to micrograph paths, one slice per filelist.
// Micrographs sharing (filelist, shift_x, shift_y) form a group; ids run
// from 1 in the order each group is first met.
func (f *Finder) Group(sources [][]string) (membership.Table, error) {
	if f.mtf != nil && len(f.mtf) != len(sources) {
		return membership.Table{}, fault.MissingInput("%d mtf entries for %d filelists", len(f.mtf), len(sources))
	}

	t := membership.Table{HasMTF: f.mtf != nil}
	ids := make(map[groupKey]int)
	var order []groupKey
	for i, mics := range sources {
		for _, mic := range mics {
			key := membership.Key(mic)
			a, err := f.parse(key)
			if err != nil {
				return membership.Table{}, fmt.Errorf("filelist %d: %w", i, err)
			}
			gk := groupKey{filelist: i, shiftX: a.ShiftX, shiftY: a.ShiftY}
			id, ok := ids[gk]
			if !ok {
				order = append(order, gk)
				id = len(order)
				ids[gk] = id
			}
			row := membership.Row{
				Filename:      key,
				FilelistGroup: i,
				Foilhole:      a.Foilhole,
				ShiftX:        a.ShiftX,
				ShiftY:        a.ShiftY,
				Date:          a.Date,
				Time:          a.Time,
				OpticsGroup:   id,
			}
			if t.HasMTF {
				row.MTFFile = f.mtf[i].File
				row.OrigAngpix = f.mtf[i].OrigAngpix
			}
			t.Rows = append(t.Rows, row)
		}
	}

	if f.logger != nil {
		for _, s := range t.Summaries() {
			f.logger.Printf("Group No. %3d, (filelist_id, shift_x, shift_y) = (%2d, %d, %d), %5d images.",
				s.OpticsGroup, s.FilelistGroup, s.ShiftX, s.ShiftY, s.Count)
		}
	}
	return t, nil
}

// ReadFilelist returns the non-blank lines of a filelist.
func ReadFilelist(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.Format("%s does not exist", path)
		}
		return nil, err
	}
	defer file.Close()

	var mics []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			mics = append(mics, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mics, nil
}
