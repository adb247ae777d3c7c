// Package roga adds RELION optics groups to particle STAR files.
//
// Optics groups are found from EPU movie filenames: micrographs taken at the
// same beam shift position, listed in the same filelist, share one group.
// The resulting membership table is then joined to a particle table by
// micrograph name, and a data_optics table is derived for the groups.
package roga

import (
	"fmt"
	"io"
	"log"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
	"github.com/kttn8769/relion-optics-group-assigner/internal/finder"
	"github.com/kttn8769/relion-optics-group-assigner/internal/membership"
	"github.com/kttn8769/relion-optics-group-assigner/internal/opticsgroup"
	"github.com/kttn8769/relion-optics-group-assigner/internal/star"
)

var (
	ErrFormat        = fault.ErrFormat
	ErrConsistency   = fault.ErrConsistency
	ErrMissingInput  = fault.ErrMissingInput
	ErrPostcondition = fault.ErrPostcondition
)

// FindGroups groups the micrographs listed in filelists.
// This is a convenience function that creates an Assigner and calls its FindGroups method.
func FindGroups(filelists []string, opts ...Option) (Membership, error) {
	a, err := New(opts...)
	if err != nil {
		return Membership{}, err
	}
	return a.FindGroups(filelists)
}

// Apply reads inputStar and the membership file, and writes outputStar with
// optics groups embedded.
// This is a convenience function that creates an Assigner and calls its Apply method.
func Apply(inputStar, membershipPath, outputStar string, opts ...Option) (*Result, error) {
	a, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return a.Apply(inputStar, membershipPath, outputStar)
}

type Assigner struct {
	imageSize int
	mtf       []MTFEntry
	parser    NameParser
	logger    *log.Logger
	quiet     bool
}

// New initializes an Assigner. Without options it parses EPU filenames, has
// no MTF information and logs to the standard logger.
func New(opts ...Option) (*Assigner, error) {
	a := new(Assigner)
	if err := a.init(opts...); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Assigner) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return err
		}
	}
	if a.parser == nil {
		a.parser = finder.ParseEPUName
	}
	switch {
	case a.quiet:
		a.logger = log.New(io.Discard, "", 0)
	case a.logger == nil:
		a.logger = log.Default()
	}
	return nil
}

// FindGroups groups the micrographs listed in filelists.
//
// Process:
//  1. Reads each filelist, one micrograph path per line.
//  2. Parses the acquisition fields from each filename.
//  3. Groups micrographs by (filelist, shift_x, shift_y), numbering groups
//     from 1 in the order they are first met.
//  4. Logs the size of every group.
func (a *Assigner) FindGroups(filelists []string) (Membership, error) {
	opts := []finder.Option{finder.WithNameParser(a.parser), finder.WithLogger(a.logger)}
	if a.mtf != nil {
		opts = append(opts, finder.WithMTF(a.mtf))
	}
	return finder.Find(filelists, opts...)
}

// ApplyDocument embeds the groups of m into doc and returns the output tables.
//
// Process:
//  1. Joins every particle to its membership row by micrograph name.
//  2. Derives one data_optics row per group present in the particles.
//  3. For legacy input, moves the per-particle optics fields into data_optics
//     and converts origins from pixels to angstroms.
//
// Returns an error for legacy input when no image size was configured.
func (a *Assigner) ApplyDocument(doc *Document, m Membership) (*Result, error) {
	if doc.Version.IsLegacy() && a.imageSize <= 0 {
		return nil, fault.MissingInput("image size is required for STAR version %d", doc.Version)
	}
	a.logger.Printf("Appending %s to %d particles", opticsgroup.ColOpticsGroup, doc.Particles.Len())
	particles, err := opticsgroup.Assign(doc.Particles, m)
	if err != nil {
		return nil, err
	}
	return opticsgroup.Build(opticsgroup.BuildInput{
		Version:    doc.Version,
		Particles:  particles,
		Optics:     doc.Optics,
		Membership: m,
		ImageSize:  a.imageSize,
		Logger:     a.logger,
	})
}

// Apply reads inputStar and the membership file (CSV or SQLite catalog),
// and writes outputStar in the 3.1 layout.
func (a *Assigner) Apply(inputStar, membershipPath, outputStar string) (*Result, error) {
	doc, err := star.ReadFile(inputStar)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Read %s: version %d, %d particles", inputStar, doc.Version, doc.Particles.Len())
	m, err := membership.ReadFile(membershipPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", membershipPath, err)
	}
	res, err := a.ApplyDocument(doc, m)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Writing %s and %s to %s", star.BlockOptics, star.BlockParticles, outputStar)
	if err := star.WriteFile(outputStar, res.Optics, res.Particles); err != nil {
		return nil, err
	}
	return res, nil
}
