package roga

import (
	"errors"
	"log"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

type Option func(*Assigner) error

// WithImageSize sets the particle box size in pixels written to
// _rlnImageSize. It is required when the input STAR file predates RELION 3.1.
func WithImageSize(size int) Option {
	return func(a *Assigner) error {
		if size <= 0 {
			return fault.MissingInput("image size must be positive, got %d", size)
		}
		a.imageSize = size
		return nil
	}
}

// WithMTF attaches one MTF calibration per filelist, in filelist order.
// The number of entries must match the number of filelists given to FindGroups.
func WithMTF(entries []MTFEntry) Option {
	return func(a *Assigner) error {
		if len(entries) == 0 {
			return fault.MissingInput("no mtf entries given")
		}
		a.mtf = entries
		return nil
	}
}

// WithMTFInfo reads the MTF entries from an MTF info file, one
// "<mtf file> <original pixel size>" line per filelist.
func WithMTFInfo(path string) Option {
	return func(a *Assigner) error {
		entries, err := ReadMTFInfo(path)
		if err != nil {
			return err
		}
		a.mtf = entries
		return nil
	}
}

// WithNameParser replaces the EPU filename parser used to find the beam
// shift position of each micrograph.
func WithNameParser(p NameParser) Option {
	return func(a *Assigner) error {
		if p == nil {
			return errors.New("nil name parser")
		}
		a.parser = p
		return nil
	}
}

// WithLogger sets the logger for progress and group summaries. A nil
// logger silences them.
func WithLogger(l *log.Logger) Option {
	return func(a *Assigner) error {
		a.logger = l
		a.quiet = l == nil
		return nil
	}
}
