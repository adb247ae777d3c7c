package star

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

// Version is the STAR schema version taken from the "# version" header.
type Version int

const (
	// VersionLegacy is assumed for files without a version header (RELION <= 3.0).
	VersionLegacy Version = 30000
	// VersionOutput is written on every output block (RELION 3.1).
	VersionOutput Version = 30001
)

// IsLegacy reports whether v predates the split into optics and particles blocks.
func (v Version) IsLegacy() bool { return v < VersionOutput }

const (
	BlockOptics    = "data_optics"
	BlockParticles = "data_particles"

	versionHeader = "# version"
	blockPrefix   = "data_"
)

// Document is a particle STAR file. Optics is nil for legacy files.
type Document struct {
	Version   Version
	Optics    *Table
	Particles *Table
}

func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.Format("%s does not exist", path)
		}
		return nil, err
	}
	defer f.Close()
	doc, err := ReadDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ReadDocument detects the schema version and decodes the blocks it implies.
func ReadDocument(src io.Reader) (*Document, error) {
	r := NewReader(src)
	doc := new(Document)
	found := false
	for !found && r.next() {
		line := strings.TrimSpace(r.line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, versionHeader):
			fields := strings.Fields(line)
			v, err := strconv.Atoi(fields[len(fields)-1])
			if err != nil {
				return nil, fault.Format("line %d: invalid version %q", r.lineNo, line)
			}
			doc.Version = Version(v)
			found = true
		case strings.HasPrefix(line, blockPrefix):
			doc.Version = VersionLegacy
			found = true
		default:
			return nil, fault.Format("line %d: expected %q or a data_ block, got %q", r.lineNo, versionHeader, line)
		}
	}
	if !found {
		return nil, r.notFound("version header or data_ block")
	}

	var err error
	if doc.Version.IsLegacy() {
		doc.Particles, err = Decode(r, "")
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	if doc.Optics, err = Decode(r, BlockOptics); err != nil {
		return nil, err
	}
	if n := doc.Optics.Len(); n != 1 {
		return nil, fault.Consistency("%s has %d rows, expected exactly 1", BlockOptics, n)
	}
	if doc.Particles, err = Decode(r, BlockParticles); err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteDocument writes the optics block followed by the particles block.
func WriteDocument(w io.Writer, optics, particles *Table) error {
	if err := Encode(w, optics, BlockOptics); err != nil {
		return err
	}
	return Encode(w, particles, BlockParticles)
}

func WriteFile(path string, optics, particles *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteDocument(f, optics, particles); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
