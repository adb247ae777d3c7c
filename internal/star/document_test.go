package star

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

const versionedStar = `
# version 30001

data_optics

loop_
_rlnOpticsGroupName #1
_rlnOpticsGroup #2
_rlnVoltage #3
opticsGroup1 1 300.0

# version 30001

data_particles

loop_
_rlnMicrographName #1
_rlnCoordinateX #2
_rlnOpticsGroup #3
mics/a.mrc 10.0 1
mics/b.mrc 20.0 1
`

const legacyStar = `

data_

loop_
_rlnMicrographName #1
_rlnVoltage #2
mics/a.mrc 300
mics/b.mrc 300
`

func TestReadDocument(t *testing.T) {
	t.Run("versioned", func(t *testing.T) {
		doc, err := ReadDocument(strings.NewReader(versionedStar))
		require.NoError(t, err)
		assert.Equal(t, Version(30001), doc.Version)
		assert.False(t, doc.Version.IsLegacy())
		require.NotNil(t, doc.Optics)
		assert.Equal(t, [][]string{{"opticsGroup1", "1", "300.0"}}, doc.Optics.Rows)
		assert.Equal(t, []string{"_rlnMicrographName", "_rlnCoordinateX", "_rlnOpticsGroup"}, doc.Particles.Columns)
		assert.Equal(t, 2, doc.Particles.Len())
	})
	t.Run("legacy", func(t *testing.T) {
		doc, err := ReadDocument(strings.NewReader(legacyStar))
		require.NoError(t, err)
		assert.Equal(t, VersionLegacy, doc.Version)
		assert.True(t, doc.Version.IsLegacy())
		assert.Nil(t, doc.Optics)
		assert.Equal(t, [][]string{{"mics/a.mrc", "300"}, {"mics/b.mrc", "300"}}, doc.Particles.Rows)
	})

	test := []struct {
		name string
		src  string
		kind error
	}{
		{"garbage header", "hello\ndata_\n", fault.ErrFormat},
		{"empty", "\n\n", fault.ErrFormat},
		{"bad version", "# version abc\n", fault.ErrFormat},
		{"no optics block", "# version 30001\ndata_particles\nloop_\n_rlnA\n1\n", fault.ErrFormat},
		{"two optics rows", "# version 30001\ndata_optics\nloop_\n_rlnOpticsGroup\n1\n2\n\ndata_particles\nloop_\n_rlnA\n1\n", fault.ErrConsistency},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocument(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), err)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.star")
	optics := &Table{Columns: []string{"_rlnOpticsGroup"}, Rows: [][]string{{"1"}}}
	particles := &Table{Columns: []string{"_rlnMicrographName", "_rlnOpticsGroup"}, Rows: [][]string{{"a.mrc", "1"}}}
	require.NoError(t, WriteFile(path, optics, particles))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, VersionOutput, doc.Version)
	assert.Equal(t, optics, doc.Optics)
	assert.Equal(t, particles, doc.Particles)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.star"))
	assert.True(t, errors.Is(err, fault.ErrFormat))
}

func TestWriteDocumentOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, NewTable("_rlnA"), NewTable("_rlnB")))
	out := buf.String()
	assert.Less(t, strings.Index(out, BlockOptics), strings.Index(out, BlockParticles))
	assert.Equal(t, 2, strings.Count(out, "# version 30001"))
}
