package star

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

func TestCodecRoundTrip(t *testing.T) {
	test := []struct {
		name  string
		table *Table
	}{
		{"no rows", NewTable("_rlnMicrographName")},
		{"one column", &Table{
			Columns: []string{"_rlnMicrographName"},
			Rows:    [][]string{{"a.mrc"}, {"b.mrc"}},
		}},
		{"wide values", &Table{
			Columns: []string{"_rlnImageName", "_rlnVoltage", "_rlnDefocusU"},
			Rows: [][]string{
				{"000001@Extract/job010/Movies/FoilHole_1_Data_2_3_20200101_120000.mrcs", "300", "12345.678901234"},
				{"000002@Extract/job010/Movies/FoilHole_1_Data_2_3_20200101_120000.mrcs", "300", "-1.5"},
			},
		}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tt.table, "data_particles"))
			got, err := Decode(NewReader(&buf), "data_particles")
			require.NoError(t, err)
			assert.Equal(t, tt.table.Columns, got.Columns)
			assert.Equal(t, tt.table.Len(), got.Len())
			for i := range tt.table.Rows {
				assert.Equal(t, tt.table.Rows[i], got.Rows[i])
			}
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	table := &Table{
		Columns: []string{"_rlnOpticsGroupName", "_rlnOpticsGroup"},
		Rows:    [][]string{{"opticsGroup1", "1"}, {"averyveryverylongname", "2"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, table, "data_optics"))
	exp := "\n# version 30001\n\ndata_optics\n\nloop_\n" +
		"_rlnOpticsGroupName #1\n" +
		"_rlnOpticsGroup #2\n" +
		"opticsGroup1            1\n" +
		"averyveryverylongname            2\n" +
		"\n"
	assert.Equal(t, exp, buf.String())
}

func TestDecode(t *testing.T) {
	t.Run("stops at blank line", func(t *testing.T) {
		src := "data_\n\nloop_\n_rlnA #1\n_rlnB #2\n1 2\n  3   4  \n\n5 6\n"
		r := NewReader(strings.NewReader(src))
		got, err := Decode(r, "data_")
		require.NoError(t, err)
		assert.Equal(t, []string{"_rlnA", "_rlnB"}, got.Columns)
		assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, got.Rows)
	})
	t.Run("labels at end of stream", func(t *testing.T) {
		r := NewReader(strings.NewReader("data_x\nloop_\n_rlnA\n"))
		got, err := Decode(r, "data_x")
		require.NoError(t, err)
		assert.Equal(t, []string{"_rlnA"}, got.Columns)
		assert.Zero(t, got.Len())
	})
	t.Run("two blocks from one reader", func(t *testing.T) {
		src := "data_optics\nloop_\n_rlnA\n1\n\ndata_particles\nloop_\n_rlnB\n_rlnC\nx y\n"
		r := NewReader(strings.NewReader(src))
		optics, err := Decode(r, "data_optics")
		require.NoError(t, err)
		particles, err := Decode(r, "data_particles")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"1"}}, optics.Rows)
		assert.Equal(t, [][]string{{"x", "y"}}, particles.Rows)
	})

	errTest := []struct {
		name  string
		src   string
		block string
	}{
		{"short row", "data_\nloop_\n_rlnA\n_rlnB\n1 2\n3\n", "data_"},
		{"long row", "data_\nloop_\n_rlnA\n1 2\n", "data_"},
		{"missing block", "data_optics\nloop_\n_rlnA\n1\n", "data_particles"},
		{"missing loop", "data_\n_rlnA\n1\n", "data_"},
	}
	for _, tt := range errTest {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(NewReader(strings.NewReader(tt.src)), tt.block)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fault.ErrFormat), err)
		})
	}
}

func TestEncodeRejectsUndecodableTables(t *testing.T) {
	test := []struct {
		name string
		rows [][]string
	}{
		{"short row", [][]string{{"1", "2"}, {"3"}}},
		{"long row", [][]string{{"1", "2", "3"}}},
		{"empty value", [][]string{{"1", ""}}},
		{"value with space", [][]string{{"1", "a b"}}},
		{"value with tab", [][]string{{"a\tb", "2"}}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Encode(&buf, &Table{Columns: []string{"_rlnA", "_rlnB"}, Rows: tt.rows}, "data_x")
			require.Error(t, err)
			assert.True(t, errors.Is(err, fault.ErrFormat), err)
			assert.Zero(t, buf.Len())
		})
	}
}
