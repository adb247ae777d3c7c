package finder

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
	"github.com/kttn8769/relion-optics-group-assigner/internal/membership"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseEPUName(t *testing.T) {
	a, err := ParseEPUName("FoilHole_12345_Data_678_90_20200131_235959_fractions")
	require.NoError(t, err)
	assert.Equal(t, Acquisition{Foilhole: 12345, ShiftX: 678, ShiftY: 90, Date: 20200131, Time: "235959"}, a)

	a, err = ParseEPUName("X_-1_Y_-2_+3_4_t")
	require.NoError(t, err)
	assert.Equal(t, Acquisition{Foilhole: -1, ShiftX: -2, ShiftY: 3, Date: 4, Time: "t"}, a)

	test := []string{
		"FoilHole_1_Data_2_3_4",
		"FoilHole_x_Data_2_3_4_5",
		"FoilHole_1_Data_2_y_4_5",
		"FoilHole_1_Data_2_3_20200101.5_5",
		"",
	}
	for _, name := range test {
		_, err := ParseEPUName(name)
		assert.True(t, errors.Is(err, fault.ErrFormat), name)
	}
}

func TestGroup(t *testing.T) {
	t.Run("membership follows filelist and shift only", func(t *testing.T) {
		var buf bytes.Buffer
		f, err := New(WithLogger(log.New(&buf, "", 0)))
		require.NoError(t, err)
		got, err := f.Group([][]string{{
			"A_1_x_10_20_20200101_t1",
			"B_1_x_10_20_20200102_t2",
			"C_1_x_30_40_20200101_t1",
			"D_7_x_10_20_20210101_t9",
		}})
		require.NoError(t, err)
		groups := make(map[string]int)
		for _, r := range got.Rows {
			groups[r.Filename] = r.OpticsGroup
		}
		assert.Equal(t, map[string]int{"A_1_x_10_20_20200101_t1": 1, "B_1_x_10_20_20200102_t2": 1, "C_1_x_30_40_20200101_t1": 2, "D_7_x_10_20_20210101_t9": 1}, groups)
		assert.Equal(t,
			"Group No.   1, (filelist_id, shift_x, shift_y) = ( 0, 10, 20),     3 images.\n"+
				"Group No.   2, (filelist_id, shift_x, shift_y) = ( 0, 30, 40),     1 images.\n",
			buf.String())
	})
	t.Run("first seen order", func(t *testing.T) {
		f, err := New(WithLogger(nil))
		require.NoError(t, err)
		got, err := f.Group([][]string{
			{"a_0_x_9_9_1_t", "b_0_x_1_1_1_t", "c_0_x_9_9_1_t"},
			{"d_0_x_9_9_1_t", "e_0_x_1_1_1_t"},
		})
		require.NoError(t, err)
		var ids []int
		var filelists []int
		for _, r := range got.Rows {
			ids = append(ids, r.OpticsGroup)
			filelists = append(filelists, r.FilelistGroup)
		}
		assert.Equal(t, []int{1, 2, 1, 3, 4}, ids)
		assert.Equal(t, []int{0, 0, 0, 1, 1}, filelists)
		assert.False(t, got.HasMTF)
	})
	t.Run("mtf per filelist", func(t *testing.T) {
		f, err := New(WithLogger(nil), WithMTF([]MTFEntry{{"mtf_a.star", 0.5}, {"mtf_b.star", 1.06}}))
		require.NoError(t, err)
		got, err := f.Group([][]string{{"a_0_x_1_1_1_t"}, {"b_0_x_1_1_1_t"}})
		require.NoError(t, err)
		assert.True(t, got.HasMTF)
		assert.Equal(t, "mtf_a.star", got.Rows[0].MTFFile)
		assert.Equal(t, 1.06, got.Rows[1].OrigAngpix)
		assert.Equal(t, 2, got.Rows[1].OpticsGroup)

		_, err = f.Group([][]string{{"a_0_x_1_1_1_t"}})
		assert.True(t, errors.Is(err, fault.ErrMissingInput))
	})
	t.Run("custom parser", func(t *testing.T) {
		parse := func(key string) (Acquisition, error) {
			x, y, _ := strings.Cut(key, "-")
			return Acquisition{ShiftX: len(x), ShiftY: len(y)}, nil
		}
		f, err := New(WithLogger(nil), WithNameParser(parse))
		require.NoError(t, err)
		got, err := f.Group([][]string{{"ab-c", "xy-z", "a-bc"}})
		require.NoError(t, err)
		assert.Equal(t, 1, got.Rows[1].OpticsGroup)
		assert.Equal(t, 2, got.Rows[2].OpticsGroup)
	})
	t.Run("malformed name", func(t *testing.T) {
		f, err := New(WithLogger(nil))
		require.NoError(t, err)
		_, err = f.Group([][]string{{"movie_1.tiff"}})
		assert.True(t, errors.Is(err, fault.ErrFormat))
	})
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	list1 := writeFile(t, dir, "list1.txt",
		"Movies/FoilHole_1_Data_5_6_20200101_100000_fractions.tiff\n\nMovies/FoilHole_2_Data_5_6_20200101_100100_fractions.tiff\n")
	list2 := writeFile(t, dir, "list2.txt",
		"Movies/FoilHole_3_Data_5_6_20200102_100000_fractions.tiff\n")

	got, err := Find([]string{list1, list2}, WithLogger(nil))
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, membership.Row{
		Filename: "FoilHole_2_Data_5_6_20200101_100100_fractions", FilelistGroup: 0,
		Foilhole: 2, ShiftX: 5, ShiftY: 6, Date: 20200101, Time: "100100", OpticsGroup: 1,
	}, got.Rows[1])
	assert.Equal(t, 2, got.Rows[2].OpticsGroup)

	_, err = Find([]string{filepath.Join(dir, "missing.txt")})
	assert.True(t, errors.Is(err, fault.ErrFormat))
}

func TestMTFInfo(t *testing.T) {
	entries, err := ParseMTFInfo(strings.NewReader("# comment line here\nmtf_k2.star 1.06\n\n  mtf_k3.star   0.83  \n"))
	require.NoError(t, err)
	assert.Equal(t, []MTFEntry{{"mtf_k2.star", 1.06}, {"mtf_k3.star", 0.83}}, entries)

	_, err = ParseMTFInfo(strings.NewReader("only-one-token\n"))
	assert.True(t, errors.Is(err, fault.ErrFormat))
	_, err = ParseMTFInfo(strings.NewReader("mtf.star abc\n"))
	assert.True(t, errors.Is(err, fault.ErrFormat))

	path := writeFile(t, t.TempDir(), "mtf.txt", "mtf.star 0.5\n")
	entries, err = ReadMTFInfo(path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	_, err = ReadMTFInfo(path + ".missing")
	assert.True(t, errors.Is(err, fault.ErrFormat))

	_, err = New(WithMTF(nil))
	assert.True(t, errors.Is(err, fault.ErrMissingInput))
}
