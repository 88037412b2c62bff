package catalog

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/envi/internal/logger"
	"github.com/samcharles93/envi/pkg/envi"
)

func writeRaster(t *testing.T, path string, bands map[string][]float32, lines, samples int) {
	t.Helper()
	w, err := envi.Create(path, "fixture", lines, samples, envi.Float32)
	require.NoError(t, err)
	for _, name := range []string{"red", "nir", "swir"} {
		if data, ok := bands[name]; ok {
			_, err := envi.AddChannel(w, name, data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.AddMeta("sensor", "fixture"))
	require.NoError(t, w.Close())
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, envi.Dump(filepath.Join(dir, "b.dat"), "b", 1, 1, []int16{1}))
	require.NoError(t, envi.Dump(filepath.Join(dir, "a"), "a", 1, 1, []int16{1}))

	// Header only reachable via "<name>.hdr".
	require.NoError(t, envi.Dump(filepath.Join(dir, "c.raw"), "c", 1, 1, []int16{1}))
	require.NoError(t, os.Rename(filepath.Join(dir, "c.hdr"), filepath.Join(dir, "c.raw.hdr")))

	// No header at all.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.dat"), []byte{0, 0}, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.dat"), 0o755))

	got, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a"),
		filepath.Join(dir, "b.dat"),
		filepath.Join(dir, "c.raw"),
	}, got)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scene.bsq")
	writeRaster(t, path, map[string][]float32{"red": {1, 2, 3, 4}, "nir": {5, 6, 7, 8}}, 2, 2)

	e, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "scene.bsq", e.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "scene.hdr"), e.HeaderPath)
	assert.Equal(t, "fixture", e.Description)
	assert.Equal(t, 2, e.Lines)
	assert.Equal(t, 2, e.Samples)
	assert.Equal(t, "float32", e.DataType)
	assert.Equal(t, []string{"red", "nir"}, e.Bands)
	assert.Equal(t, int64(32), e.Size)
	assert.Equal(t, []MetaEntry{{Key: "sensor", Value: "fixture"}}, e.Metadata)
}

func TestLoadKeepsOrderAndFailsFast(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"z.dat", "m.dat", "a.dat"} {
		p := filepath.Join(dir, name)
		require.NoError(t, envi.Dump(p, name, 1, 2, []uint16{1, 2}))
		paths = append(paths, p)
	}

	entries, err := Load(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, filepath.Base(paths[i]), e.Name)
	}

	_, err = Load(context.Background(), append(paths, filepath.Join(dir, "missing.dat")))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCatalogSkipsBrokenHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRaster(t, filepath.Join(dir, "good.dat"), map[string][]float32{"red": {1}}, 1, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.dat"), []byte{0}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.hdr"), []byte("ENVI\ninterleave = bip\ndata type = 1\n"), 0o644))

	c, err := Open(context.Background(), dir, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, dir, c.Dir())

	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, "good.dat", list[0].Name)

	_, err = c.Get("bad.dat")
	assert.ErrorIs(t, err, ErrNotFound)

	r, err := c.OpenRaster("good.dat")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Equal(t, 1, r.NumChannels())

	writeRaster(t, filepath.Join(dir, "later.dat"), map[string][]float32{"nir": {2}}, 1, 1)
	require.NoError(t, c.Reload(context.Background()))
	assert.Len(t, c.List(), 2)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9, math.NaN()})
	assert.Equal(t, 9, s.Count)
	assert.Equal(t, 1, s.NaN)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.StdDev, 1e-12)

	empty := Summarize(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Mean)
}

func TestReadBandAndResolve(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.dat")
	writeRaster(t, path, map[string][]float32{"red": {1, 3}, "nir": {10, 20}}, 1, 2)

	r, err := envi.Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	idx, err := ResolveBand(r, "nir")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = ResolveBand(r, "0")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = ResolveBand(r, "2")
	assert.ErrorIs(t, err, envi.ErrInvalidChannel)
	_, err = ResolveBand(r, "blue")
	assert.ErrorIs(t, err, envi.ErrChannelNotFound)

	s, values, err := ReadBand(r, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, values)
	assert.Equal(t, "nir", s.Name)
	assert.Equal(t, 1, s.Index)
	assert.Equal(t, 15.0, s.Mean)
	assert.Equal(t, 5.0, s.StdDev)
}
