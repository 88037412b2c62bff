package envi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataAddKeepsOrder(t *testing.T) {
	t.Parallel()

	var md Metadata
	require.NoError(t, md.Add("wavelength units", "nm"))
	require.NoError(t, md.Add("sensor gain", 2.5))
	require.NoError(t, md.Add("frames", 12))

	require.Equal(t, 3, md.Len())
	assert.Equal(t, "wavelength units", md.Key(0))
	assert.Equal(t, "sensor gain", md.Key(1))
	assert.Equal(t, "frames", md.Key(2))
	assert.Equal(t, "2.5", md.Value(1))
	assert.Equal(t, "12", md.Get("frames"))

	var keys []string
	for k := range md.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"wavelength units", "sensor gain", "frames"}, keys)
}

func TestMetadataDuplicateKey(t *testing.T) {
	t.Parallel()

	var md Metadata
	require.NoError(t, md.Add("k", "first"))
	err := md.Add("k", "second")
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, "first", md.Get("k"))
	assert.Equal(t, 1, md.Len())

	assert.ErrorIs(t, md.AddMulti("k", 1, 2), ErrDuplicateKey)
}

func TestMetadataMissingKey(t *testing.T) {
	t.Parallel()

	var md Metadata
	assert.False(t, md.Has("nope"))
	assert.Equal(t, "", md.Get("nope"))
	assert.Equal(t, "dflt", md.GetOr("nope", "dflt"))
	assert.Nil(t, md.Values("nope"))
	assert.Equal(t, 7, Lookup(&md, "nope", 7))
}

func TestMetadataFloatFormatting(t *testing.T) {
	t.Parallel()

	var md Metadata
	require.NoError(t, md.Add("pi", 3.141592653589793))
	require.NoError(t, md.Add("half", float32(0.5)))
	require.NoError(t, md.Add("big", 5e5))

	assert.Equal(t, "3.141592653589793", md.Get("pi"))
	assert.Equal(t, "0.5", md.Get("half"))
	assert.Equal(t, "500000", md.Get("big"))
}

func TestMetadataValues(t *testing.T) {
	t.Parallel()

	var md Metadata
	require.NoError(t, md.Add("list", "a, b ,c"))
	require.NoError(t, md.Add("trailing", "a,"))
	require.NoError(t, md.Add("blank", ""))
	require.NoError(t, md.AddMulti("braced", 1, 2.5, "x"))

	assert.Equal(t, []string{"a", "b", "c"}, md.Values("list"))
	assert.Equal(t, []string{"a"}, md.Values("trailing"))
	assert.Empty(t, md.Values("blank"))
	assert.Equal(t, "{ 1, 2.5, x }", md.Get("braced"))
	assert.Equal(t, []string{"1", "2.5", "x"}, md.Values("braced"))
}

func TestMetadataScanMapInfo(t *testing.T) {
	t.Parallel()

	var md Metadata
	require.NoError(t, md.AddMulti("map info", "UTM", 1, 1, 500000.0, 4000000.0, 30, 30, 32, "North"))

	var (
		proj       string
		refX, refY float64
		east       float64
		north      float64
		dx, dy     float64
		zone       int
		hemi       string
	)
	md.Scan("map info",
		Into(&proj), Into(&refX), Into(&refY),
		Into(&east), Into(&north), Into(&dx), Into(&dy),
		Into(&zone), Into(&hemi))

	assert.Equal(t, "UTM", proj)
	assert.Equal(t, 1.0, refX)
	assert.Equal(t, 1.0, refY)
	assert.Equal(t, 500000.0, east)
	assert.Equal(t, 4000000.0, north)
	assert.Equal(t, 30.0, dx)
	assert.Equal(t, 30.0, dy)
	assert.Equal(t, 32, zone)
	assert.Equal(t, "North", hemi)
}

func TestMetadataScanLenient(t *testing.T) {
	t.Parallel()

	var md Metadata
	require.NoError(t, md.AddMulti("pair", 1, 2))
	require.NoError(t, md.AddMulti("bad", "x", 4))

	a, b, c := -1, -1, -1
	md.Scan("pair", Into(&a), Into(&b), Into(&c))
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, -1, c, "positions past the end keep their default")

	x, y := 9, 9
	md.Scan("bad", Into(&x), Into(&y))
	assert.Equal(t, 9, x, "unparsable piece keeps its default")
	assert.Equal(t, 4, y)

	z := 5
	md.Scan("pair", Ignore, Into(&z))
	assert.Equal(t, 2, z)
	md.Scan("pair", nil, nil, Into(&z))
	assert.Equal(t, 2, z)
}

func TestLookupParsesNumbers(t *testing.T) {
	t.Parallel()

	var md Metadata
	require.NoError(t, md.Add("count", " 42 "))
	require.NoError(t, md.Add("ratio", "30.0"))
	require.NoError(t, md.Add("flag", "true"))
	require.NoError(t, md.Add("word", "abc"))

	assert.Equal(t, 42, Lookup(&md, "count", 0))
	assert.Equal(t, uint16(30), Lookup(&md, "ratio", uint16(0)))
	assert.Equal(t, 30.0, Lookup(&md, "ratio", 0.0))
	assert.True(t, Lookup(&md, "flag", false))
	assert.Equal(t, int8(-3), Lookup(&md, "word", int8(-3)))
	assert.Equal(t, "abc", Lookup(&md, "word", ""))
}

func TestMetadataAddAll(t *testing.T) {
	t.Parallel()

	var src, dst Metadata
	require.NoError(t, src.Add("a", 1))
	require.NoError(t, src.add("b", "x, y", true))
	require.NoError(t, dst.AddAll(&src))

	assert.Equal(t, "1", dst.Get("a"))
	assert.Equal(t, []string{"x", "y"}, dst.Values("b"))
	assert.ErrorIs(t, dst.AddAll(&src), ErrDuplicateKey)
}

func TestMetadataRejectsUnwritableEntries(t *testing.T) {
	t.Parallel()

	var md Metadata
	for _, key := range []string{"", " padded", "a=b", "a{b", "line\nbreak", "samples", "band names"} {
		assert.ErrorIs(t, md.Add(key, 1), ErrInvalidArgument, "key %q", key)
		assert.ErrorIs(t, md.AddMulti(key, 1, 2), ErrInvalidArgument, "key %q", key)
	}
	for _, value := range []string{"two\nlines", "cr\r", "{ braced }", "half}"} {
		assert.ErrorIs(t, md.Add("k", value), ErrInvalidArgument, "value %q", value)
	}
	assert.ErrorIs(t, md.AddMulti("k", "ok", "bad}"), ErrInvalidArgument)
	assert.Zero(t, md.Len())

	require.NoError(t, md.AddMulti("k", "multi\nline is fine inside braces", 2))
}
