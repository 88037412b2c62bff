// Package catalog indexes the ENVI rasters found in a directory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/envi/internal/logger"
	"github.com/samcharles93/envi/pkg/envi"
)

// ErrNotFound is returned when a raster name is not in the catalog.
var ErrNotFound = errors.New("catalog: raster not found")

// MetaEntry is one free-form header entry.
type MetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Entry summarizes one raster.
type Entry struct {
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	HeaderPath  string      `json:"header_path"`
	Description string      `json:"description"`
	Lines       int         `json:"lines"`
	Samples     int         `json:"samples"`
	DataType    string      `json:"data_type"`
	Bands       []string    `json:"bands"`
	Offset      int64       `json:"header_offset"`
	Size        int64       `json:"size"`
	Metadata    []MetaEntry `json:"metadata"`
}

// Discover returns the data files in dir that have a header next to them,
// sorted by name. Header files themselves are skipped.
func Discover(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, de := range ents {
		if de.IsDir() || strings.EqualFold(filepath.Ext(de.Name()), ".hdr") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if _, err := headerFor(path); err == nil {
			out = append(out, path)
		}
	}
	slices.Sort(out)
	return out, nil
}

// headerFor returns the header path used for the data file at path.
func headerFor(path string) (string, error) {
	name, err := envi.HeaderName(path)
	if err != nil {
		return "", err
	}
	for _, p := range []string{name, path + ".hdr"} {
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}

// Inspect opens the raster at path and summarizes its header.
func Inspect(path string, opts ...envi.Option) (*Entry, error) {
	opts = append([]envi.Option{envi.WithMmap(false)}, opts...)
	r, err := envi.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	h := r.Header()
	e := &Entry{
		Name:        filepath.Base(path),
		Path:        path,
		Description: h.Description,
		Lines:       h.Lines,
		Samples:     h.Samples,
		DataType:    h.DataType.String(),
		Bands:       r.ChannelNames(),
		Offset:      h.HeaderOffset,
		Metadata:    make([]MetaEntry, 0, h.Metadata.Len()),
	}
	if hp, err := headerFor(path); err == nil {
		e.HeaderPath = hp
	}
	if st, err := os.Stat(path); err == nil {
		e.Size = st.Size()
	}
	for k, v := range r.Metadata().All() {
		e.Metadata = append(e.Metadata, MetaEntry{Key: k, Value: v})
	}
	return e, nil
}

// Load inspects paths concurrently. Results keep the order of paths; the
// first failure cancels the rest.
func Load(ctx context.Context, paths []string, opts ...envi.Option) ([]*Entry, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	entries := make([]*Entry, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := Inspect(path, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Catalog is a reloadable index of one directory. It is safe for
// concurrent use.
type Catalog struct {
	dir string
	log logger.Logger

	mu      sync.RWMutex
	entries []*Entry
	byName  map[string]*Entry
}

// Open indexes dir.
func Open(ctx context.Context, dir string, log logger.Logger) (*Catalog, error) {
	if log == nil {
		log = logger.Nop()
	}
	c := &Catalog{dir: dir, log: log}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the indexed directory.
func (c *Catalog) Dir() string { return c.dir }

// Reload rescans the directory. Rasters whose header fails to parse are
// logged and left out.
func (c *Catalog) Reload(ctx context.Context) error {
	paths, err := Discover(c.dir)
	if err != nil {
		return fmt.Errorf("discover %s: %w", c.dir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	found := make([]*Entry, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := Inspect(path, envi.WithLogger(c.log))
			if err != nil {
				c.log.Warn("skipping raster", "path", path, "error", err)
				return nil
			}
			found[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	entries := slices.DeleteFunc(found, func(e *Entry) bool { return e == nil })
	byName := make(map[string]*Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	c.mu.Lock()
	c.entries, c.byName = entries, byName
	c.mu.Unlock()
	c.log.Info("catalog loaded", "dir", c.dir, "rasters", len(entries))
	return nil
}

// List returns all entries sorted by name.
func (c *Catalog) List() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.entries)
}

// Get returns the entry called name.
func (c *Catalog) Get(name string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e, nil
}

// OpenRaster opens a read session on the raster called name.
func (c *Catalog) OpenRaster(name string) (*envi.Reader, error) {
	e, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	return envi.Open(e.Path, envi.WithLogger(c.log))
}
