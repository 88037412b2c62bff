package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/envi/internal/catalog"
	"github.com/samcharles93/envi/internal/logger"
	"github.com/samcharles93/envi/pkg/envi"
)

// Catalog is the read side of a raster index.
type Catalog interface {
	List() []*catalog.Entry
	Get(name string) (*catalog.Entry, error)
	OpenRaster(name string) (*envi.Reader, error)
	Reload(ctx context.Context) error
}

type Server struct {
	catalog Catalog
	log     logger.Logger
}

func NewServer(cat Catalog, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{catalog: cat, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(requestID())

	e.GET("/v1/rasters", s.handleList)
	e.POST("/v1/rasters/reload", s.handleReload)
	e.GET("/v1/rasters/:name", s.handleGet)
	e.GET("/v1/rasters/:name/metadata/:key", s.handleMetadata)
	e.GET("/v1/rasters/:name/bands/:band", s.handleBand)
}

func (s *Server) handleList(c *echo.Context) error {
	return c.JSON(http.StatusOK, RasterList{Object: "list", Data: s.catalog.List()})
}

func (s *Server) handleReload(c *echo.Context) error {
	if err := s.catalog.Reload(c.Request().Context()); err != nil {
		s.log.Error("reload failed", "error", err)
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, ReloadResponse{Object: "reload", Rasters: len(s.catalog.List())})
}

func (s *Server) handleGet(c *echo.Context) error {
	e, err := s.catalog.Get(c.Param("name"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleMetadata(c *echo.Context) error {
	name, key := c.Param("name"), c.Param("key")
	r, err := s.catalog.OpenRaster(name)
	if err != nil {
		return writeErr(c, err)
	}
	defer func() { _ = r.Close() }()

	md := r.Metadata()
	if !md.Has(key) {
		return writeError(c, http.StatusNotFound, "not_found_error", "metadata key "+key+" not found", "key")
	}
	return c.JSON(http.StatusOK, MetadataValue{
		Object: "metadata",
		Raster: name,
		Key:    key,
		Value:  md.Get(key),
		Values: md.Values(key),
	})
}

func (s *Server) handleBand(c *echo.Context) error {
	name := c.Param("name")
	withValues, err := boolQuery(c, "values")
	if err != nil {
		return writeBadRequest(c, err.Error(), "values")
	}

	r, err := s.catalog.OpenRaster(name)
	if err != nil {
		return writeErr(c, err)
	}
	defer func() { _ = r.Close() }()

	idx, err := catalog.ResolveBand(r, c.Param("band"))
	if err != nil {
		return writeErr(c, err)
	}
	stats, values, err := catalog.ReadBand(r, idx)
	if err != nil {
		s.log.Error("read band failed", "raster", name, "band", idx, "error", err)
		return writeErr(c, err)
	}

	lines, samples := r.Extent()
	resp := BandResponse{
		Object:    "band",
		Raster:    name,
		Lines:     lines,
		Samples:   samples,
		BandStats: stats,
	}
	if withValues {
		resp.Values = values
	}
	return c.JSON(http.StatusOK, resp)
}
