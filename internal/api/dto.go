package api

import "github.com/samcharles93/envi/internal/catalog"

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}

type RasterList struct {
	Object string           `json:"object"`
	Data   []*catalog.Entry `json:"data"`
}

type MetadataValue struct {
	Object string   `json:"object"`
	Raster string   `json:"raster"`
	Key    string   `json:"key"`
	Value  string   `json:"value"`
	Values []string `json:"values"`
}

type BandResponse struct {
	Object  string `json:"object"`
	Raster  string `json:"raster"`
	Lines   int    `json:"lines"`
	Samples int    `json:"samples"`
	catalog.BandStats
	Values []float64 `json:"values,omitempty"`
}

type ReloadResponse struct {
	Object  string `json:"object"`
	Rasters int    `json:"rasters"`
}
