// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Puts together the stitch request for one layer and hands it to the stitching engine
package plan

import (
	"github.com/mapsmosaic/core/mosaic/budget"
	"github.com/mapsmosaic/core/mosaic/config"
	"github.com/mapsmosaic/core/mosaic/layer"
	"github.com/mapsmosaic/core/mosaic/tiles"
)

// ScaleUnit - all our scales are nm per pixel
const ScaleUnit = "nm"

// VerticalDirection - tiles are listed column by column, top to bottom
const VerticalDirection = "v"

// StitchSettings - options understood by the stitching engine. Names are the engine's
type StitchSettings struct {
	WorkingDirectory    string  `json:"workingDirectory"`
	OutputDirectory     string  `json:"outputDirectory"`
	FileType            string  `json:"fileType"`
	ColCount            int     `json:"col_count"`
	RowCount            int     `json:"row_count"`
	ScaleX              float64 `json:"scaleX"`
	ScaleY              float64 `json:"scaleY"`
	ScaleUnit           string  `json:"scaleUnit"`
	ScaleFactor         float64 `json:"scaleFactor"`
	TileCount           int     `json:"tile_count"`
	ImageDirection      string  `json:"imageDirection"`
	CreateThumbnail     bool    `json:"createThumbnail"`
	ShowDebuggingOutput bool    `json:"showDebuggingOutput"`
	CropX               int     `json:"cropX"`
	CropY               int     `json:"cropY"`
}

// MosaicPlan - everything needed to stitch one layer. Built once, submitted, then dropped
type MosaicPlan struct {
	OutputID   string
	WorkingDir string
	OutputDir  string
	FileType   string

	Tiles tiles.TileSet
	Scale budget.ScalePlan

	ShowDebuggingOutput bool
}

// Build - returns false if there's nothing to stitch, which means the layer is skipped
func Build(resolved layer.ResolvedLayer, tileSet tiles.TileSet, scale budget.ScalePlan, outputDir string, cfg config.MosaicConfig) (MosaicPlan, bool) {
	if tileSet.IsEmpty() {
		return MosaicPlan{}, false
	}

	return MosaicPlan{
		OutputID:            resolved.OutputID,
		WorkingDir:          resolved.LayerDir,
		OutputDir:           outputDir,
		FileType:            cfg.TileFileType,
		Tiles:               tileSet,
		Scale:               scale,
		ShowDebuggingOutput: cfg.ShowDebuggingOutput,
	}, true
}

func (p MosaicPlan) Settings() StitchSettings {
	return StitchSettings{
		WorkingDirectory:    p.WorkingDir,
		OutputDirectory:     p.OutputDir,
		FileType:            p.FileType,
		ColCount:            p.Tiles.GridWidth,
		RowCount:            p.Tiles.GridHeight,
		ScaleX:              p.Scale.ScaleX,
		ScaleY:              p.Scale.ScaleY,
		ScaleUnit:           ScaleUnit,
		ScaleFactor:         p.Scale.ScaleFactor,
		TileCount:           p.Tiles.GridWidth * p.Tiles.GridHeight,
		ImageDirection:      VerticalDirection,
		CreateThumbnail:     true,
		ShowDebuggingOutput: p.ShowDebuggingOutput,
		CropX:               p.Scale.CropWidth,
		CropY:               p.Scale.CropHeight,
	}
}

// Submit - hands the plan to a stitcher
func (p MosaicPlan) Submit(stitcher Stitcher) error {
	return stitcher.StitchImages(p.Settings(), p.Tiles.Paths, p.OutputID)
}
