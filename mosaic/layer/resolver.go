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

// Finds where a layer's tiles are on disk and works out the grid geometry and physical scale, either from
// an assembled pyramid index or, failing that, from a directory of raw tiles
package layer

import (
	"fmt"
	"path/filepath"

	"github.com/mapsmosaic/core/core/imgFormat"
	"github.com/mapsmosaic/core/core/logger"
	"github.com/mapsmosaic/core/core/mapsproject"
	"github.com/mapsmosaic/core/core/pyramid"
	"github.com/mapsmosaic/core/core/tilename"
	"github.com/mapsmosaic/core/core/utils"
	"github.com/mapsmosaic/core/mosaic/config"
	"github.com/mapsmosaic/core/mosaic/tiles"
	"github.com/pkg/errors"
)

// DefaultTileSetDir - used when a layer dir has no subdirectory of its own
const DefaultTileSetDir = "0"

// LayerNotFoundError - the layer directory isn't there. The layer is skipped, the run carries on
type LayerNotFoundError struct {
	Name string
	Dir  string
}

func (e LayerNotFoundError) Error() string {
	return fmt.Sprintf("layer \"%v\" not found at %v", e.Name, e.Dir)
}

// FileSystem - what the resolver needs from the disk. Implemented by fileaccess.FSAccess
type FileSystem interface {
	ListDirectory(rootPath string, dir string) ([]string, []string, error)
	IsDirectory(rootPath string, dir string) bool
	ObjectExists(rootPath string, path string) (bool, error)
	CopyObject(srcRootPath string, srcPath string, dstRootPath string, dstPath string) error
}

type ResolvedLayer struct {
	Name     string
	OutputID string

	LayerDir string
	// Directory the pyramid lives in (<LayerDir>/<subdir>). Not used for raw layers
	TileSetDir string

	IsPyramid bool
	Levels    int

	GridWidth  int
	GridHeight int
	Width      int
	Height     int

	// nm per pixel
	ScaleX           float64
	ScaleY           float64
	IsEstimatedScale bool

	// Raw layer with a single file, which gets copied instead of stitched
	SingleFile string
	// Raw layer file names, sorted
	RawTiles []string
}

func (l ResolvedLayer) IsSingleFile() bool {
	return len(l.SingleFile) > 0
}

// Layout - where the enumerator should look for this layer's tiles
func (l ResolvedLayer) Layout(fileType string) tiles.Layout {
	if l.IsPyramid {
		return tiles.NewPyramidLayout(l.TileSetDir, l.Levels, fileType)
	}
	return tiles.NewRawLayout(l.LayerDir, l.RawTiles)
}

type Resolver struct {
	FS     FileSystem
	Config config.MosaicConfig
	Log    logger.ILogger
}

// Resolve - only reads the file system, so resolving the same record twice gives the same result
func (r Resolver) Resolve(projectRoot string, record mapsproject.LayerRecord) (ResolvedLayer, error) {
	result := ResolvedLayer{
		Name:     record.Name,
		OutputID: record.OutputID,
		LayerDir: filepath.Join(projectRoot, record.RelativeDir()),
	}

	if !r.FS.IsDirectory(result.LayerDir, "") {
		r.Log.Debugf(" folder \"%v\" not found", result.LayerDir)
		return result, LayerNotFoundError{Name: record.OutputID, Dir: result.LayerDir}
	}

	files, dirs, err := r.FS.ListDirectory(result.LayerDir, "")
	if err != nil {
		return result, errors.Wrapf(err, "failed to list layer directory %v", result.LayerDir)
	}

	result.TileSetDir = filepath.Join(result.LayerDir, r.tileSetSubdir(dirs))

	indexPath := filepath.Join(result.TileSetDir, filepath.FromSlash(pyramid.IndexFileName))
	hasIndex, err := r.FS.ObjectExists(indexPath, "")
	if err != nil {
		return result, errors.Wrapf(err, "failed to check for %v", indexPath)
	}

	if hasIndex {
		r.Log.Infof(" found stitched layer!")
		err = r.readPyramid(indexPath, r.Config.NavCamScaleNm, &result)
		return result, err
	}

	r.Log.Infof(" found unstitched Tile Set")
	r.Log.Debugf(" Searched for pyramid.xml in: \"%v\"", indexPath)
	err = r.readRawTiles(files, &result)
	return result, err
}

// ResolveSingleDataSet - dataSetDir is the tile set directory itself (the "(stitched)" folder picked by the
// operator), its parent is the layer. Without a pixel size we use ManualScaleNm if configured
func (r Resolver) ResolveSingleDataSet(dataSetDir string) (ResolvedLayer, error) {
	dataSetDir = filepath.Clean(dataSetDir)
	layerDir := filepath.Dir(dataSetDir)
	title := filepath.Base(layerDir)

	result := ResolvedLayer{
		Name:       title,
		OutputID:   title,
		LayerDir:   layerDir,
		TileSetDir: dataSetDir,
	}

	r.Log.Debugf("%v |tile set dir: %v |title: %v", layerDir, filepath.Base(dataSetDir), title)

	indexPath := filepath.Join(dataSetDir, filepath.FromSlash(pyramid.IndexFileName))
	hasIndex, err := r.FS.ObjectExists(indexPath, "")
	if err != nil {
		return result, errors.Wrapf(err, "failed to check for %v", indexPath)
	}
	if !hasIndex {
		return result, LayerNotFoundError{Name: title, Dir: indexPath}
	}

	r.Log.Infof(" found stitched layer!")

	fallbackScale := r.Config.NavCamScaleNm
	if r.Config.ManualScaleNm > 0 {
		fallbackScale = r.Config.ManualScaleNm
	}
	err = r.readPyramid(indexPath, fallbackScale, &result)
	return result, err
}

// CopySingleFile - the single file shortcut: the file goes to the project root as-is
func (r Resolver) CopySingleFile(projectRoot string, layer ResolvedLayer) (string, error) {
	if !layer.IsSingleFile() {
		return "", errors.Errorf("layer \"%v\" is not a single file layer", layer.OutputID)
	}

	src := filepath.Join(layer.LayerDir, layer.SingleFile)
	dst := filepath.Join(projectRoot, layer.SingleFile)
	r.Log.Infof("  copying %v to %v", src, dst)

	err := r.FS.CopyObject(layer.LayerDir, layer.SingleFile, projectRoot, layer.SingleFile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to copy %v", src)
	}
	return dst, nil
}

// First subdirectory (sorted) that isn't reserved for something else
func (r Resolver) tileSetSubdir(dirs []string) string {
	for _, d := range dirs {
		if !utils.ItemInSlice(d, r.Config.ReservedDirNames) {
			return d
		}
	}
	return DefaultTileSetDir
}

func (r Resolver) readPyramid(indexPath string, fallbackScaleNm float64, result *ResolvedLayer) error {
	idx, err := pyramid.ReadIndex(indexPath)
	if err != nil {
		return err
	}

	result.IsPyramid = true
	result.Levels = idx.Levels
	result.Width = idx.Width
	result.Height = idx.Height
	result.GridWidth = idx.GridWidth()
	result.GridHeight = idx.GridHeight()

	r.Log.Infof("  layer count: %v", result.Levels)
	r.Log.Infof("  image size : %v x %v px (Grid: %v x %v)", result.Width, result.Height, result.GridWidth, result.GridHeight)

	if idx.HasPixelSize {
		result.ScaleX, result.ScaleY = idx.ScaleNm()
		r.Log.Infof("  Scale      : %v nm per pixel", result.ScaleX)
	} else {
		r.Log.Infof("  probably a NavCam Image!")
		result.ScaleX = fallbackScaleNm
		result.ScaleY = fallbackScaleNm
		result.IsEstimatedScale = true
		r.Log.Infof("  Estimated scale as: %v nm per pixel", fallbackScaleNm)
	}
	return nil
}

func (r Resolver) readRawTiles(files []string, result *ResolvedLayer) error {
	result.TileSetDir = ""
	result.Levels = 1
	result.RawTiles = files

	r.Log.Infof("  found %v files", len(files))
	r.Log.Debugf("  reading grid from file names, naming contract v%v", tilename.ContractVersion)

	if len(files) == 1 {
		result.SingleFile = files[0]
		return nil
	}

	cols, rows, err := tilename.GridFromListing(result.LayerDir, files)
	if err != nil {
		return err
	}
	result.GridWidth = cols
	result.GridHeight = rows

	// Tile size comes from the first tile whose header we can read, all tiles of a set are the same size
	for _, f := range files {
		w, h, err := imgFormat.ReadTIFFSize(filepath.Join(result.LayerDir, f))
		if err != nil {
			r.Log.Debugf("  skipping %v for tile size: %v", f, err)
			continue
		}

		result.Width = cols * w
		result.Height = rows * h
		result.ScaleX = r.Config.NavCamScaleNm
		result.ScaleY = r.Config.NavCamScaleNm
		result.IsEstimatedScale = true

		r.Log.Infof("  image size : %v x %v px (Grid: %v x %v)", result.Width, result.Height, cols, rows)
		r.Log.Infof("  Estimated scale as: %v nm per pixel", result.ScaleX)
		return nil
	}

	return errors.Errorf("no readable TIFF tile found in %v", result.LayerDir)
}
