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

// Reads the pyramid.xml index that the HD viewer export writes next to an assembled (stitched) layer.
// It describes the multi-resolution tile pyramid: level count, full image size, tile size and,
// for electron images, the physical pixel size in meters.
package pyramid

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"

	"github.com/mapsmosaic/core/core/utils"
	"github.com/pkg/errors"
)

// IndexFileName - where the index lives relative to the tile set directory
const IndexFileName = "data/pyramid.xml"

// MetersToNanometers - pixel sizes are stored in meters, we work in nm per pixel
const MetersToNanometers = 1e9

type Index struct {
	Levels     int
	Width      int
	Height     int
	TileWidth  int
	TileHeight int

	HasPixelSize bool
	PixelSizeX   float64 // meters
	PixelSizeY   float64 // meters
}

type pyramidXML struct {
	ImageSets []imageSetXML `xml:"imageset"`
}

type imageSetXML struct {
	Levels     int           `xml:"levels,attr"`
	Width      int           `xml:"width,attr"`
	Height     int           `xml:"height,attr"`
	TileWidth  int           `xml:"tileWidth,attr"`
	TileHeight int           `xml:"tileHeight,attr"`
	PixelSize  *pixelSizeXML `xml:"pixelsize"`
}

type pixelSizeXML struct {
	X *float64 `xml:"x"`
	Y *float64 `xml:"y"`
}

func ReadIndex(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Index{}, errors.Wrapf(err, "failed to read pyramid index")
	}

	idx, err := ParseIndex(data)
	if err != nil {
		return idx, errors.Wrapf(err, "pyramid index \"%v\"", path)
	}
	return idx, nil
}

// ParseIndex - only the first imageset is used, Maps only ever writes one
func ParseIndex(data []byte) (Index, error) {
	doc := pyramidXML{}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Index{}, errors.Wrap(err, "failed to parse XML")
	}

	if len(doc.ImageSets) <= 0 {
		return Index{}, errors.New("no imageset element found")
	}

	set := doc.ImageSets[0]
	if set.TileWidth <= 0 || set.TileHeight <= 0 {
		return Index{}, fmt.Errorf("invalid tile size %vx%v", set.TileWidth, set.TileHeight)
	}
	if set.Levels <= 0 {
		return Index{}, fmt.Errorf("invalid level count %v", set.Levels)
	}

	idx := Index{
		Levels:     set.Levels,
		Width:      set.Width,
		Height:     set.Height,
		TileWidth:  set.TileWidth,
		TileHeight: set.TileHeight,
	}

	if set.PixelSize != nil && set.PixelSize.X != nil {
		idx.HasPixelSize = true
		idx.PixelSizeX = *set.PixelSize.X
		idx.PixelSizeY = *set.PixelSize.X
		if set.PixelSize.Y != nil {
			idx.PixelSizeY = *set.PixelSize.Y
		}
	}

	return idx, nil
}

// GridWidth - tile columns of the full resolution level
func (i Index) GridWidth() int {
	return gridCount(i.Width, i.TileWidth)
}

// GridHeight - tile rows of the full resolution level
func (i Index) GridHeight() int {
	return gridCount(i.Height, i.TileHeight)
}

// ScaleNm - nm per pixel in x and y. Only meaningful if HasPixelSize
func (i Index) ScaleNm() (float64, float64) {
	return i.PixelSizeX * MetersToNanometers, i.PixelSizeY * MetersToNanometers
}

// Rounds half to even, matching what the HD viewer export does when laying out the last partial tile
func gridCount(imageSize int, tileSize int) int {
	if imageSize <= 0 || tileSize <= 0 {
		return 0
	}
	return utils.MaxOf(int(math.RoundToEven(float64(imageSize)/float64(tileSize))), 1)
}
