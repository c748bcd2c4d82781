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

// Works out how much a mosaic has to be downscaled so the stitched image stays under the pixel budget
// of the stitching engine, and what that does to the physical scale of the output.
package budget

import (
	"fmt"
	"math"

	"github.com/mapsmosaic/core/core/logger"
	"github.com/mapsmosaic/core/core/utils"
	"github.com/mapsmosaic/core/mosaic/config"
)

// ScaleFactorDecimals - the shrunk scale factor is rounded to this many decimals
const ScaleFactorDecimals = 3

// Smallest scale factor representable after rounding
const minScaleFactor = 0.001

// Absorbs float error in width*scaleFactor, eg 50000*0.894 must give 44700 not 44699
const cropEpsilon = 1e-9

// InvalidDimensionsError - image size can't be used for planning. Fatal for that layer only
type InvalidDimensionsError struct {
	Width  int
	Height int
}

func (e InvalidDimensionsError) Error() string {
	return fmt.Sprintf("invalid image dimensions %vx%v", e.Width, e.Height)
}

type ScalePlan struct {
	// Effective scale factor handed to the stitcher
	ScaleFactor float64

	// nm per pixel
	ScaleX float64
	ScaleY float64

	// Output image size in pixels
	CropWidth  int
	CropHeight int

	// Pixel count at the effective scale factor
	Area float64

	// Scale factor was reduced proportionally to fit the budget
	Shrunk bool
	// Rounding left us over budget, so the scale factor was halved as well
	Halved bool
}

// Plan - keeps width*height*scaleFactor² under cfg.PixelBudget. First tries cfg.ScaleFactor, then a proportional
// shrink rounded to 3 decimals, and if rounding pushed it back over the budget, half of that
func Plan(width int, height int, scaleX float64, scaleY float64, cfg config.MosaicConfig, log logger.ILogger) (ScalePlan, error) {
	if width <= 0 || height <= 0 {
		return ScalePlan{}, InvalidDimensionsError{Width: width, Height: height}
	}

	pixels := float64(width) * float64(height)
	scaleFactor := cfg.ScaleFactor
	area := pixels * scaleFactor * scaleFactor

	result := ScalePlan{ScaleX: scaleX, ScaleY: scaleY}

	if area > cfg.PixelBudget {
		scaleFactor = utils.RoundToDecimals(math.Sqrt(cfg.PixelBudget/pixels), ScaleFactorDecimals)
		if scaleFactor < minScaleFactor {
			scaleFactor = minScaleFactor
		}
		area = pixels * scaleFactor * scaleFactor
		result.Shrunk = true
		log.Infof("  changed scale factor to %v", scaleFactor)
	}

	if area > cfg.PixelBudget {
		log.Infof("  image is exceeding %v Gigapixel (%.2f GP) and therefore is too large for ImageJ", cfg.PixelBudget/config.GigaPixel, area/config.GigaPixel)

		scaleFactor = 0.5 * scaleFactor
		result.Halved = true
		result.ScaleX = scaleX / scaleFactor
		result.ScaleY = scaleY / scaleFactor
		area = pixels * scaleFactor * scaleFactor

		log.Infof("    - scaling with factor %.4f to %.2f GP", scaleFactor, area/config.GigaPixel)
		log.Infof("    - changed scale from %.2f to %.2f nm per Pixel!", scaleX, result.ScaleX)
	}

	result.ScaleFactor = scaleFactor
	result.Area = area
	result.CropWidth = int(math.Floor(float64(width)*scaleFactor + cropEpsilon))
	result.CropHeight = int(math.Floor(float64(height)*scaleFactor + cropEpsilon))

	return result, nil
}
