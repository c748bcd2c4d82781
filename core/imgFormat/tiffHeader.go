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

// Lightweight probing of tile image files, only headers are decoded
package imgFormat

import (
	"image"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"
)

// ReadTIFFSize - pixel width/height of a TIFF without decoding its pixel data
func ReadTIFFSize(path string) (int, int, error) {
	cfg, err := readTIFFConfig(path)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func readTIFFConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	cfg, err := tiff.DecodeConfig(f)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read TIFF header of %v", path)
	}
	return cfg, nil
}
