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

// Builds the ordered list of tile paths the stitcher expects for a layer, putting a placeholder where a tile is missing
package tiles

import (
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mapsmosaic/core/core/logger"
)

// MissingTile - placeholder the stitcher understands as "no tile here"
const MissingTile = "EMPTY"

// Max file names listed in a missing tile report
const MaxReportedMissing = 3

// TruncationMarker - last line of a missing tile report that didn't list everything
const TruncationMarker = "..."

// DirectoryLister - the bits of the file system we need. Implemented by fileaccess.FSAccess
type DirectoryLister interface {
	ListDirectory(rootPath string, dir string) ([]string, []string, error)
	IsDirectory(rootPath string, dir string) bool
}

// TileSet - one slot per grid position, columns outer, rows inner
type TileSet struct {
	Paths        []string
	GridWidth    int
	GridHeight   int
	MissingCount int
}

func (t TileSet) IsEmpty() bool {
	return len(t.Paths) <= 0
}

type MissingTileReport struct {
	Count int
	names []string
}

func (r *MissingTileReport) add(name string) {
	r.Count++
	if len(r.names) >= MaxReportedMissing {
		return
	}
	for _, n := range r.names {
		if n == name {
			return
		}
	}
	r.names = append(r.names, name)
}

// Lines - the first few missing names, with a marker if there were more
func (r MissingTileReport) Lines() []string {
	result := append([]string{}, r.names...)
	if r.Count > len(r.names) {
		result = append(result, TruncationMarker)
	}
	return result
}

type Enumerator struct {
	fs  DirectoryLister
	log logger.ILogger

	// Column dir -> names of files in it. Raw layouts have every tile in one dir, so
	// this saves listing it once per tile
	listings *lru.Cache[string, map[string]bool]
}

func NewEnumerator(fs DirectoryLister, cacheSize int, log logger.ILogger) (*Enumerator, error) {
	cache, err := lru.New[string, map[string]bool](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Enumerator{fs: fs, log: log, listings: cache}, nil
}

// Enumerate - never fails on missing tiles. If the layout root doesn't exist at all, returns an empty TileSet
func (e *Enumerator) Enumerate(layout Layout, gridWidth int, gridHeight int) (TileSet, MissingTileReport) {
	report := MissingTileReport{}
	result := TileSet{GridWidth: gridWidth, GridHeight: gridHeight}

	if !e.fs.IsDirectory(layout.Root(), "") {
		e.log.Errorf("  tile directory %v not found", layout.Root())
		return result, report
	}

	result.Paths = make([]string, 0, gridWidth*gridHeight)
	for col := 0; col < gridWidth; col++ {
		dir := layout.ColumnDir(col)
		present := e.listing(dir)

		for row := 0; row < gridHeight; row++ {
			name := layout.TileName(col, row)
			if present[name] {
				result.Paths = append(result.Paths, filepath.Join(dir, name))
			} else {
				result.Paths = append(result.Paths, MissingTile)
				report.add(name)
			}
		}
	}

	result.MissingCount = report.Count
	if report.Count > 0 {
		e.log.Infof("  %v tile(s) missing:", report.Count)
		for _, line := range report.Lines() {
			e.log.Infof("    %v", line)
		}
	}

	return result, report
}

func (e *Enumerator) listing(dir string) map[string]bool {
	if names, ok := e.listings.Get(dir); ok {
		return names
	}

	names := map[string]bool{}
	files, _, err := e.fs.ListDirectory(dir, "")
	if err != nil {
		// Whole column missing, every tile in it gets reported
		e.log.Debugf("  failed to list %v: %v", dir, err)
	}
	for _, f := range files {
		names[f] = true
	}

	e.listings.Add(dir, names)
	return names
}
