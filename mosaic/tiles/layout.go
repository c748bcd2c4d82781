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

package tiles

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mapsmosaic/core/core/tilename"
)

// Layout - where a tile for a given 0-based (col, row) should live on disk
type Layout interface {
	// Root - directory that must exist for the layer to have any tiles
	Root() string
	// ColumnDir - directory holding the tiles of one column
	ColumnDir(col int) string
	// TileName - file name of the tile inside its column directory
	TileName(col int, row int) string
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Assembled pyramid: <tileSetDir>/data/l_<levels-1>/c_<col>/tile_<row>.tif
// The highest level holds the full resolution tiles

type PyramidLayout struct {
	TileSetDir string
	Levels     int
	FileType   string
}

func NewPyramidLayout(tileSetDir string, levels int, fileType string) PyramidLayout {
	if len(fileType) <= 0 {
		fileType = ".tif"
	}
	return PyramidLayout{TileSetDir: tileSetDir, Levels: levels, FileType: fileType}
}

func (l PyramidLayout) Root() string {
	return filepath.Join(l.TileSetDir, "data", fmt.Sprintf("l_%v", l.Levels-1))
}

func (l PyramidLayout) ColumnDir(col int) string {
	return filepath.Join(l.Root(), fmt.Sprintf("c_%v", col))
}

func (l PyramidLayout) TileName(col int, row int) string {
	return fmt.Sprintf("tile_%v%v", row, l.FileType)
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Raw tiles straight from the microscope, all in one directory, named by the tilename contract.
// Positions in names are 1-based

type RawLayout struct {
	Dir   string
	names map[tilename.GridPosition]string

	// Used to make up names for tiles that aren't there, so the missing tile report is readable
	prefix   string
	padWidth int
	ext      string
}

// NewRawLayout - files are the names in dir. Ones not following the naming contract are ignored
func NewRawLayout(dir string, files []string) RawLayout {
	result := RawLayout{Dir: dir, names: map[tilename.GridPosition]string{}, prefix: "tile", padWidth: 1}

	sorted := append([]string{}, files...)
	sort.Strings(sorted)

	first := true
	for _, name := range sorted {
		pos, err := tilename.Parse(name)
		if err != nil {
			continue
		}
		result.names[pos] = name

		if first {
			first = false
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			fields := strings.Split(stem, tilename.FieldSeparator)
			result.prefix = fields[0]
			result.padWidth = strings.Index(fields[1], tilename.PositionSeparator)
			result.ext = filepath.Ext(name)
		}
	}
	return result
}

func (l RawLayout) Root() string {
	return l.Dir
}

func (l RawLayout) ColumnDir(col int) string {
	return l.Dir
}

func (l RawLayout) TileName(col int, row int) string {
	pos := tilename.GridPosition{Col: col + 1, Row: row + 1}
	if name, ok := l.names[pos]; ok {
		return name
	}
	return tilename.Format(l.prefix, pos, l.padWidth, l.ext)
}
