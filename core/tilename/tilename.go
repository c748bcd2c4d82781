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

// File name parser and writer for raw (unstitched) tile exports. Version 1 of the naming contract:
//
//	<prefix>_<col>-<row>[_<anything>].<ext>
//
// Fields are separated by '_'. Field 1 holds the 1-based tile column and row separated by '-'. The
// numbers are zero padded to a common width so that sorting file names also sorts by column then row,
// which means the lexicographically last tile of a complete export sits in the last column and last row.
package tilename

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ContractVersion - bump if the acquisition software changes its raw tile naming
const ContractVersion = 1

const FieldSeparator = "_"
const PositionSeparator = "-"

var positionField = regexp.MustCompile(`^([0-9]+)-([0-9]+)$`)

// UndeterminedGridError - a raw tile directory where we can't work out the grid from file names
type UndeterminedGridError struct {
	Dir      string
	FileName string
	Reason   string
}

func (e UndeterminedGridError) Error() string {
	if len(e.FileName) > 0 {
		return fmt.Sprintf("cannot determine tile grid from \"%v\": %v", e.FileName, e.Reason)
	}
	return fmt.Sprintf("cannot determine tile grid in \"%v\": %v", e.Dir, e.Reason)
}

// GridPosition - 1-based column/row of a tile
type GridPosition struct {
	Col int
	Row int
}

// Parse - reads the grid position out of a raw tile file name (directory part is ignored)
func Parse(fileName string) (GridPosition, error) {
	name := filepath.Base(fileName)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	fields := strings.Split(stem, FieldSeparator)
	if len(fields) < 2 {
		return GridPosition{}, UndeterminedGridError{FileName: name, Reason: "expected <prefix>_<col>-<row>"}
	}

	m := positionField.FindStringSubmatch(fields[1])
	if m == nil {
		return GridPosition{}, UndeterminedGridError{FileName: name, Reason: fmt.Sprintf("field \"%v\" is not <col>-<row>", fields[1])}
	}

	col, errCol := strconv.Atoi(m[1])
	row, errRow := strconv.Atoi(m[2])
	if errCol != nil || errRow != nil || col < 1 || row < 1 {
		return GridPosition{}, UndeterminedGridError{FileName: name, Reason: fmt.Sprintf("field \"%v\" must hold positive numbers", fields[1])}
	}

	return GridPosition{Col: col, Row: row}, nil
}

// GridFromListing - grid size (columns, rows) from the lexicographically last file of a listing
func GridFromListing(dir string, fileNames []string) (int, int, error) {
	if len(fileNames) < 2 {
		return 0, 0, UndeterminedGridError{Dir: dir, Reason: fmt.Sprintf("found %v files, need at least 2", len(fileNames))}
	}

	sorted := append([]string{}, fileNames...)
	sort.Strings(sorted)

	last, err := Parse(sorted[len(sorted)-1])
	if err != nil {
		if gridErr, ok := err.(UndeterminedGridError); ok {
			gridErr.Dir = dir
			return 0, 0, gridErr
		}
		return 0, 0, err
	}

	return last.Col, last.Row, nil
}

// Format - writes a tile name following the contract, eg Format("Tile", {2, 3}, 3, "_0.tif") -> Tile_002-003_0.tif
func Format(prefix string, pos GridPosition, padWidth int, suffix string) string {
	return fmt.Sprintf("%v%v%0*d%v%0*d%v", prefix, FieldSeparator, padWidth, pos.Col, PositionSeparator, padWidth, pos.Row, suffix)
}
