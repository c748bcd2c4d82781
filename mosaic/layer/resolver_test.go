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

package layer

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mapsmosaic/core/core/fileaccess"
	"github.com/mapsmosaic/core/core/logger"
	"github.com/mapsmosaic/core/core/mapsproject"
	"github.com/mapsmosaic/core/core/tilename"
	"github.com/mapsmosaic/core/core/utils"
	"github.com/mapsmosaic/core/mosaic/config"
	"golang.org/x/image/tiff"
)

const semPyramid = `<?xml version="1.0" encoding="utf-8"?>
<root>
  <imageset url="l_" levels="3" width="2560" height="1500" tileWidth="1024" tileHeight="1024" fileType="tif">
    <pixelsize>
      <x>2.5E-08</x>
      <y>2.5E-08</y>
    </pixelsize>
  </imageset>
</root>`

const navCamPyramid = `<?xml version="1.0" encoding="utf-8"?>
<root>
  <imageset url="l_" levels="1" width="470" height="470" tileWidth="512" tileHeight="512" fileType="tif" />
</root>`

func writeFile(path string, data []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, data, 0666); err != nil {
		panic(err)
	}
}

func writeTIFF(path string, w int, h int) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	if err := tiff.Encode(f, image.NewGray(image.Rect(0, 0, w, h)), nil); err != nil {
		panic(err)
	}
}

// Builds a project tree:
//
//	LayersData/Layer/SEM 1/histograms/           reserved, skipped
//	LayersData/Layer/SEM 1/1/data/pyramid.xml    with pixel size
//	LayersData/Layer/NavCam 1/0/data/pyramid.xml no pixel size
//	LayersData/Layer/Tile Set 1/Tile_<c>-<r>_0.tif  raw 4x3 grid of 32x16 tiles
//	LayersData/Detail/Site 2/Site 2.tif          single file
//	LayersData/Detail/Empty/                     no files at all
func makeProject() string {
	root, err := os.MkdirTemp("", "mapsproject")
	if err != nil {
		panic(err)
	}

	sem := filepath.Join(root, "LayersData", "Layer", "SEM 1")
	if err := os.MkdirAll(filepath.Join(sem, "histograms"), 0777); err != nil {
		panic(err)
	}
	writeFile(filepath.Join(sem, "1", "data", "pyramid.xml"), []byte(semPyramid))
	writeFile(filepath.Join(root, "LayersData", "Layer", "NavCam 1", "0", "data", "pyramid.xml"), []byte(navCamPyramid))

	raw := filepath.Join(root, "LayersData", "Layer", "Tile Set 1")
	if err := os.MkdirAll(raw, 0777); err != nil {
		panic(err)
	}
	for c := 1; c <= 4; c++ {
		for r := 1; r <= 3; r++ {
			writeTIFF(filepath.Join(raw, tilename.Format("Tile", tilename.GridPosition{Col: c, Row: r}, 3, "_0.tif")), 32, 16)
		}
	}

	writeFile(filepath.Join(root, "LayersData", "Detail", "Site 2", "Site 2.tif"), []byte("not really a tiff"))
	if err := os.MkdirAll(filepath.Join(root, "LayersData", "Detail", "Empty"), 0777); err != nil {
		panic(err)
	}

	return root
}

func record(storagePath string) mapsproject.LayerRecord {
	name := filepath.Base(storagePath)
	group := filepath.Base(filepath.Dir(storagePath))
	return mapsproject.LayerRecord{Name: name, StoragePath: storagePath, OutputID: group + "-" + name}
}

func makeResolver() Resolver {
	return Resolver{FS: &fileaccess.FSAccess{}, Config: config.Default(), Log: &logger.NullLogger{}}
}

func rel(root string, path string) string {
	if len(path) <= 0 {
		return ""
	}
	r, _ := filepath.Rel(root, path)
	return filepath.ToSlash(r)
}

func Example_resolve_pyramid() {
	root := makeProject()
	defer os.RemoveAll(root)

	l, err := makeResolver().Resolve(root, record("LayersData/Layer/SEM 1"))
	fmt.Printf("%v|%v|%v|%v\n", err, l.OutputID, rel(root, l.LayerDir), rel(root, l.TileSetDir))
	fmt.Printf("pyramid=%v levels=%v grid=%vx%v image=%vx%v\n", l.IsPyramid, l.Levels, l.GridWidth, l.GridHeight, l.Width, l.Height)
	fmt.Printf("scale=%.3f,%.3f estimated=%v single=%v\n", l.ScaleX, l.ScaleY, l.IsEstimatedScale, l.IsSingleFile())
	fmt.Println(rel(root, l.Layout(".tif").Root()))

	// Output:
	// <nil>|Layer-SEM 1|LayersData/Layer/SEM 1|LayersData/Layer/SEM 1/1
	// pyramid=true levels=3 grid=2x1 image=2560x1500
	// scale=25.000,25.000 estimated=false single=false
	// LayersData/Layer/SEM 1/1/data/l_2
}

func Example_resolve_navCam() {
	root := makeProject()
	defer os.RemoveAll(root)

	l, err := makeResolver().Resolve(root, record("LayersData/Layer/NavCam 1"))
	fmt.Printf("%v|%v|%v\n", err, rel(root, l.TileSetDir), l.IsPyramid)
	fmt.Printf("grid=%vx%v image=%vx%v scale=%v,%v estimated=%v\n", l.GridWidth, l.GridHeight, l.Width, l.Height, l.ScaleX, l.ScaleY, l.IsEstimatedScale)

	// Output:
	// <nil>|LayersData/Layer/NavCam 1/0|true
	// grid=1x1 image=470x470 scale=53191,53191 estimated=true
}

func Example_resolve_rawTiles() {
	root := makeProject()
	defer os.RemoveAll(root)

	l, err := makeResolver().Resolve(root, record("LayersData/Layer/Tile Set 1"))
	fmt.Printf("%v|pyramid=%v levels=%v files=%v\n", err, l.IsPyramid, l.Levels, len(l.RawTiles))
	fmt.Printf("grid=%vx%v image=%vx%v scale=%v estimated=%v\n", l.GridWidth, l.GridHeight, l.Width, l.Height, l.ScaleX, l.IsEstimatedScale)
	fmt.Println(rel(root, l.Layout(".tif").Root()), l.Layout(".tif").TileName(3, 2))

	// Output:
	// <nil>|pyramid=false levels=1 files=12
	// grid=4x3 image=128x48 scale=53191 estimated=true
	// LayersData/Layer/Tile Set 1 Tile_004-003_0.tif
}

func Example_resolve_singleFile() {
	root := makeProject()
	defer os.RemoveAll(root)

	r := makeResolver()
	l, err := r.Resolve(root, record("LayersData/Detail/Site 2"))
	fmt.Printf("%v|%v|%v\n", err, l.IsSingleFile(), l.SingleFile)

	dst, err := r.CopySingleFile(root, l)
	fmt.Printf("%v|%v\n", err, rel(root, dst))

	fmt.Println(utils.FilesEqual(filepath.Join(l.LayerDir, "Site 2.tif"), dst))

	// Output:
	// <nil>|true|Site 2.tif
	// <nil>|Site 2.tif
	// <nil>
}

func Example_resolve_errors() {
	root := makeProject()
	defer os.RemoveAll(root)

	r := makeResolver()

	_, err := r.Resolve(root, record("LayersData/Layer/Not There"))
	var notFound LayerNotFoundError
	fmt.Println(errors.As(err, &notFound), notFound.Name)

	_, err = r.Resolve(root, record("LayersData/Detail/Empty"))
	var gridErr tilename.UndeterminedGridError
	fmt.Println(errors.As(err, &gridErr), gridErr.Reason)

	l, _ := r.Resolve(root, record("LayersData/Layer/SEM 1"))
	_, err = r.CopySingleFile(root, l)
	fmt.Println(err)

	// Output:
	// true Layer-Not There
	// true found 0 files, need at least 2
	// layer "Layer-SEM 1" is not a single file layer
}

func Example_resolveSingleDataSet() {
	root := makeProject()
	defer os.RemoveAll(root)

	r := makeResolver()
	l, err := r.ResolveSingleDataSet(filepath.Join(root, "LayersData", "Layer", "SEM 1", "1"))
	fmt.Printf("%v|%v|%v|%v|%.3f\n", err, l.OutputID, rel(root, l.LayerDir), rel(root, l.TileSetDir), l.ScaleX)

	// No pixel size, operator supplied scale
	r.Config.ManualScaleNm = 12.5
	l, err = r.ResolveSingleDataSet(filepath.Join(root, "LayersData", "Layer", "NavCam 1", "0"))
	fmt.Printf("%v|%v|%v|%v\n", err, l.OutputID, l.ScaleX, l.IsEstimatedScale)

	// Not a tile set dir
	_, err = r.ResolveSingleDataSet(filepath.Join(root, "LayersData", "Layer"))
	var notFound LayerNotFoundError
	fmt.Println(errors.As(err, &notFound))

	// Output:
	// <nil>|SEM 1|LayersData/Layer/SEM 1|LayersData/Layer/SEM 1/1|25.000
	// <nil>|NavCam 1|12.5|true
	// true
}

func Test_ResolveIsIdempotent(t *testing.T) {
	root := makeProject()
	defer os.RemoveAll(root)

	r := makeResolver()
	for _, path := range []string{"LayersData/Layer/SEM 1", "LayersData/Layer/NavCam 1", "LayersData/Layer/Tile Set 1", "LayersData/Detail/Site 2"} {
		first, err := r.Resolve(root, record(path))
		if err != nil {
			t.Fatalf("%v: %v", path, err)
		}
		second, err := r.Resolve(root, record(path))
		if err != nil {
			t.Fatalf("%v: %v", path, err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%v resolved differently (-first +second):\n%v", path, diff)
		}
	}
}

func Test_RawTilesWithoutReadableHeader(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "LayersData", "Layer", "Broken")
	writeFile(filepath.Join(dir, "Tile_001-001.tif"), []byte("x"))
	writeFile(filepath.Join(dir, "Tile_002-002.tif"), []byte("y"))

	l, err := makeResolver().Resolve(root, record("LayersData/Layer/Broken"))
	if err == nil {
		t.Fatal("expected error")
	}
	if l.GridWidth != 2 || l.GridHeight != 2 {
		t.Errorf("grid %vx%v", l.GridWidth, l.GridHeight)
	}
}
