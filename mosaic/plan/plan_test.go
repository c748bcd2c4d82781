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

package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/mapsmosaic/core/core/awsutil"
	"github.com/mapsmosaic/core/core/fileaccess"
	"github.com/mapsmosaic/core/core/logger"
	"github.com/mapsmosaic/core/mosaic/budget"
	"github.com/mapsmosaic/core/mosaic/config"
	"github.com/mapsmosaic/core/mosaic/layer"
	"github.com/mapsmosaic/core/mosaic/tiles"
	"github.com/stretchr/testify/require"
)

func testPlan(outputDir string) (MosaicPlan, bool) {
	resolved := layer.ResolvedLayer{
		Name:      "SEM 1",
		OutputID:  "Layer-SEM 1",
		LayerDir:  "/maps/Project/LayersData/Layer/SEM 1",
		IsPyramid: true,
	}
	ts := tiles.TileSet{
		Paths:        []string{"/maps/Project/LayersData/Layer/SEM 1/0/data/l_0/c_0/tile_0.tif", tiles.MissingTile},
		GridWidth:    1,
		GridHeight:   2,
		MissingCount: 1,
	}
	scale := budget.ScalePlan{ScaleFactor: 0.5, ScaleX: 25, ScaleY: 25, CropWidth: 500, CropHeight: 1000}

	return Build(resolved, ts, scale, outputDir, config.Default())
}

func Example_build_emptyTileSet() {
	_, ok := Build(layer.ResolvedLayer{OutputID: "Layer-Gone"}, tiles.TileSet{GridWidth: 3, GridHeight: 3}, budget.ScalePlan{ScaleFactor: 1}, "/maps", config.Default())
	fmt.Println(ok)

	// Output:
	// false
}

func Example_settings() {
	p, ok := testPlan("/maps/Project")
	fmt.Println(ok)

	b, err := json.MarshalIndent(p.Settings(), "", "  ")
	fmt.Printf("%v|%v\n", err, string(b))

	// Output:
	// true
	// <nil>|{
	//   "workingDirectory": "/maps/Project/LayersData/Layer/SEM 1",
	//   "outputDirectory": "/maps/Project",
	//   "fileType": ".tif",
	//   "col_count": 1,
	//   "row_count": 2,
	//   "scaleX": 25,
	//   "scaleY": 25,
	//   "scaleUnit": "nm",
	//   "scaleFactor": 0.5,
	//   "tile_count": 2,
	//   "imageDirection": "v",
	//   "createThumbnail": true,
	//   "showDebuggingOutput": false,
	//   "cropX": 500,
	//   "cropY": 1000
	// }
}

func Example_requestFileName() {
	fmt.Println(RequestFileName("Layer-SEM 1"))
	fmt.Println(RequestFileName("Detail-Site: 2?"))

	// Output:
	// Layer-SEM 1-stitch-request.json
	// Detail-Site_ 2-stitch-request.json
}

func Example_requestFileStitcher_local() {
	dir, err := os.MkdirTemp("", "stitch")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	p, _ := testPlan(dir)
	log := &logger.StdOutLoggerForTest{}
	s := RequestFileStitcher{FS: &fileaccess.FSAccess{}, PostProcess: &PostProcessOptions{RunImageJ: true}, Log: log}

	fmt.Println(p.Submit(s))

	data, err := os.ReadFile(filepath.Join(dir, "Layer-SEM 1-stitch-request.json"))
	fmt.Println(err)

	req := StitchRequest{}
	fmt.Println(json.Unmarshal(data, &req))
	fmt.Println(req.ResultFileName, req.Tiles[1], req.Settings.TileCount, req.Settings.OutputDirectory == dir)
	fmt.Printf("%+v\n", *req.PostProcess)
	fmt.Println(log.LogContains("wrote stitch request"))

	// Output:
	// <nil>
	// <nil>
	// <nil>
	// Layer-SEM 1 EMPTY 2 true
	// {RunImageJ:true RemoveCurtaining:false}
	// true
}

func Example_requestFileStitcher_s3() {
	var mockS3 awsutil.MockS3Client
	defer mockS3.FinishTest()

	mockS3.ExpPutObjectInput = []s3.PutObjectInput{
		{
			Bucket: aws.String("stitch-requests"), Key: aws.String("Layer-SEM 1-stitch-request.json"),
			Body: bytes.NewReader([]byte(`{
    "settings": {
        "workingDirectory": "/maps/Project/LayersData/Layer/SEM 1",
        "outputDirectory": "/maps/Project",
        "fileType": ".tif",
        "col_count": 1,
        "row_count": 2,
        "scaleX": 25,
        "scaleY": 25,
        "scaleUnit": "nm",
        "scaleFactor": 0.5,
        "tile_count": 2,
        "imageDirection": "v",
        "createThumbnail": true,
        "showDebuggingOutput": false,
        "cropX": 500,
        "cropY": 1000
    },
    "tiles": [
        "/maps/Project/LayersData/Layer/SEM 1/0/data/l_0/c_0/tile_0.tif",
        "EMPTY"
    ],
    "resultFileName": "Layer-SEM 1"
}`)),
		},
	}
	mockS3.QueuedPutObjectOutput = []*s3.PutObjectOutput{
		{},
	}

	p, _ := testPlan("/maps/Project")
	log := &logger.StdOutLoggerForTest{}
	s := RequestFileStitcher{FS: fileaccess.MakeS3Access(&mockS3), Bucket: "stitch-requests", Log: log}

	fmt.Println(p.Submit(s))
	fmt.Println(log.LogContains("s3://stitch-requests/Layer-SEM 1-stitch-request.json"))

	// Output:
	// <nil>
	// true
}

func Test_StitchCommand(t *testing.T) {
	truePath, err := exec.LookPath("true")
	if err != nil {
		t.Skip("no true command on this system")
	}
	falsePath, err := exec.LookPath("false")
	if err != nil {
		t.Skip("no false command on this system")
	}

	dir := t.TempDir()
	p, ok := testPlan(dir)
	require.True(t, ok)

	s := RequestFileStitcher{FS: &fileaccess.FSAccess{}, Command: truePath, Log: &logger.NullLogger{}}
	require.NoError(t, p.Submit(s))

	s.Command = falsePath
	err = p.Submit(s)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stitch command failed for Layer-SEM 1")

	// Request file still written even though the command failed
	_, err = os.Stat(filepath.Join(dir, RequestFileName("Layer-SEM 1")))
	require.NoError(t, err)
}
