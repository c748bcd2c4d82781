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
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mapsmosaic/core/core/fileaccess"
	"github.com/mapsmosaic/core/core/logger"
	"github.com/pkg/errors"
)

// RequestFileSuffix - appended to the output id to name the request file
const RequestFileSuffix = "-stitch-request.json"

// Stitcher - the external stitching engine. Tiles are in stitching order, missing ones are tiles.MissingTile
type Stitcher interface {
	StitchImages(settings StitchSettings, tiles []string, resultFileName string) error
}

// PostProcessOptions - what ImageJ should do with the stitched image afterwards
type PostProcessOptions struct {
	RunImageJ        bool `json:"runImageJ"`
	RemoveCurtaining bool `json:"removeCurtaining"`
}

// StitchRequest - what goes into a request file
type StitchRequest struct {
	Settings       StitchSettings      `json:"settings"`
	Tiles          []string            `json:"tiles"`
	ResultFileName string              `json:"resultFileName"`
	PostProcess    *PostProcessOptions `json:"postProcess,omitempty"`
}

// RequestFileStitcher writes each request out as JSON for the stitching engine to pick up, and can start the
// engine on it straight away if we're given a command to run
type RequestFileStitcher struct {
	FS fileaccess.FileAccess

	// If empty, requests go in the output directory of the request. Otherwise this is the S3 bucket
	Bucket string

	// Run with the request file location as its only argument. Empty = just write the file
	Command string

	// Passed along in the request if set
	PostProcess *PostProcessOptions

	Log logger.ILogger
}

// RequestFileName - file name (and S3 key) of the request for a result
func RequestFileName(resultFileName string) string {
	return fileaccess.MakeValidObjectName(resultFileName) + RequestFileSuffix
}

func (s RequestFileStitcher) StitchImages(settings StitchSettings, tiles []string, resultFileName string) error {
	req := StitchRequest{Settings: settings, Tiles: tiles, ResultFileName: resultFileName, PostProcess: s.PostProcess}

	root := s.Bucket
	if len(root) <= 0 {
		root = settings.OutputDirectory
	}
	name := RequestFileName(resultFileName)

	err := s.FS.WriteJSON(root, name, &req)
	if err != nil {
		return errors.Wrapf(err, "failed to write stitch request for %v", resultFileName)
	}

	location := s.requestLocation(root, name)
	s.Log.Infof("  wrote stitch request: %v", location)

	if len(s.Command) <= 0 {
		return nil
	}

	s.Log.Infof("  running: %v \"%v\"", s.Command, location)
	out, err := exec.Command(s.Command, location).CombinedOutput()
	if len(out) > 0 {
		s.Log.Debugf("%v", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return errors.Wrapf(err, "stitch command failed for %v", resultFileName)
	}
	return nil
}

func (s RequestFileStitcher) requestLocation(root string, name string) string {
	if len(s.Bucket) > 0 {
		return fmt.Sprintf("s3://%v/%v", s.Bucket, name)
	}
	return filepath.Join(root, name)
}
