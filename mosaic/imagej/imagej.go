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

// Checks whether Fiji/ImageJ can be started from the command line, which post processing of stitched images needs
package imagej

import (
	"os/exec"
	"runtime"

	"github.com/mapsmosaic/core/core/logger"
)

// ExecutableName - Fiji launcher name on this platform
func ExecutableName() string {
	return executableNameFor(runtime.GOOS)
}

func executableNameFor(goos string) string {
	switch goos {
	case "windows":
		return "ImageJ-win64.exe"
	case "darwin":
		return "ImageJ-macosx"
	}
	return "ImageJ-linux64"
}

// InPath - returns the full path of ImageJ if it's on PATH. Logs a hint for the operator if not
func InPath(log logger.ILogger) (string, bool) {
	path, err := exec.LookPath(ExecutableName())
	if err != nil {
		if runtime.GOOS == "windows" {
			log.Warnf("make sure you have Fiji/ImageJ installed and added the program path to the PATH variable")
		} else {
			log.Warnf("make sure Fiji/ImageJ is accessible from command line")
		}
		return "", false
	}

	log.Debugf("Fiji/ImageJ found: %v", path)
	return path, true
}
