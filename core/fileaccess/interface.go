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

package fileaccess

import "strings"

// Generic interface for reading/writing files. Tile sets are always read from
// the local disk they were exported to, but stitch requests can be written either
// next to the project or to an S3 bucket for a remote stitching engine to pick up,
// so the output side is coded against this interface.

// Besides just needing a path, we may need a drive or bucket at the start of a path.

type FileAccess interface {
	ObjectExists(bucket string, path string) (bool, error)

	ReadObject(bucket string, path string) ([]byte, error)
	WriteObject(bucket string, path string, data []byte) error

	WriteJSON(bucket string, path string, itemsPtr interface{}) error

	CopyObject(srcBucket string, srcPath string, dstBucket string, dstPath string) error

	IsNotFoundError(err error) bool
}

// MakeValidObjectName strips characters that cause trouble in file or S3 key names.
// Layer output identifiers come from user-entered names in the Maps project so may contain anything
func MakeValidObjectName(name string) string {
	name = strings.ReplaceAll(name, "?", "")
	name = strings.ReplaceAll(name, "$", "")
	name = strings.ReplaceAll(name, "#", "")
	name = strings.ReplaceAll(name, "!", "")
	name = strings.ReplaceAll(name, "'", "")
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, ":", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")

	return name
}
