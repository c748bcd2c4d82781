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

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mapsmosaic/core/core/utils"
	"github.com/pkg/errors"
)

// Implementation of file access using local file system. The "bucket" is a root directory
type FSAccess struct {
}

// ListDirectory returns the names of files and of subdirectories directly inside rootPath/dir, each sorted.
// Unlike S3 we can have real directories here, and the tile exports depend on them
func (fs *FSAccess) ListDirectory(rootPath string, dir string) ([]string, []string, error) {
	files := []string{}
	dirs := []string{}

	entries, err := os.ReadDir(fs.filePath(rootPath, dir))
	if err != nil {
		return files, dirs, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}

	sort.Strings(files)
	sort.Strings(dirs)
	return files, dirs, nil
}

func (fs *FSAccess) IsDirectory(rootPath string, dir string) bool {
	info, err := os.Stat(fs.filePath(rootPath, dir))
	return err == nil && info.IsDir()
}

func (fs *FSAccess) ObjectExists(rootPath string, path string) (bool, error) {
	info, err := os.Stat(fs.filePath(rootPath, path))
	if err == nil {
		return !info.IsDir(), nil
	}
	if fs.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (fs *FSAccess) ReadObject(rootPath string, path string) ([]byte, error) {
	fullPath := fs.filePath(rootPath, path)
	return os.ReadFile(fullPath)
}

func (fs *FSAccess) WriteObject(rootPath string, path string, data []byte) error {
	fullPath := fs.filePath(rootPath, path)

	// Ensure any subdirs in between are created
	createPath := filepath.Dir(fullPath)
	err := os.MkdirAll(createPath, 0777)
	if err != nil {
		return err
	}

	// Write the file out, this will create if needed else truncate and write
	return os.WriteFile(fullPath, data, 0666)
}

func (fs *FSAccess) WriteJSON(rootPath string, path string, itemsPtr interface{}) error {
	fileData, err := json.MarshalIndent(itemsPtr, "", utils.PrettyPrintIndentForJSON)
	if err != nil {
		return errors.Wrapf(err, "failed to serialise %v", path)
	}

	return fs.WriteObject(rootPath, path, fileData)
}

func (fs *FSAccess) CopyObject(srcRootPath string, srcPath string, dstRootPath string, dstPath string) error {
	srcFullPath := fs.filePath(srcRootPath, srcPath)

	fin, err := os.Open(srcFullPath)
	if err != nil {
		return err
	}
	defer fin.Close()

	dstFullPath := fs.filePath(dstRootPath, dstPath)
	fout, err := os.Create(dstFullPath)
	if err != nil {
		return err
	}
	defer fout.Close()

	_, err = io.Copy(fout, fin)
	return err
}

func (fs *FSAccess) IsNotFoundError(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func (fs *FSAccess) filePath(rootPath string, filePath string) string {
	return filepath.Join(rootPath, filepath.FromSlash(filePath))
}
