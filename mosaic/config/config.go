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

// Run configuration, read from a config file (JSON or YAML) and env vars, then overridden by command line flags.
// Once a run starts the config is read-only and handed to each stage explicitly
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix - any field can be set with MAPSMOSAIC_CONFIG_<FieldName>
const EnvPrefix = "MAPSMOSAIC_CONFIG_"

// GigaPixel - the -l flag is in gigapixels
const GigaPixel = 1e9

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Configuration for a stitching run

type MosaicConfig struct {
	// Scale factor applied to the resulting images, (0, 1]
	ScaleFactor float64 `yaml:"ScaleFactor"`
	// Max pixels the stitcher can practically handle in one image
	PixelBudget float64 `yaml:"PixelBudget"`

	ShowDebuggingOutput bool `yaml:"ShowDebuggingOutput"`

	// Post processing by ImageJ, owned by the external tool
	RunImageJ        bool `yaml:"RunImageJ"`
	RemoveCurtaining bool `yaml:"RemoveCurtaining"`

	// Manually stitch a single "(stitched)" dataset directory instead of a whole project
	SingleDataSet bool `yaml:"SingleDataSet"`

	// nm per pixel assumed for layers without pixel size metadata (NavCam overview: 25 mm across 470 px)
	NavCamScaleNm float64 `yaml:"NavCamScaleNm"`
	// nm per pixel to use in single dataset mode when the pyramid has no pixel size. 0 = use NavCamScaleNm
	ManualScaleNm float64 `yaml:"ManualScaleNm"`

	// Subdirectories of a layer directory that never hold the tile set
	ReservedDirNames []string `yaml:"ReservedDirNames"`

	ProjectFileName string `yaml:"ProjectFileName"`
	TileFileType    string `yaml:"TileFileType"`

	// If set, stitch requests are written to this S3 bucket instead of the project directory
	OutputBucket string `yaml:"OutputBucket"`
	// External stitcher executable, run with the path of each request file
	StitchCommand string `yaml:"StitchCommand"`

	SentryDSN       string `yaml:"SentryDSN"`
	EnvironmentName string `yaml:"EnvironmentName"`

	// Prometheus text format file written at end of run (for node_exporter textfile collector)
	MetricsFile string `yaml:"MetricsFile"`

	// How many tile column directory listings to keep around while checking for missing tiles
	TileListingCacheSize int `yaml:"TileListingCacheSize"`
}

func Default() MosaicConfig {
	return MosaicConfig{
		ScaleFactor:          1,
		PixelBudget:          2 * GigaPixel,
		RunImageJ:            true,
		RemoveCurtaining:     true,
		NavCamScaleNm:        53191, // 25 000 000 nm / 470 px
		ReservedDirNames:     []string{"histograms"},
		ProjectFileName:      "MapsProject.xml",
		TileFileType:         ".tif",
		EnvironmentName:      "local",
		TileListingCacheSize: 256,
	}
}

// Init - defaults, then .env + config file (if any), then MAPSMOSAIC_CONFIG_* env vars
func Init(configFilePath string) (MosaicConfig, error) {
	// Optional, most operators just use flags
	_ = godotenv.Load()

	cfg := Default()
	if len(configFilePath) > 0 {
		var err error
		cfg, err = NewConfigFromFile(configFilePath, cfg)
		if err != nil {
			return cfg, err
		}
	}

	return applyEnvOverrides(cfg)
}

// NewConfigFromFile - fields present in the file override those in cfg
func NewConfigFromFile(configFilePath string, cfg MosaicConfig) (MosaicConfig, error) {
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		return cfg, errors.Wrapf(err, "could not read config file at %v", configFilePath)
	}

	switch strings.ToLower(filepath.Ext(configFilePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}

	if err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config file %v", configFilePath)
	}
	return cfg, nil
}

// Override config with any values explicitly set in env vars (MAPSMOSAIC_CONFIG_*)
// NOTE: For []string slices, pass in a comma-separated string
func applyEnvOverrides(cfg MosaicConfig) (MosaicConfig, error) {
	reflection := reflect.ValueOf(&cfg).Elem()
	for i := 0; i < reflection.NumField(); i++ {
		fieldName := reflection.Type().Field(i).Name
		field := reflection.Field(i)

		val, present := os.LookupEnv(EnvPrefix + fieldName)
		if !present {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(val)
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				field.Set(reflect.ValueOf(strings.Split(val, ",")))
			}
		case reflect.Bool:
			b, err := strconv.ParseBool(val)
			if err != nil {
				return cfg, fmt.Errorf("could not read %v%v=%v as bool", EnvPrefix, fieldName, val)
			}
			field.SetBool(b)
		case reflect.Int:
			n, err := strconv.Atoi(val)
			if err != nil {
				return cfg, fmt.Errorf("could not read %v%v=%v as int", EnvPrefix, fieldName, val)
			}
			field.SetInt(int64(n))
		case reflect.Float64:
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return cfg, fmt.Errorf("could not read %v%v=%v as number", EnvPrefix, fieldName, val)
			}
			field.SetFloat(f)
		}
	}
	return cfg, nil
}

// Validate - config errors are fatal for the whole run
func (c MosaicConfig) Validate() error {
	if c.ScaleFactor <= 0 || c.ScaleFactor > 1 {
		return fmt.Errorf("scale factor must be in (0, 1], got %v", c.ScaleFactor)
	}
	if c.PixelBudget <= 0 {
		return fmt.Errorf("pixel budget must be positive, got %v", c.PixelBudget)
	}
	if c.NavCamScaleNm <= 0 {
		return fmt.Errorf("NavCam scale must be positive, got %v", c.NavCamScaleNm)
	}
	if c.ManualScaleNm < 0 {
		return fmt.Errorf("manual scale must not be negative, got %v", c.ManualScaleNm)
	}
	if len(c.ProjectFileName) <= 0 {
		return errors.New("project file name not set")
	}
	if c.TileListingCacheSize <= 0 {
		return fmt.Errorf("tile listing cache size must be positive, got %v", c.TileListingCacheSize)
	}
	return nil
}
