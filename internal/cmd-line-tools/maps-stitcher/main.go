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

package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mapsmosaic/core/core/awsutil"
	"github.com/mapsmosaic/core/core/fileaccess"
	"github.com/mapsmosaic/core/core/logger"
	"github.com/mapsmosaic/core/mosaic/config"
	"github.com/mapsmosaic/core/mosaic/imagej"
	"github.com/mapsmosaic/core/mosaic/plan"
	"github.com/mapsmosaic/core/mosaic/runner"
)

func main() {
	fmt.Println("#########################################################")
	fmt.Println("# Automatic stitching of Images from a Maps Project     #")
	fmt.Println("#########################################################")
	fmt.Println()

	var argNoImageJ = flag.Bool("i", false, "skip ImageJ processing")
	var argNoCurtaining = flag.Bool("c", false, "disable curtaining removal")
	var argSingleDataSet = flag.Bool("s", false, "manually stitch a single dataset from a \"(stitched)\" folder, see -dataset")
	var argScaleFactor = flag.Float64("f", 0, "scale factor of the resulting images, (0, 1]")
	var argLimit = flag.Float64("l", 0, "limit the image size to this many gigapixels")
	var argDebug = flag.Bool("d", false, "show debug output")
	var argProject = flag.String("project", "", "Maps project directory")
	var argDescriptor = flag.String("descriptor", "", "Path to MapsProject.xml, if not in the project directory")
	var argDataSet = flag.String("dataset", "", "Subfolder of a \"(stitched)\" dataset directory, used with -s")
	var argConfig = flag.String("config", "", "Config file (JSON or YAML)")

	flag.Parse()

	cfg, err := config.Init(*argConfig)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Command line wins over config file and env
	if *argNoImageJ {
		fmt.Println("deactivating ImageJ processing!")
		cfg.RunImageJ = false
	}
	if *argNoCurtaining {
		fmt.Println("curtaining removal deactivated!")
		cfg.RemoveCurtaining = false
	}
	if *argSingleDataSet {
		fmt.Println("manually stitch a single dataset from a \"(stitched)\" folder")
		cfg.SingleDataSet = true
	}
	if *argDebug {
		fmt.Println("show debugging output")
		cfg.ShowDebuggingOutput = true
	}
	if *argScaleFactor != 0 {
		cfg.ScaleFactor = *argScaleFactor
		fmt.Printf("set scale factor to %v\n", cfg.ScaleFactor)
	}
	if *argLimit != 0 {
		cfg.PixelBudget = *argLimit * config.GigaPixel
	}

	ilog := logger.NewStdOutLogger(logger.LevelForDebugFlag(cfg.ShowDebuggingOutput))

	if len(cfg.SentryDSN) > 0 {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.EnvironmentName,
		}); err != nil {
			ilog.Errorf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.RunImageJ {
		imagej.InPath(ilog)
	}

	stitcher := plan.RequestFileStitcher{
		FS:          &fileaccess.FSAccess{},
		Command:     cfg.StitchCommand,
		PostProcess: &plan.PostProcessOptions{RunImageJ: cfg.RunImageJ, RemoveCurtaining: cfg.RemoveCurtaining},
		Log:         ilog,
	}
	if len(cfg.OutputBucket) > 0 {
		sess, err := awsutil.GetSession()
		if err != nil {
			log.Fatalf("AWS GetSession failed: %v", err)
		}
		s3svc, err := awsutil.GetS3(sess)
		if err != nil {
			log.Fatalf("AWS GetS3 failed: %v", err)
		}
		stitcher.FS = fileaccess.MakeS3Access(s3svc)
		stitcher.Bucket = cfg.OutputBucket
	}

	r, err := runner.NewRunner(cfg, &fileaccess.FSAccess{}, stitcher, runner.SentryReporter{EnvironmentName: cfg.EnvironmentName}, ilog)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if cfg.SingleDataSet {
		if len(*argDataSet) <= 0 {
			log.Fatalf("dataset not set")
		}
		fmt.Println("Selected working directory: " + *argDataSet)
		r.ProcessSingleDataSet(*argDataSet)
	} else {
		if len(*argProject) <= 0 && len(*argDescriptor) <= 0 {
			log.Fatalf("project or descriptor not set")
		}
		if len(*argProject) > 0 {
			fmt.Println("Selected working directory: " + *argProject)
		}
		if _, err := r.ProcessProject(*argProject, *argDescriptor); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if len(cfg.MetricsFile) > 0 {
		if err := r.Metrics().WriteTextfile(cfg.MetricsFile); err != nil {
			ilog.Errorf("Failed to write metrics to %v: %v", cfg.MetricsFile, err)
		}
	}

	fmt.Println("-------")
	fmt.Println("DONE!")
}
