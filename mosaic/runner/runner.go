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

// Drives a stitching run: each layer of a project goes through resolving, tile enumeration, scale planning
// and finally a stitch request. Layers are done one at a time, in project order, and one layer failing
// never stops the others
package runner

import (
	"path/filepath"

	"github.com/mapsmosaic/core/core/logger"
	"github.com/mapsmosaic/core/core/mapsproject"
	"github.com/mapsmosaic/core/core/tilename"
	"github.com/mapsmosaic/core/mosaic/budget"
	"github.com/mapsmosaic/core/mosaic/config"
	"github.com/mapsmosaic/core/mosaic/layer"
	"github.com/mapsmosaic/core/mosaic/plan"
	"github.com/mapsmosaic/core/mosaic/tiles"
	"github.com/pkg/errors"
)

type Outcome string

const (
	// Stitch request submitted
	OutcomeMosaic Outcome = "mosaic"
	// Single file layer, copied to the project root
	OutcomeCopied Outcome = "copied"
	// Nothing there to stitch
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type LayerResult struct {
	OutputID string
	Outcome  Outcome
	// Why it was skipped or failed
	Err error

	// Set for OutcomeMosaic
	Plan *plan.MosaicPlan
	// Set for OutcomeCopied
	CopiedTo string
}

// FileSystem - implemented by fileaccess.FSAccess
type FileSystem interface {
	layer.FileSystem
	tiles.DirectoryLister
}

type Runner struct {
	cfg        config.MosaicConfig
	resolver   layer.Resolver
	enumerator *tiles.Enumerator
	stitcher   plan.Stitcher
	reporter   ErrorReporter
	metrics    *Metrics
	log        logger.ILogger
}

// NewRunner - cfg is validated here and not changed after
func NewRunner(cfg config.MosaicConfig, fs FileSystem, stitcher plan.Stitcher, reporter ErrorReporter, log logger.ILogger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	enumerator, err := tiles.NewEnumerator(fs, cfg.TileListingCacheSize, log)
	if err != nil {
		return nil, err
	}

	if reporter == nil {
		reporter = NullReporter{}
	}

	return &Runner{
		cfg:        cfg,
		resolver:   layer.Resolver{FS: fs, Config: cfg, Log: log},
		enumerator: enumerator,
		stitcher:   stitcher,
		reporter:   reporter,
		metrics:    NewMetrics(),
		log:        log,
	}, nil
}

func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// ProcessProject - descriptorPath may be empty, then it's looked for in projectRoot. If projectRoot is empty it's
// the directory the descriptor is in. Only a bad descriptor returns an error, layer problems end up in the results
func (r *Runner) ProcessProject(projectRoot string, descriptorPath string) ([]LayerResult, error) {
	if len(descriptorPath) <= 0 {
		descriptorPath = filepath.Join(projectRoot, r.cfg.ProjectFileName)
	}
	if len(projectRoot) <= 0 {
		projectRoot = filepath.Dir(descriptorPath)
	}

	project, err := mapsproject.ReadProjectFile(descriptorPath)
	if err != nil {
		return nil, err
	}

	r.log.Infof("Project name:        %v", project.Name)
	r.log.Infof("Project description: %v", project.Description)

	results := []LayerResult{}
	for _, rec := range project.Layers() {
		r.log.Infof("opening layer \"%v\"", rec.OutputID)

		res := r.processLayer(projectRoot, rec)
		r.finish(&res)
		results = append(results, res)
	}

	return results, nil
}

// ProcessSingleDataSet - stitch one "(stitched)" tile set directory, output goes next to it in the layer directory
func (r *Runner) ProcessSingleDataSet(dataSetDir string) (LayerResult, error) {
	resolved, err := r.resolver.ResolveSingleDataSet(dataSetDir)

	var res LayerResult
	if err != nil {
		res = r.resolveFailed(resolved.OutputID, err)
	} else {
		res = r.stitch(resolved, resolved.LayerDir)
	}

	r.finish(&res)
	return res, res.Err
}

func (r *Runner) processLayer(projectRoot string, rec mapsproject.LayerRecord) LayerResult {
	resolved, err := r.resolver.Resolve(projectRoot, rec)
	if err != nil {
		return r.resolveFailed(rec.OutputID, err)
	}

	if resolved.IsSingleFile() {
		dst, err := r.resolver.CopySingleFile(projectRoot, resolved)
		if err != nil {
			return LayerResult{OutputID: rec.OutputID, Outcome: OutcomeFailed, Err: err}
		}
		return LayerResult{OutputID: rec.OutputID, Outcome: OutcomeCopied, CopiedTo: dst}
	}

	return r.stitch(resolved, projectRoot)
}

// Missing layers and raw dirs we can't work out a grid for are skipped, anything else is a failure
func (r *Runner) resolveFailed(outputID string, err error) LayerResult {
	var notFound layer.LayerNotFoundError
	var noGrid tilename.UndeterminedGridError
	if errors.As(err, &notFound) || errors.As(err, &noGrid) {
		return LayerResult{OutputID: outputID, Outcome: OutcomeSkipped, Err: err}
	}
	return LayerResult{OutputID: outputID, Outcome: OutcomeFailed, Err: err}
}

func (r *Runner) stitch(resolved layer.ResolvedLayer, outputDir string) LayerResult {
	result := LayerResult{OutputID: resolved.OutputID}

	tileSet, _ := r.enumerator.Enumerate(resolved.Layout(r.cfg.TileFileType), resolved.GridWidth, resolved.GridHeight)

	scale, err := budget.Plan(resolved.Width, resolved.Height, resolved.ScaleX, resolved.ScaleY, r.cfg, r.log)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	mosaic, ok := plan.Build(resolved, tileSet, scale, outputDir, r.cfg)
	if !ok {
		result.Outcome = OutcomeSkipped
		result.Err = errors.Errorf("no tiles found for layer \"%v\"", resolved.OutputID)
		return result
	}

	if err := mosaic.Submit(r.stitcher); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	result.Outcome = OutcomeMosaic
	result.Plan = &mosaic
	return result
}

func (r *Runner) finish(res *LayerResult) {
	switch res.Outcome {
	case OutcomeFailed:
		r.log.Errorf("  layer \"%v\" failed: %v", res.OutputID, res.Err)
		r.reporter.ReportLayerError(res.OutputID, res.Err)
	case OutcomeSkipped:
		r.log.Warnf("  layer \"%v\" skipped: %v", res.OutputID, res.Err)
	case OutcomeCopied:
		r.log.Infof("  layer \"%v\" copied to %v", res.OutputID, res.CopiedTo)
	}

	r.metrics.recordResult(*res)
}
