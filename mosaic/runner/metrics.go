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

package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for one run. We're a batch tool, so rather than serving these they're written to a file at the end
// for node_exporter's textfile collector to pick up
type Metrics struct {
	registry *prometheus.Registry

	layers        *prometheus.CounterVec
	missingTiles  prometheus.Counter
	tilesExpected prometheus.Counter
	scaleFactor   *prometheus.GaugeVec
	outputPixels  *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		layers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mapsmosaic_layers_total",
			Help: "Number of layers processed, by outcome.",
		}, []string{"outcome"}),
		missingTiles: factory.NewCounter(prometheus.CounterOpts{
			Name: "mapsmosaic_missing_tiles_total",
			Help: "Number of grid positions with no tile file.",
		}),
		tilesExpected: factory.NewCounter(prometheus.CounterOpts{
			Name: "mapsmosaic_tiles_total",
			Help: "Number of grid positions in all mosaics requested.",
		}),
		scaleFactor: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mapsmosaic_scale_factor",
			Help: "Effective scale factor of the mosaic for a layer.",
		}, []string{"layer"}),
		outputPixels: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mapsmosaic_output_pixels",
			Help: "Pixel count of the mosaic for a layer after scaling.",
		}, []string{"layer"}),
	}
}

func (m *Metrics) recordResult(res LayerResult) {
	m.layers.WithLabelValues(string(res.Outcome)).Inc()

	if res.Outcome != OutcomeMosaic || res.Plan == nil {
		return
	}

	m.missingTiles.Add(float64(res.Plan.Tiles.MissingCount))
	m.tilesExpected.Add(float64(len(res.Plan.Tiles.Paths)))
	m.scaleFactor.WithLabelValues(res.OutputID).Set(res.Plan.Scale.ScaleFactor)
	m.outputPixels.WithLabelValues(res.OutputID).Set(res.Plan.Scale.Area)
}

// WriteTextfile - Prometheus text format, written atomically
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
