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

package budget

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/mapsmosaic/core/core/logger"
	"github.com/mapsmosaic/core/mosaic/config"
)

func Example_plan_underBudget() {
	p, err := Plan(10000, 10000, 25, 25, config.Default(), &logger.NullLogger{})
	fmt.Printf("%v|%+v\n", err, p)

	// Output:
	// <nil>|{ScaleFactor:1 ScaleX:25 ScaleY:25 CropWidth:10000 CropHeight:10000 Area:1e+08 Shrunk:false Halved:false}
}

func Example_plan_proportionalShrink() {
	log := &logger.StdOutLoggerForTest{}
	p, err := Plan(50000, 50000, 25, 25, config.Default(), log)
	fmt.Printf("%v|%v|%vx%v|%v|%v|%v,%v\n", err, p.ScaleFactor, p.CropWidth, p.CropHeight, p.Shrunk, p.Halved, p.ScaleX, p.ScaleY)
	fmt.Println(p.Area <= 2e9, log.LogContains("changed scale factor to 0.894"))

	// Output:
	// <nil>|0.894|44700x44700|true|false|25,25
	// true true
}

func Example_plan_roundingForcesHalving() {
	cfg := config.Default()
	cfg.PixelBudget = 1e6

	// sqrt(1e6/1115²) = 0.89686 rounds up to 0.897, which is still over budget
	log := &logger.StdOutLoggerForTest{}
	p, err := Plan(1115, 1115, 10, 12, cfg, log)
	fmt.Printf("%v|%v|%vx%v|%v|%v|%.3f,%.3f\n", err, p.ScaleFactor, p.CropWidth, p.CropHeight, p.Shrunk, p.Halved, p.ScaleX, p.ScaleY)
	fmt.Println(p.Area <= cfg.PixelBudget, log.LogContains("too large for ImageJ"))

	// Output:
	// <nil>|0.4485|500x500|true|true|22.297,26.756
	// true true
}

func Example_plan_configuredScaleFactor() {
	cfg := config.Default()
	cfg.ScaleFactor = 0.5

	p, err := Plan(3000, 2000, 100, 100, cfg, &logger.NullLogger{})
	fmt.Printf("%v|%v|%vx%v|%v\n", err, p.ScaleFactor, p.CropWidth, p.CropHeight, p.Shrunk)

	// Output:
	// <nil>|0.5|1500x1000|false
}

func Example_plan_invalidDimensions() {
	for _, dims := range [][2]int{{0, 100}, {100, -1}} {
		_, err := Plan(dims[0], dims[1], 1, 1, config.Default(), &logger.NullLogger{})
		var dimErr InvalidDimensionsError
		fmt.Println(errors.As(err, &dimErr), err)
	}

	// Output:
	// true invalid image dimensions 0x100
	// true invalid image dimensions 100x-1
}

// Anything already under budget must come back untouched
func Test_UnderBudgetKeepsScaleFactor(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	cfg := config.Default()

	for i := 0; i < 1000; i++ {
		w := 1 + r.Intn(40000)
		h := 1 + r.Intn(40000)
		cfg.ScaleFactor = 0.01 + 0.99*r.Float64()

		if float64(w)*float64(h)*cfg.ScaleFactor*cfg.ScaleFactor > cfg.PixelBudget {
			continue
		}

		p, err := Plan(w, h, 7, 9, cfg, &logger.NullLogger{})
		if err != nil {
			t.Fatalf("%vx%v: %v", w, h, err)
		}
		if p.ScaleFactor != cfg.ScaleFactor || p.Shrunk || p.Halved || p.ScaleX != 7 || p.ScaleY != 9 {
			t.Errorf("%vx%v sf=%v: got %+v", w, h, cfg.ScaleFactor, p)
		}
	}
}

// Anything over budget must end up at or under it
func Test_OverBudgetEndsWithinBudget(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	cfg := config.Default()
	cfg.PixelBudget = 5e6

	checked := 0
	for i := 0; i < 2000; i++ {
		w := 1000 + r.Intn(100000)
		h := 1000 + r.Intn(100000)
		if float64(w)*float64(h) <= cfg.PixelBudget {
			continue
		}

		p, err := Plan(w, h, 20, 20, cfg, &logger.NullLogger{})
		if err != nil {
			t.Fatalf("%vx%v: %v", w, h, err)
		}
		checked++

		area := float64(w) * float64(h) * p.ScaleFactor * p.ScaleFactor
		if area > cfg.PixelBudget {
			t.Errorf("%vx%v: area %v over budget with %+v", w, h, area, p)
		}
		if !p.Shrunk {
			t.Errorf("%vx%v: expected shrink", w, h)
		}
		if p.Halved && (p.ScaleX != 20/p.ScaleFactor || p.ScaleY != 20/p.ScaleFactor) {
			t.Errorf("%vx%v: halved but axis scale not adjusted: %+v", w, h, p)
		}
		if !p.Halved && p.ScaleX != 20 {
			t.Errorf("%vx%v: axis scale changed without halving: %+v", w, h, p)
		}
	}

	if checked == 0 {
		t.Fatal("no over-budget cases generated")
	}
}
