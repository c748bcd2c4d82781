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

package utils

import (
	"fmt"
	"math"
	"os"
)

// PrettyPrintIndentForJSON Pretty-print indenting of JSON
const PrettyPrintIndentForJSON = "    "

// RoundToDecimals rounds half away from zero, so 0.8945 -> 0.895 at 3 decimals (barring float representation)
func RoundToDecimals(value float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(value*pow) / pow
}

func FilesEqual(aPath, bPath string) error {
	abytes, err := os.ReadFile(aPath)
	if err != nil {
		return err
	}

	bbytes, err := os.ReadFile(bPath)
	if err != nil {
		return err
	}

	if len(abytes) != len(bbytes) {
		return fmt.Errorf("%v length (%v bytes) does not match %v length (%v bytes)", aPath, len(abytes), bPath, len(bbytes))
	}

	for c := range abytes {
		if abytes[c] != bbytes[c] {
			return fmt.Errorf("%v differs from %v at idx=%v '%v'!='%v'", aPath, bPath, c, string(abytes[c]), string(bbytes[c]))
		}
	}

	return nil
}
