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
	"github.com/getsentry/sentry-go"
)

// ErrorReporter - somewhere to send layer failures besides the log
type ErrorReporter interface {
	ReportLayerError(outputID string, err error)
}

// SentryReporter sends to whatever sentry was initialised with. With no DSN this does nothing
type SentryReporter struct {
	EnvironmentName string
}

func (s SentryReporter) ReportLayerError(outputID string, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("layer", outputID)
		scope.SetTag("environment", s.EnvironmentName)
		sentry.CaptureException(err)
	})
}

type NullReporter struct {
}

func (n NullReporter) ReportLayerError(outputID string, err error) {
}
