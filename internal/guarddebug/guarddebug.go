// Copyright 2026 The guardgen Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package guarddebug holds the settings read from GUARDGEN_DEBUG.
package guarddebug

import (
	"sync"

	"go.uber.org/zap/zapcore"

	"guardgen.dev/go/internal/envflag"
)

// EnvVar names the environment variable parsed by Init.
const EnvVar = "GUARDGEN_DEBUG"

// Flags is populated by Init.
var Flags Config

type Config struct {
	// Log is the minimum level written by the command line tool.
	// -v lowers it to debug.
	Log zapcore.Level `envflag:"default:warn"`

	// JSON selects JSON log lines instead of the console encoding.
	JSON bool

	// Keep leaves superseded shadow files in the overlay directory.
	Keep bool
}

// Init parses GUARDGEN_DEBUG into Flags. Only the first call does any
// work; later calls return the same error.
func Init() error {
	return initOnce()
}

var initOnce = sync.OnceValue(func() error {
	return envflag.Init(&Flags, EnvVar)
})
