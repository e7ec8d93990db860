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

// Package guardtest is a helper package for test packages in the guardgen
// project. As such it should only be imported in _test.go files.
package guardtest

import (
	"fmt"
	"os"
)

// UpdateGoldenFiles determines whether golden archives and testscript
// scripts should be updated in the event of cmp failures. It corresponds to
// testscript.Params.UpdateScripts.
var UpdateGoldenFiles = os.Getenv("GUARDGEN_UPDATE") != ""

// Long reports whether long-running tests, such as those that shell out to
// the go command, should run.
var Long = os.Getenv("GUARDGEN_LONG") != ""

// Condition adds support for guardgen-specific testscript conditions within
// testscript scripts.
func Condition(cond string) (bool, error) {
	switch cond {
	case "long":
		return Long, nil
	}
	return false, fmt.Errorf("unknown condition %v", cond)
}
