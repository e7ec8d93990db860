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

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/mod/module"
)

func newVersionCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "print guardgen version",
		Args:  cobra.NoArgs,
		RunE:  mkRunE(c, runVersion),
	}
	return cmd
}

const defaultVersion = "(devel)"

// version may be set by a builder using
// -ldflags='-X guardgen.dev/go/cmd/guardgen/cmd.version=<version>'.
// Building guardgen as a dependency of another module is preferred, in
// which case the version comes from the module's *debug.BuildInfo.
var version = defaultVersion

func runVersion(cmd *Command, args []string) error {
	w := cmd.OutOrStdout()
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		// Only binaries built without module support lack build info.
		return errors.New("unknown error reading build-info")
	}

	// Extra settings for tests, as a JSON list of debug.BuildSetting.
	if v := os.Getenv("GUARDGEN_VERSION_TEST_CFG"); v != "" {
		var extra []debug.BuildSetting
		if err := json.Unmarshal([]byte(v), &extra); err != nil {
			return err
		}
		bi.Settings = append(bi.Settings, extra...)
	}

	v := resolveVersion(version, bi)
	fmt.Fprintf(w, "guardgen version %s\n\n", v)
	fmt.Fprintf(w, "go version %s\n", runtime.Version())
	for _, s := range bi.Settings {
		if s.Value == "" {
			continue
		}
		// The padding right-aligns the keys so the values line up:
		//
		//   vcs.revision 0123456789ab...
		//       vcs.time 2024-03-04T05:06:07Z
		//
		// 16 columns is enough in practice; the longest key seen is
		// "vcs.revision".
		fmt.Fprintf(w, "%16s %s\n", s.Key, s.Value)
	}
	return nil
}

// resolveVersion prefers the linker-provided version, then the module
// version, then a pseudo-version built from the VCS settings.
func resolveVersion(v string, bi *debug.BuildInfo) string {
	if v != defaultVersion {
		return v
	}
	if bi.Main.Version != "" && bi.Main.Version != defaultVersion {
		return bi.Main.Version
	}
	var vcsTime time.Time
	var vcsRevision string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.time":
			// An invalid time gives a zero timestamp in the version.
			vcsTime, _ = time.Parse(time.RFC3339Nano, s.Value)
		case "vcs.revision":
			vcsRevision = s.Value
			// module.PseudoVersion expects a 12 character commit hash
			// prefix, as cmd/go uses.
			if len(vcsRevision) > 12 {
				vcsRevision = vcsRevision[:12]
			}
		}
	}
	if vcsRevision == "" {
		// Built from a source tree without VCS information.
		return v
	}
	return module.PseudoVersion("", "", vcsTime, vcsRevision)
}
