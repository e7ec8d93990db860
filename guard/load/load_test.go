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

package load_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"guardgen.dev/go/guard/load"
)

func TestFilesNamed(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o666)))
	qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, "b.go"), []byte("package b\n"), 0o666)))

	files, err := load.Files(&load.Config{
		Dir:   dir,
		Stdin: strings.NewReader("package stdin\n"),
	}, []string{"b.go", "-", "a.go", "b.go"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(files, 3))

	qt.Assert(t, qt.Equals(files[0].Filename, filepath.Join(dir, "b.go")))
	qt.Assert(t, qt.Equals(string(files[0].Src), "package b\n"))
	qt.Assert(t, qt.Equals(files[1].Filename, load.StdinName))
	qt.Assert(t, qt.Equals(string(files[1].Src), "package stdin\n"))
	qt.Assert(t, qt.Equals(files[2].Filename, filepath.Join(dir, "a.go")))
	qt.Assert(t, qt.Equals(files[2].Package, ""))
}

func TestFilesMissing(t *testing.T) {
	_, err := load.Files(&load.Config{Dir: t.TempDir()}, []string{"nope.go"})
	qt.Assert(t, qt.ErrorMatches(err, `cannot read file: open .*nope.go: .*`))
	qt.Assert(t, qt.ErrorIs(err, os.ErrNotExist))
}

func TestFilesPattern(t *testing.T) {
	dir, err := filepath.Abs("testdata/mod")
	qt.Assert(t, qt.IsNil(err))

	tests := []struct {
		name  string
		tests bool
		want  []string
	}{{
		name: "NoTests",
		want: []string{"a.go", "sub/b.go"},
	}, {
		name:  "Tests",
		tests: true,
		want:  []string{"a.go", "a_test.go", "sub/b.go"},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := load.Files(&load.Config{Dir: dir, Tests: tt.tests}, []string{"./..."})
			qt.Assert(t, qt.IsNil(err))
			var got []string
			for _, f := range files {
				rel, err := filepath.Rel(dir, f.Filename)
				qt.Assert(t, qt.IsNil(err))
				got = append(got, filepath.ToSlash(rel))
				qt.Assert(t, qt.Equals(f.ModuleDir, dir))
				qt.Assert(t, qt.IsTrue(strings.HasPrefix(f.Package, "example.com/m")))
				qt.Assert(t, qt.Not(qt.HasLen(f.Src, 0)))
			}
			slices.Sort(got)
			qt.Assert(t, qt.DeepEquals(got, tt.want))
		})
	}
}
