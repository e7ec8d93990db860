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

package guardtest

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"guardgen.dev/go/guard/errors"
)

// A TxTarTest runs a test for every txtar archive below a directory.
type TxTarTest struct {
	// Root is the directory holding the archives.
	Root string

	// Update writes differing results back to the archives.
	Update bool

	// Skip is a map of tests to skip to their skip message.
	Skip map[string]string
}

// A Test represents a single test based on a .txtar file.
//
// A Test embeds *testing.T and should be used to report errors. Output
// written through Writer is compared against the archive file of the same
// name.
type Test struct {
	*testing.T

	Archive *txtar.Archive

	// The absolute path of the directory holding the archive.
	Dir string

	outFiles []file
}

type file struct {
	name string
	buf  *bytes.Buffer
}

// HasTag reports whether the archive comment has a line "#key".
func (t *Test) HasTag(key string) bool {
	_, ok := t.value(key, false)
	return ok
}

// Value returns the value of a "#key: value" line in the archive comment.
func (t *Test) Value(key string) (value string, ok bool) {
	return t.value(key, true)
}

func (t *Test) value(key string, hasValue bool) (string, bool) {
	s := bufio.NewScanner(bytes.NewReader(t.Archive.Comment))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if !hasValue && line == "#"+key {
			return "", true
		}
		if v, ok := strings.CutPrefix(line, "#"+key+":"); ok && hasValue {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// File returns the contents of the named archive file. It fails the test
// if there is no such file.
func (t *Test) File(name string) []byte {
	t.Helper()
	for _, f := range t.Archive.Files {
		if f.Name == name {
			return f.Data
		}
	}
	t.Fatalf("archive has no file %q", name)
	return nil
}

// Rel converts filename to a normalized form so that it will give the same
// output across different runs and OSes.
func (t *Test) Rel(filename string) string {
	rel, err := filepath.Rel(t.Dir, filename)
	if err != nil {
		return filepath.Base(filename)
	}
	return filepath.ToSlash(rel)
}

// WriteErrors prints err to the named output with paths relative to the
// archive directory.
func (t *Test) WriteErrors(name string, err error) {
	if err != nil {
		errors.Print(t.Writer(name), err, &errors.Config{
			Cwd:     t.Dir,
			ToSlash: true,
		})
	}
}

// Writer returns a Writer for the named output.
func (t *Test) Writer(name string) io.Writer {
	for _, f := range t.outFiles {
		if f.name == name {
			return f.buf
		}
	}
	w := &bytes.Buffer{}
	t.outFiles = append(t.outFiles, file{name, w})
	return w
}

// Run calls f for each archive below x.Root and compares the outputs
// written by f with the archive.
func (x *TxTarTest) Run(t *testing.T, f func(tc *Test)) {
	dir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	err = filepath.WalkDir(x.Root, func(fullpath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(fullpath) != ".txtar" {
			return nil
		}

		rel, err := filepath.Rel(x.Root, fullpath)
		if err != nil {
			return err
		}
		testName := strings.TrimSuffix(filepath.ToSlash(rel), ".txtar")

		t.Run(testName, func(t *testing.T) {
			a, err := txtar.ParseFile(fullpath)
			if err != nil {
				t.Fatalf("error parsing txtar file: %v", err)
			}

			tc := &Test{
				T:       t,
				Archive: a,
				Dir:     filepath.Dir(filepath.Join(dir, fullpath)),
			}
			if tc.HasTag("skip") {
				t.Skip()
			}
			if msg, ok := x.Skip[testName]; ok {
				t.Skip(msg)
			}

			f(tc)

			update := false
			for _, sub := range tc.outFiles {
				var gold *txtar.File
				for i, f := range a.Files {
					if f.Name == sub.name {
						gold = &a.Files[i]
					}
				}

				result := sub.buf.Bytes()

				switch {
				case gold == nil:
					a.Files = append(a.Files, txtar.File{Name: sub.name})
					gold = &a.Files[len(a.Files)-1]

				case bytes.Equal(gold.Data, result):
					continue
				}

				if x.Update || UpdateGoldenFiles {
					update = true
					gold.Data = result
					continue
				}

				t.Errorf("result for %s differs:\n%s",
					sub.name,
					cmp.Diff(string(gold.Data), string(result)))
			}

			if update {
				err = os.WriteFile(fullpath, txtar.Format(a), 0o644)
				if err != nil {
					t.Fatal(err)
				}
			}
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
