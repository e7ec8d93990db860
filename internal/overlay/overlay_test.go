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

package overlay_test

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
	"golang.org/x/sync/errgroup"

	"guardgen.dev/go/guard/inject"
	"guardgen.dev/go/internal/guardtest"
	"guardgen.dev/go/internal/overlay"
)

const origSrc = `package p

// Sum adds.
//guard:validate x
func Sum(x N) (int, error) {
	return int(x), nil
}
`

const rewrittenSrc = `package p

// Sum adds.
func Sum(x N) (int, error) {
	if guardErr := x.Validate(); guardErr != nil {
		return 0, guardErr
	}
	return int(x), nil
}
`

func TestLineDirectives(t *testing.T) {
	got := overlay.LineDirectives(rewrittenSrc, origSrc, "/src/p.go")
	qt.Assert(t, qt.Equals(got, `package p

// Sum adds.
//line /src/p.go:5
func Sum(x N) (int, error) {
	if guardErr := x.Validate(); guardErr != nil {
		return 0, guardErr
	}
//line /src/p.go:6
	return int(x), nil
}
`))
}

func TestLineDirectivesUnchanged(t *testing.T) {
	qt.Assert(t, qt.Equals(overlay.LineDirectives(origSrc, origSrc, "p.go"), origSrc))
}

func TestLineDirectivesRawString(t *testing.T) {
	const src = `package p

const doc = ` + "`" + `
//guard:validate x
foo
` + "`" + `

type N int

func (N) Validate() error { return nil }

//guard:validate x
func f(x N) error {
	return nil
}
`
	out, err := inject.Source("p.go", []byte(src))
	qt.Assert(t, qt.IsNil(err))
	got := overlay.LineDirectives(string(out), src, "/src/p.go")

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "shadow.go", got, parser.ParseComments)
	qt.Assert(t, qt.IsNil(err))
	spec := f.Decls[0].(*ast.GenDecl).Specs[0].(*ast.ValueSpec)
	lit := spec.Values[0].(*ast.BasicLit)
	qt.Assert(t, qt.Equals(lit.Value, "`\n//guard:validate x\nfoo\n`"))

	qt.Assert(t, qt.Equals(origPos(t, got, "func f"), "/src/p.go:13"))
	qt.Assert(t, qt.Equals(origPos(t, got, "return nil\n}"), "/src/p.go:14"))
}

func TestLineDirectivesUnformatted(t *testing.T) {
	const src = `package p

//guard:validate x
func f(x N) ([]string, error) {
	var s = []string{ "a",
		"b"}
	return  s, nil
}

func g() int {
	return 1
}
`
	out, err := inject.Source("p.go", []byte(src))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.StringContains(string(out), "[]string{\"a\","))
	got := overlay.LineDirectives(string(out), src, "/src/p.go")

	for needle, want := range map[string]string{
		"func f":        "/src/p.go:4",
		"var s":         "/src/p.go:5",
		`"b"}`:          "/src/p.go:6",
		"return s, nil": "/src/p.go:7",
		"func g":        "/src/p.go:10",
		"return 1":      "/src/p.go:11",
	} {
		qt.Check(t, qt.Equals(origPos(t, got, needle), want), qt.Commentf("%s in\n%s", needle, got))
	}
}

// origPos returns the file and line the compiler reports for the first
// occurrence of needle in shadow.
func origPos(t *testing.T, shadow, needle string) string {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "shadow.go", shadow, parser.ParseComments)
	qt.Assert(t, qt.IsNil(err))
	off := strings.Index(shadow, needle)
	qt.Assert(t, qt.Not(qt.Equals(off, -1)))
	p := fset.Position(fset.File(f.Pos()).Pos(off))
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

var shadowName = regexp.MustCompile(`^p_[0-9a-f]{12}\.go$`)

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	w := &overlay.Writer{Dir: filepath.Join(dir, ".guardgen")}
	file := filepath.Join(dir, "p.go")

	shadow, err := w.Write(file, []byte(origSrc), []byte(rewrittenSrc))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(filepath.Dir(shadow), w.Dir))
	qt.Assert(t, qt.Matches(filepath.Base(shadow), shadowName))

	data, err := os.ReadFile(shadow)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(data), overlay.LineDirectives(rewrittenSrc, origSrc, file)))

	o, err := overlay.Read(w.Path())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(o.Replace, map[string]string{file: shadow}))

	// Writing the same file again replaces the old shadow.
	shadow2, err := w.Write(file, []byte(origSrc), []byte(rewrittenSrc+"\nvar _ = 1\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Not(qt.Equals(shadow2, shadow)))
	_, err = os.Stat(shadow)
	qt.Assert(t, qt.ErrorIs(err, os.ErrNotExist))

	o, err = overlay.Read(w.Path())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(o.Replace, map[string]string{file: shadow2}))
}

func TestWriterKeep(t *testing.T) {
	dir := t.TempDir()
	w := &overlay.Writer{Dir: filepath.Join(dir, ".guardgen"), Keep: true}
	file := filepath.Join(dir, "p.go")

	shadow, err := w.Write(file, []byte(origSrc), []byte(rewrittenSrc))
	qt.Assert(t, qt.IsNil(err))
	shadow2, err := w.Write(file, []byte(origSrc), []byte(rewrittenSrc+"\nvar _ = 1\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Not(qt.Equals(shadow2, shadow)))
	_, err = os.Stat(shadow)
	qt.Assert(t, qt.IsNil(err))
}

func TestWriterEnsure(t *testing.T) {
	dir := t.TempDir()
	w := &overlay.Writer{Dir: filepath.Join(dir, "a", "b")}
	qt.Assert(t, qt.IsNil(w.Ensure()))
	o, err := overlay.Read(w.Path())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(o.Replace, 0))

	file := filepath.Join(dir, "p.go")
	shadow, err := w.Write(file, []byte(origSrc), []byte(rewrittenSrc))
	qt.Assert(t, qt.IsNil(err))

	// An existing overlay is left alone.
	qt.Assert(t, qt.IsNil(w.Ensure()))
	o, err = overlay.Read(w.Path())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(o.Replace, map[string]string{file: shadow}))
}

func TestWriterConcurrent(t *testing.T) {
	dir := t.TempDir()
	w := &overlay.Writer{Dir: filepath.Join(dir, "out")}

	const n = 8
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			file := filepath.Join(dir, fmt.Sprintf("f%d.go", i))
			_, err := w.Write(file, []byte(origSrc), []byte(rewrittenSrc))
			return err
		})
	}
	qt.Assert(t, qt.IsNil(g.Wait()))

	o, err := overlay.Read(w.Path())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(o.Replace, n))
}

func TestReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), overlay.FileName)
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("{"), 0o666)))
	_, err := overlay.Read(path)
	qt.Assert(t, qt.ErrorMatches(err, `invalid overlay file .*`))
}

// TestGoBuild checks that the go command accepts the overlay and that
// compiler errors point at the original file.
func TestGoBuild(t *testing.T) {
	if !guardtest.Long {
		t.Skip("set GUARDGEN_LONG to run")
	}
	dir := t.TempDir()
	write := func(name, src string) {
		qt.Assert(t, qt.IsNil(os.WriteFile(filepath.Join(dir, name), []byte(src), 0o666)))
	}
	write("go.mod", "module example.com/p\n\ngo 1.21\n")
	write("n.go", "package p\n\ntype N int\n\nfunc (N) Validate() error { return nil }\n")
	const src = `package p

//guard:validate x, nope
func Sum(x N) (int, error) {
	return int(x), nil
}
`
	write("p.go", src)

	out, err := inject.Source("p.go", []byte(src))
	qt.Assert(t, qt.IsNil(err))
	w := &overlay.Writer{Dir: filepath.Join(dir, ".guardgen")}
	_, err = w.Write(filepath.Join(dir, "p.go"), []byte(src), out)
	qt.Assert(t, qt.IsNil(err))

	cmd := exec.Command("go", "build", "-overlay", w.Path(), ".")
	cmd.Dir = dir
	msg, err := cmd.CombinedOutput()
	qt.Assert(t, qt.IsNotNil(err))
	// The function is on line 4 of p.go; the first guard follows it.
	qt.Assert(t, qt.StringContains(string(msg), "p.go:5:"))
	qt.Assert(t, qt.StringContains(string(msg), "undefined: nope"))
}
