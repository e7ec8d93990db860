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

package overlay

import (
	"bytes"
	"fmt"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/rogpeppe/go-internal/diff"

	"guardgen.dev/go/guard/directive"
)

// LineDirectives returns shadow with //line directives added wherever its
// lines fall out of step with orig, so that positions in shadow map back to
// the original file name.
//
// The lines of both sources are aligned with a diff that ignores white
// space, so lines reformatted by gofmt still correspond. A directive is
// written before each shadow line whose original line number differs from
// the one the compiler would otherwise assign. Blank lines and lines that
// start inside a multi-line string literal or comment never get one; the
// next eligible line does.
func LineDirectives(shadow, orig, name string) string {
	sLines := strings.Split(shadow, "\n")
	origLine := align(sLines, strings.Split(orig, "\n"))
	inToken := continuationLines(shadow)

	var b strings.Builder
	cur := 1 // line the compiler assigns to the next shadow line
	for i, line := range sLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		o := origLine[i]
		if o >= 0 && o+1 != cur && !inToken[i] && strings.TrimSpace(line) != "" {
			fmt.Fprintf(&b, "//line %s:%d\n", name, o+1)
			cur = o + 1
		}
		b.WriteString(line)
		cur++
	}
	return b.String()
}

// align returns, for each shadow line, the index of the corresponding
// original line, or -1 for lines added by the rewrite.
func align(sLines, oLines []string) []int {
	m := make([]int, len(sLines))
	for i := range m {
		m[i] = -1
	}
	x, y := 0, 0 // next unaligned original and shadow lines
	same := func(n int) {
		for ; n > 0 && x < len(oLines) && y < len(sLines); n-- {
			m[y] = x
			x, y = x+1, y+1
		}
	}

	// Runs of removed and added lines between context lines. Equal-length
	// runs are modified lines, unless a directive was removed.
	var del, add []int
	flush := func() {
		modified := len(del) == len(add)
		for _, o := range del {
			if directive.IsDirective(strings.TrimSpace(oLines[o])) {
				modified = false
			}
		}
		if modified {
			for k, s := range add {
				m[s] = del[k]
			}
		}
		del, add = del[:0], add[:0]
	}

	d := diff.Diff("orig", squeeze(oLines), "shadow", squeeze(sLines))
	if d == nil {
		same(len(sLines))
		return m
	}
	lines := strings.Split(string(d), "\n")
	for _, l := range lines[3:] { // skip the diff, --- and +++ headers
		if l == "" {
			continue
		}
		switch l[0] {
		case '@':
			flush()
			var xs, xn, ys, yn int
			fmt.Sscanf(l, "@@ -%d,%d +%d,%d @@", &xs, &xn, &ys, &yn)
			// Hunk starts are 1-based unless the side is empty.
			if xn > 0 {
				xs--
			}
			if yn > 0 {
				ys--
			}
			same(xs - x)
			x, y = xs, ys
		case ' ':
			flush()
			same(1)
		case '-':
			if len(add) > 0 {
				flush()
			}
			del = append(del, x)
			x++
		case '+':
			add = append(add, y)
			y++
		}
	}
	flush()
	same(len(sLines))
	return m
}

// squeeze returns lines without any white space, one per line.
func squeeze(lines []string) []byte {
	var b bytes.Buffer
	for _, l := range lines {
		for _, f := range strings.Fields(l) {
			b.WriteString(f)
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// continuationLines reports, for each line of src, whether it starts inside
// a token spanning several lines: a raw string literal or a general
// comment.
func continuationLines(src string) []bool {
	in := make([]bool, strings.Count(src, "\n")+1)
	fset := token.NewFileSet()
	file := fset.AddFile("", -1, len(src))
	var s scanner.Scanner
	s.Init(file, []byte(src), nil, scanner.ScanComments)
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok != token.STRING && tok != token.COMMENT {
			continue
		}
		first := file.Line(pos) // 1-based
		for i := range strings.Count(lit, "\n") {
			in[first+i] = true
		}
	}
	return in
}
