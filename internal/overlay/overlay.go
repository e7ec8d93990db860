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

// Package overlay writes rewritten files for use with go build -overlay.
//
// Each rewritten file is stored as a shadow copy in a directory, and the
// directory's overlay.json maps the original path to the shadow path. The
// shadow copies carry //line directives so that compiler diagnostics and
// stack traces refer to the original source.
package overlay

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rogpeppe/go-internal/lockedfile"
	"github.com/rogpeppe/go-internal/robustio"
	"go.uber.org/zap"
)

// FileName is the name of the overlay file within the directory.
const FileName = "overlay.json"

// Overlay is the go build -overlay JSON format.
type Overlay struct {
	Replace map[string]string `json:"Replace"`
}

// Read reads an overlay file.
func Read(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var o Overlay
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("invalid overlay file %s: %w", path, err)
	}
	if o.Replace == nil {
		o.Replace = map[string]string{}
	}
	return &o, nil
}

// A Writer adds shadow files to an overlay directory. A Writer may be used
// from multiple goroutines, and several processes may share a directory.
type Writer struct {
	// Dir holds the shadow files and the overlay file. It is created if
	// needed.
	Dir string

	// Keep leaves the previous shadow of a file in place when its
	// content changes.
	Keep bool

	Logger *zap.Logger
}

// Path returns the path of the overlay file.
func (w *Writer) Path() string {
	return filepath.Join(w.Dir, FileName)
}

// Write stores src, the rewritten form of orig, as the shadow copy of
// filename and records the mapping. It returns the shadow path.
func (w *Writer) Write(filename string, orig, src []byte) (shadow string, err error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}
	dir, err := filepath.Abs(w.Dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return "", err
	}

	content := LineDirectives(string(src), string(orig), abs)
	sum := sha256.Sum256([]byte(content))
	base := strings.TrimSuffix(filepath.Base(abs), ".go")
	shadow = filepath.Join(dir, fmt.Sprintf("%s_%s.go", base, hex.EncodeToString(sum[:])[:12]))
	if err := os.WriteFile(shadow, []byte(content), 0o666); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName)
	unlock, err := lockedfile.MutexAt(path + ".lock").Lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	o, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		o = &Overlay{Replace: map[string]string{}}
	} else if err != nil {
		return "", err
	}
	if old, ok := o.Replace[abs]; ok && !w.Keep && old != shadow && filepath.Dir(old) == dir {
		// Stale shadow from an earlier run.
		if err := os.Remove(old); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	o.Replace[abs] = shadow
	if err := writeUnlocked(path, o); err != nil {
		return "", err
	}

	w.logger().Debug("wrote shadow file",
		zap.String("file", abs),
		zap.String("shadow", shadow),
	)
	return shadow, nil
}

// Ensure creates the directory and an empty overlay file if they do not
// exist yet, so that the overlay path can be passed to go build even when
// no file was rewritten.
func (w *Writer) Ensure() error {
	if err := os.MkdirAll(w.Dir, 0o777); err != nil {
		return err
	}
	path := w.Path()
	unlock, err := lockedfile.MutexAt(path + ".lock").Lock()
	if err != nil {
		return err
	}
	defer unlock()
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return writeUnlocked(path, &Overlay{Replace: map[string]string{}})
}

func (w *Writer) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

func writeUnlocked(path string, o *Overlay) error {
	body, err := json.MarshalIndent(o, "", "\t")
	if err != nil {
		return err
	}
	body = append(body, '\n')

	// Write to a temp file and rename so that a concurrent go build never
	// sees a partial file.
	if err := os.WriteFile(path+".tmp", body, 0o666); err != nil {
		return err
	}
	return robustio.Rename(path+".tmp", path)
}
