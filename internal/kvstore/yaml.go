/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	applog "effectcomposer/internal/log"
)

// BackupSuffix names the copy of the previous document kept next to a YAML store.
const BackupSuffix = ".bak"

// YAMLFile keeps all values in one YAML document that is rewritten on every change.
// Writes go to a temp file in the same directory which is then renamed over the
// target; the previous document is kept as <path>.bak and used when the main
// file cannot be parsed.
type YAMLFile struct {
	mu     sync.Mutex
	path   string
	values map[string]any
	closed bool
}

// OpenYAML loads path (a missing file is an empty store).
func OpenYAML(path string) (*YAMLFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("settings path is required")
	}
	l := applog.WithOperation(applog.WithComponent("kvstore"), "yaml_open")
	lctx := applog.WithStore(context.Background(), path)
	values, err := readYAML(path)
	if err != nil {
		l.WarnContext(lctx, "settings file unreadable, trying backup", slog.Any("err", err))
		bv, berr := readYAML(path + BackupSuffix)
		if berr != nil {
			return nil, fmt.Errorf("open settings: %w; backup attempt: %v", err, berr)
		}
		values = bv
	}
	return &YAMLFile{path: path, values: values}, nil
}

func readYAML(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, err
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

func (y *YAMLFile) Location() string { return y.path }

func (y *YAMLFile) Get(key string) (any, bool, error) {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.closed {
		return nil, false, ErrClosed
	}
	v, ok := y.values[key]
	return v, ok, nil
}

func (y *YAMLFile) Put(key string, value any) error {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.closed {
		return ErrClosed
	}
	prev, had := y.values[key]
	y.values[key] = value
	if err := y.flushLocked(); err != nil {
		if had {
			y.values[key] = prev
		} else {
			delete(y.values, key)
		}
		return err
	}
	return nil
}

func (y *YAMLFile) Delete(key string) error {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.closed {
		return ErrClosed
	}
	prev, had := y.values[key]
	if !had {
		return nil
	}
	delete(y.values, key)
	if err := y.flushLocked(); err != nil {
		y.values[key] = prev
		return err
	}
	return nil
}

func (y *YAMLFile) Keys() ([]string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(y.values))
	for k := range y.values {
		keys = append(keys, k)
	}
	return keys, nil
}

func (y *YAMLFile) Close() error {
	y.mu.Lock()
	y.closed = true
	y.mu.Unlock()
	return nil
}

// flushLocked rewrites the document transactionally.
func (y *YAMLFile) flushLocked() error {
	data, err := yaml.Marshal(y.values)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	dir := filepath.Dir(y.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure settings dir: %w", err)
	}
	if _, statErr := os.Stat(y.path); statErr == nil {
		if cerr := copyFile(y.path, y.path+BackupSuffix); cerr != nil {
			return fmt.Errorf("backup settings: %w", cerr)
		}
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(y.path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp settings: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(y.path); err == nil {
		_ = os.Remove(y.path)
	}
	if rerr := os.Rename(temp, y.path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace settings: %w", rerr)
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeFileSync(dst, b)
}
