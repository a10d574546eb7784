//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"fyne.io/fyne/v2"

	"effectcomposer/internal/kvstore"
)

const (
	prefsPrefix   = "settings."
	prefsKeyIndex = prefsPrefix + "_keys"
)

// PrefsBackend stores settings values in the toolkit's preferences as JSON
// strings. Preferences cannot enumerate keys, so an index of keys is kept
// alongside the values.
type PrefsBackend struct {
	mu     sync.Mutex
	p      fyne.Preferences
	closed bool
}

func NewPrefsBackend(p fyne.Preferences) *PrefsBackend { return &PrefsBackend{p: p} }

func (b *PrefsBackend) Location() string { return "fyne-preferences" }

func (b *PrefsBackend) Get(key string) (any, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, false, kvstore.ErrClosed
	}
	raw := b.p.StringWithFallback(prefsPrefix+key, "")
	if raw == "" {
		return nil, false, nil
	}
	v, err := kvstore.DecodeJSON(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

func (b *PrefsBackend) Put(key string, value any) error {
	raw, err := kvstore.EncodeJSON(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return kvstore.ErrClosed
	}
	b.p.SetString(prefsPrefix+key, raw)
	keys := b.keysLocked()
	if !slices.Contains(keys, key) {
		b.saveKeysLocked(append(keys, key))
	}
	return nil
}

func (b *PrefsBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return kvstore.ErrClosed
	}
	b.p.RemoveValue(prefsPrefix + key)
	keys := b.keysLocked()
	if i := slices.Index(keys, key); i >= 0 {
		b.saveKeysLocked(slices.Delete(keys, i, i+1))
	}
	return nil
}

func (b *PrefsBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, kvstore.ErrClosed
	}
	return b.keysLocked(), nil
}

// Close detaches the backend; the preferences themselves belong to the app.
func (b *PrefsBackend) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *PrefsBackend) keysLocked() []string {
	var keys []string
	if raw := b.p.StringWithFallback(prefsKeyIndex, ""); raw != "" {
		_ = json.Unmarshal([]byte(raw), &keys)
	}
	return keys
}

func (b *PrefsBackend) saveKeysLocked(keys []string) {
	raw, _ := json.Marshal(keys)
	b.p.SetString(prefsKeyIndex, string(raw))
}
