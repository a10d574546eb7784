/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"effectcomposer/internal/kvstore"
)

func TestLegacyShadersToggleTriggersRebake(t *testing.T) {
	store := kvstore.New(kvstore.NewMemory())
	s, fx := newTestSettings(t, store)

	var changed []Property
	s.OnPropertyChanged(func(p Property) { changed = append(changed, p) })

	if s.UseLegacyShaders() {
		t.Fatalf("default must be false")
	}
	s.SetUseLegacyShaders(false)
	if fx.updates != 0 || fx.bakes != 0 || len(changed) != 0 {
		t.Fatalf("setting the current value must be a no-op")
	}

	s.SetUseLegacyShaders(true)
	if !s.UseLegacyShaders() || !store.Bool(KeyUseLegacyShaders, false) {
		t.Fatalf("flag not written through")
	}
	if fx.updates != 1 || fx.bakes != 1 {
		t.Fatalf("effects calls = %d updates, %d bakes", fx.updates, fx.bakes)
	}
	if len(changed) != 1 || changed[0] != PropUseLegacyShaders {
		t.Fatalf("notifications = %v", changed)
	}

	s.SetUseLegacyShaders(true)
	s.SetUseLegacyShaders(false)
	if fx.updates != 2 || fx.bakes != 2 || len(changed) != 2 {
		t.Fatalf("after toggle back: %d updates, %d bakes, %d notifications", fx.updates, fx.bakes, len(changed))
	}
}

func TestCodeFontDefaultsAndReset(t *testing.T) {
	store := kvstore.New(kvstore.NewMemory())
	s, _ := newTestSettings(t, store)

	var changed []Property
	s.OnPropertyChanged(func(p Property) { changed = append(changed, p) })

	if s.CodeFontFile() != DefaultCodeFontFile || s.CodeFontSize() != DefaultCodeFontSize {
		t.Fatalf("defaults = %q/%d", s.CodeFontFile(), s.CodeFontSize())
	}
	s.SetCodeFontSize(DefaultCodeFontSize)
	if len(changed) != 0 || store.Contains(KeyCodeFontSize) {
		t.Fatalf("setting the default size must not notify or write")
	}

	s.SetCodeFontSize(20)
	if s.CodeFontSize() != 20 || store.Int(KeyCodeFontSize, 0) != 20 {
		t.Fatalf("size not written through")
	}
	// Only the size differs from the default, so reset notifies once.
	s.ResetCodeFont()
	if len(changed) != 2 || changed[0] != PropCodeFontSize || changed[1] != PropCodeFontSize {
		t.Fatalf("notifications = %v", changed)
	}
	if s.CodeFontFile() != DefaultCodeFontFile || s.CodeFontSize() != DefaultCodeFontSize {
		t.Fatalf("after reset = %q/%d", s.CodeFontFile(), s.CodeFontSize())
	}
}

func TestSetCodeFontFileAcceptsUnreadableFont(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "GoRegular.ttf")
	if err := os.WriteFile(good, goregular.TTF, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	if family, err := inspectFont(good); err != nil || family != "Go" {
		t.Fatalf("inspectFont = %q, %v", family, err)
	}
	bad := filepath.Join(dir, "broken.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write broken font: %v", err)
	}
	if _, err := inspectFont(bad); err == nil {
		t.Fatalf("inspectFont accepted garbage")
	}

	s, _ := newTestSettings(t, nil)
	var changed []Property
	s.OnPropertyChanged(func(p Property) { changed = append(changed, p) })
	s.SetCodeFontFile(good)
	s.SetCodeFontFile(bad)
	s.SetCodeFontFile(bad)
	if s.CodeFontFile() != bad {
		t.Fatalf("CodeFontFile = %q", s.CodeFontFile())
	}
	if len(changed) != 2 {
		t.Fatalf("notifications = %v, want 2", changed)
	}
}

func TestPropertyString(t *testing.T) {
	if PropCodeFontSize.String() != KeyCodeFontSize || Property(42).String() != "unknown" {
		t.Fatalf("Property.String mismatch")
	}
}

func TestSetCodeFontSizeRejectsOutOfRange(t *testing.T) {
	store := kvstore.New(kvstore.NewMemory())
	s, _ := newTestSettings(t, store)
	var changed []Property
	s.OnPropertyChanged(func(p Property) { changed = append(changed, p) })

	for _, size := range []int{0, -3, MaxCodeFontSize + 1, 300} {
		s.SetCodeFontSize(size)
	}
	if len(changed) != 0 || store.Contains(KeyCodeFontSize) {
		t.Fatalf("out-of-range sizes accepted: changed=%v stored=%v", changed, store.Contains(KeyCodeFontSize))
	}
	s.SetCodeFontSize(MaxCodeFontSize)
	if s.CodeFontSize() != MaxCodeFontSize || len(changed) != 1 {
		t.Fatalf("max size not accepted: %d", s.CodeFontSize())
	}
	if !ValidCodeFontSize(MinCodeFontSize) || ValidCodeFontSize(MinCodeFontSize-1) {
		t.Fatalf("ValidCodeFontSize bounds wrong")
	}
}

func TestNewWithoutStoreKeepsSettingsInMemory(t *testing.T) {
	s := New(Options{DataRoot: dataRoot, Prober: fakeProber{}})
	var got []Property
	var listener PropertyListener = func(p Property) { got = append(got, p) }
	s.OnPropertyChanged(listener)

	s.SetCodeFontSize(16)
	s.UpdateRecentProjects("A", "/a")
	if s.CodeFontSize() != 16 || s.RecentProjects().Len() != 1 {
		t.Fatalf("in-memory store did not keep values: size=%d recent=%d", s.CodeFontSize(), s.RecentProjects().Len())
	}
	if len(got) != 1 || got[0] != PropCodeFontSize {
		t.Fatalf("notifications = %v", got)
	}
}
