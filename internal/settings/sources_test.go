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
	"errors"
	"path/filepath"
	"testing"

	"effectcomposer/internal/imageprobe"
	"effectcomposer/internal/kvstore"
	"effectcomposer/internal/model"
)

// fakeProber knows a fixed set of images; everything else is unreadable.
type fakeProber map[string]imageprobe.Size

func (f fakeProber) Probe(path string) (imageprobe.Info, error) {
	if sz, ok := f[path]; ok {
		return imageprobe.Info{Size: sz, Format: "png"}, nil
	}
	return imageprobe.Info{}, errors.New("unreadable")
}

type fakeEffects struct {
	updates int
	bakes   int
}

func (f *fakeEffects) UpdateBakedShaderVersions() { f.updates++ }
func (f *fakeEffects) DoBakeShaders()             { f.bakes++ }

const dataRoot = "/data"

func newTestSettings(t *testing.T, store *kvstore.Store) (*Settings, *fakeEffects) {
	t.Helper()
	if store == nil {
		store = kvstore.New(kvstore.NewMemory())
	}
	fx := &fakeEffects{}
	s := New(Options{
		Store:    store,
		DataRoot: dataRoot,
		Prober:   fakeProber{"img.png": {Width: 64, Height: 32}},
		Effects:  fx,
	})
	return s, fx
}

func defaultFiles() []string {
	out := make([]string, len(defaultSources))
	for i, d := range defaultSources {
		out[i] = filepath.Join(dataRoot, filepath.FromSlash(d))
	}
	return out
}

func files(entries []model.ImageEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.File
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestConstructionSeedsDefaults(t *testing.T) {
	s, _ := newTestSettings(t, nil)

	if got := files(s.SourceImages().Entries()); !equalStrings(got, defaultFiles()) {
		t.Fatalf("sources = %v, want %v", got, defaultFiles())
	}
	for _, e := range s.SourceImages().Entries() {
		if e.CanRemove {
			t.Fatalf("default source %s must not be removable", e.File)
		}
		if e.Width != 0 || e.Height != 0 {
			t.Fatalf("unreadable default should have 0x0, got %dx%d", e.Width, e.Height)
		}
	}
	bgs := s.BackgroundImages().Entries()
	if len(bgs) != 3 || bgs[0].File != filepath.Join(dataRoot, "images", "background_dark.jpg") || bgs[0].CanRemove {
		t.Fatalf("backgrounds = %+v", bgs)
	}
	if s.RecentProjects().Len() != 0 {
		t.Fatalf("recent projects should start empty")
	}
}

func TestAddThenRemoveCustomSource(t *testing.T) {
	store := kvstore.New(kvstore.NewMemory())
	s, _ := newTestSettings(t, store)

	var resets int
	s.SourceImages().OnReset(model.ResetFuncs{Ended: func() { resets++ }})

	if !s.AddSourceImage("img.png", true) {
		t.Fatalf("AddSourceImage returned false")
	}
	want := append(defaultFiles(), "img.png")
	if got := files(s.SourceImages().Entries()); !equalStrings(got, want) {
		t.Fatalf("sources = %v, want %v", got, want)
	}
	added, _ := s.SourceImages().At(4)
	if added.Width != 64 || added.Height != 32 || !added.CanRemove || added.Name != "img.png" {
		t.Fatalf("added entry = %+v", added)
	}
	if got := store.StringList(KeyCustomSourceImages); !equalStrings(got, []string{"img.png"}) {
		t.Fatalf("persisted custom = %v", got)
	}

	if !s.RemoveSourceImage(4) {
		t.Fatalf("RemoveSourceImage(4) returned false")
	}
	if got := files(s.SourceImages().Entries()); !equalStrings(got, defaultFiles()) {
		t.Fatalf("sources after remove = %v", got)
	}
	if got := store.StringList(KeyCustomSourceImages); len(got) != 0 {
		t.Fatalf("persisted custom after remove = %v", got)
	}
	if resets != 2 {
		t.Fatalf("reset notifications = %d, want 2", resets)
	}
}

func TestAddSourceRejectsEmptyAndDuplicate(t *testing.T) {
	store := kvstore.New(kvstore.NewMemory())
	s, _ := newTestSettings(t, store)

	if s.AddSourceImage("", true) {
		t.Fatalf("empty path accepted")
	}
	if !s.AddSourceImage("img.png", true) {
		t.Fatalf("first add failed")
	}
	if s.AddSourceImage("img.png", true) {
		t.Fatalf("duplicate accepted")
	}
	if s.AddSourceImage(defaultFiles()[0], true) {
		t.Fatalf("duplicate of default accepted")
	}
	if n := s.SourceImages().Len(); n != 5 {
		t.Fatalf("Len = %d, want 5", n)
	}
	if got := store.StringList(KeyCustomSourceImages); len(got) != 1 {
		t.Fatalf("persisted custom = %v", got)
	}
}

func TestAddUnreadableImageIsDegraded(t *testing.T) {
	s, _ := newTestSettings(t, nil)
	if !s.AddSourceImage("file:///nowhere/broken.png", false) {
		t.Fatalf("unreadable image should still be added")
	}
	e, err := s.SourceImages().At(s.SourceImages().Len() - 1)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if e.File != "file:///nowhere/broken.png" || e.Width != 0 || e.Height != 0 || e.Name != "broken.png" {
		t.Fatalf("degraded entry = %+v", e)
	}
}

func TestNonRemovableSourceIsNotPersisted(t *testing.T) {
	store := kvstore.New(kvstore.NewMemory())
	s, _ := newTestSettings(t, store)
	s.AddSourceImage("img.png", false)
	if store.Contains(KeyCustomSourceImages) {
		t.Fatalf("non-removable source written to store: %v", store.StringList(KeyCustomSourceImages))
	}
}

func TestRemoveSourceOutOfBounds(t *testing.T) {
	s, _ := newTestSettings(t, nil)
	n := s.SourceImages().Len()
	if s.RemoveSourceImage(n) || s.RemoveSourceImage(-1) {
		t.Fatalf("out-of-range remove returned true")
	}
	if s.SourceImages().Len() != n {
		t.Fatalf("list changed on failed remove")
	}
}

func TestRemoveDefaultSourceLeavesPersistedList(t *testing.T) {
	store := kvstore.New(kvstore.NewMemory())
	s, _ := newTestSettings(t, store)
	s.AddSourceImage("img.png", true)
	if !s.RemoveSourceImage(0) {
		t.Fatalf("RemoveSourceImage(0) returned false")
	}
	if got := store.StringList(KeyCustomSourceImages); !equalStrings(got, []string{"img.png"}) {
		t.Fatalf("persisted custom = %v", got)
	}
}

func TestCustomSourcesRestoredOnConstruction(t *testing.T) {
	store := kvstore.New(kvstore.NewMemory())
	_ = store.SetStringList(KeyCustomSourceImages, []string{"img.png", "other.png", "img.png"})
	s, _ := newTestSettings(t, store)

	want := append(defaultFiles(), "img.png", "other.png")
	if got := files(s.SourceImages().Entries()); !equalStrings(got, want) {
		t.Fatalf("sources = %v, want %v", got, want)
	}
	for _, e := range s.SourceImages().Entries()[4:] {
		if !e.CanRemove {
			t.Fatalf("custom source %s should be removable", e.File)
		}
	}
	// Restoring must not append again.
	if got := store.StringList(KeyCustomSourceImages); len(got) != 3 {
		t.Fatalf("persisted custom rewritten: %v", got)
	}
}

func TestSelectedSourceFile(t *testing.T) {
	s, _ := newTestSettings(t, nil)
	s.AddSourceImage("img.png", true)
	s.SourceImages().SetSelectedIndex(4)
	if got := s.SourceImages().SelectedFile(); got != "img.png" {
		t.Fatalf("SelectedFile = %q", got)
	}
	s.RemoveSourceImage(4)
	if got := s.SourceImages().SelectedFile(); got != "" {
		t.Fatalf("SelectedFile after remove = %q, want empty", got)
	}
}
