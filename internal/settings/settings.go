/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package settings persists and exposes the editor preferences of the effect
// composer: source and background images, recent projects, the shader
// language mode and the code editor font.
//
// The in-memory lists are the read path for views; every mutation is written
// through to the key/value store before the call returns. Operations report
// validation failures with a false return and never fail on storage errors,
// which are logged instead.
package settings

import (
	"log/slog"
	"path/filepath"

	"effectcomposer/internal/effects"
	"effectcomposer/internal/imageprobe"
	"effectcomposer/internal/kvstore"
	applog "effectcomposer/internal/log"
	"effectcomposer/internal/model"
)

// Store keys.
const (
	KeyCustomSourceImages = "customSourceImages"
	KeyRecentProjects     = "recentProjects"
	KeyProjectName        = "projectName"
	KeyProjectFile        = "projectFile"
	KeyUseLegacyShaders   = "useLegacyShaders"
	KeyCodeFontFile       = "codeFontFile"
	KeyCodeFontSize       = "codeFontSize"
)

// StoredKeys are the top-level keys Settings writes. Record fields are not included.
var StoredKeys = []string{
	KeyCustomSourceImages,
	KeyRecentProjects,
	KeyUseLegacyShaders,
	KeyCodeFontFile,
	KeyCodeFontSize,
}

const (
	DefaultCodeFontFile = "fonts/SourceCodePro-Regular.ttf"
	DefaultCodeFontSize = 14
	// MinCodeFontSize and MaxCodeFontSize bound the code font size. The
	// export schema carries the same limits.
	MinCodeFontSize = 1
	MaxCodeFontSize = 200

	// MaxRecentProjects caps the recent projects menu.
	MaxRecentProjects = 6
)

var defaultSources = []string{
	"defaultnodes/images/qt_logo_green_rgb.png",
	"defaultnodes/images/quit_logo.png",
	"defaultnodes/images/whitecircle.png",
	"defaultnodes/images/blackcircle.png",
}

var defaultBackgrounds = []string{
	"images/background_dark.jpg",
	"images/background_light.jpg",
	"images/background_colorful.jpg",
}

// NumDefaultSources is the number of built-in source images. They always
// occupy the first positions of the source list.
func NumDefaultSources() int { return len(defaultSources) }

// Store is the key/value persistence used by Settings. *kvstore.Store implements it.
type Store interface {
	Contains(key string) bool
	Bool(key string, fallback bool) bool
	SetBool(key string, v bool) error
	Int(key string, fallback int) int
	SetInt(key string, v int) error
	String(key string, fallback string) string
	SetString(key string, v string) error
	StringList(key string) []string
	SetStringList(key string, v []string) error
	Array(key string) []kvstore.Record
	SetArray(key string, recs []kvstore.Record) error
}

// PathResolver resolves bundled relative paths against a data root.
type PathResolver interface {
	RelativeToAbsolute(rel, root string) string
}

// ImageProber reports image readability and dimensions.
type ImageProber interface {
	Probe(path string) (imageprobe.Info, error)
}

// EffectManager is notified when the shader language mode changes.
type EffectManager interface {
	UpdateBakedShaderVersions()
	DoBakeShaders()
}

// Property identifies a scalar preference in change notifications.
type Property int

const (
	PropUseLegacyShaders Property = iota
	PropCodeFontFile
	PropCodeFontSize
)

func (p Property) String() string {
	switch p {
	case PropUseLegacyShaders:
		return KeyUseLegacyShaders
	case PropCodeFontFile:
		return KeyCodeFontFile
	case PropCodeFontSize:
		return KeyCodeFontSize
	default:
		return "unknown"
	}
}

// Options wires the collaborators. A nil Store means an in-memory store that
// is lost on exit; nil Resolver and Prober use the filesystem implementations
// and a nil Effects ignores shader rebakes.
type Options struct {
	Store    Store
	DataRoot string
	Resolver PathResolver
	Prober   ImageProber
	Effects  EffectManager
}

// Settings owns the preference lists for the lifetime of the application.
type Settings struct {
	store    Store
	dataRoot string
	resolver PathResolver
	prober   ImageProber
	effects  EffectManager
	log      *slog.Logger

	sources     *model.ImageList
	backgrounds *model.ImageList
	recent      *model.MenuList

	listeners []PropertyListener
}

type noopEffects struct{}

func (noopEffects) UpdateBakedShaderVersions() {}
func (noopEffects) DoBakeShaders()             {}

// New seeds the lists from the built-in defaults and the persisted custom
// entries, then loads the recent projects menu.
func New(opts Options) *Settings {
	s := &Settings{
		store:       opts.Store,
		dataRoot:    opts.DataRoot,
		resolver:    opts.Resolver,
		prober:      opts.Prober,
		effects:     opts.Effects,
		log:         applog.WithComponent("settings"),
		sources:     model.NewImageList(),
		backgrounds: model.NewImageList(),
		recent:      model.NewMenuList(),
	}
	if s.store == nil {
		s.store = kvstore.New(kvstore.NewMemory())
	}
	if s.resolver == nil {
		s.resolver = effects.Resolver{DataRoot: opts.DataRoot}
	}
	if s.prober == nil {
		s.prober = imageprobe.Prober{}
	}
	if s.effects == nil {
		s.effects = noopEffects{}
	}

	for _, src := range defaultSources {
		s.AddSourceImage(s.resolver.RelativeToAbsolute(src, s.dataRoot), false)
	}
	for _, src := range s.store.StringList(KeyCustomSourceImages) {
		s.AddSourceImage(src, true)
	}
	for _, bg := range defaultBackgrounds {
		file := s.resolver.RelativeToAbsolute(bg, s.dataRoot)
		s.backgrounds.Append(model.ImageEntry{Name: displayName(file), File: file})
	}
	s.UpdateRecentProjects("", "")
	return s
}

// SourceImages returns the source image list. Views may observe it but must
// mutate it through Settings.
func (s *Settings) SourceImages() *model.ImageList { return s.sources }

// BackgroundImages returns the preview background list.
func (s *Settings) BackgroundImages() *model.ImageList { return s.backgrounds }

// RecentProjects returns the recent projects menu, most recent first.
func (s *Settings) RecentProjects() *model.MenuList { return s.recent }

// PropertyListener is called after a scalar preference changed.
type PropertyListener func(Property)

// OnPropertyChanged registers fn for scalar preference changes.
func (s *Settings) OnPropertyChanged(fn PropertyListener) {
	s.listeners = append(s.listeners, fn)
}

func (s *Settings) notify(p Property) {
	for _, fn := range s.listeners {
		fn(p)
	}
}

func displayName(file string) string {
	return filepath.Base(imageprobe.LocalPath(file))
}
