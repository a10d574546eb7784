/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package effects

import (
	"log/slog"
	"strings"
	"sync"

	applog "effectcomposer/internal/log"
)

// ShaderTarget is one shading language version a baked shader is generated for.
type ShaderTarget struct {
	Language string // "glsl", "hlsl", "msl"
	Version  string
}

func (t ShaderTarget) String() string { return t.Language + " " + t.Version }

var (
	// legacyTargets cover older GL/GLES drivers.
	legacyTargets = []ShaderTarget{
		{"glsl", "100es"}, {"glsl", "120"}, {"hlsl", "50"}, {"msl", "12"},
	}
	modernTargets = []ShaderTarget{
		{"glsl", "300es"}, {"glsl", "310es"}, {"glsl", "410"}, {"glsl", "440"},
		{"hlsl", "50"}, {"msl", "12"},
	}
)

// Manager tracks which shader targets are baked and triggers rebakes.
// Legacy reports the current value of the legacy-shaders preference.
type Manager struct {
	mu         sync.Mutex
	legacy     func() bool
	targets    []ShaderTarget
	generation int
	log        *slog.Logger
}

// NewManager returns a Manager reading the legacy preference through legacy,
// which may be nil until SetLegacySource is called.
func NewManager(legacy func() bool) *Manager {
	m := &Manager{legacy: legacy, log: applog.WithComponent("effects")}
	m.UpdateBakedShaderVersions()
	return m
}

// SetLegacySource replaces the func that reports the legacy-shaders preference.
// The settings facade is usually built after the manager, so the CLI wires it late.
func (m *Manager) SetLegacySource(legacy func() bool) {
	m.mu.Lock()
	m.legacy = legacy
	m.mu.Unlock()
}

// UpdateBakedShaderVersions selects the target set from the legacy preference.
func (m *Manager) UpdateBakedShaderVersions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := modernTargets
	if m.legacy != nil && m.legacy() {
		src = legacyTargets
	}
	m.targets = append([]ShaderTarget(nil), src...)
	m.log.Debug("baked shader versions updated", slog.String("targets", joinTargets(m.targets)))
}

// DoBakeShaders starts a new bake generation for the current targets. The
// shader tool itself runs in the editor process; this side records and logs it.
func (m *Manager) DoBakeShaders() {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	targets := joinTargets(m.targets)
	m.mu.Unlock()

	applog.WithOperation(m.log, "bake").Info("shaders baked",
		slog.Int("generation", gen), slog.String("targets", targets))
}

// Targets returns the current target set.
func (m *Manager) Targets() []ShaderTarget {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ShaderTarget(nil), m.targets...)
}

// Generation counts DoBakeShaders calls since the manager was created.
func (m *Manager) Generation() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func joinTargets(ts []ShaderTarget) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}
