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
	"log/slog"

	applog "effectcomposer/internal/log"
)

// UseLegacyShaders reports whether shaders are baked for legacy GLSL targets.
func (s *Settings) UseLegacyShaders() bool {
	return s.store.Bool(KeyUseLegacyShaders, false)
}

// SetUseLegacyShaders stores the flag and, on change, notifies listeners and
// rebakes the shaders for the new targets.
func (s *Settings) SetUseLegacyShaders(legacy bool) {
	if s.UseLegacyShaders() == legacy {
		return
	}
	if err := s.store.SetBool(KeyUseLegacyShaders, legacy); err != nil {
		applog.WithOperation(s.log, "set_legacy_shaders").Error("persist failed", slog.Any("err", err))
	}
	s.notify(PropUseLegacyShaders)
	s.effects.UpdateBakedShaderVersions()
	s.effects.DoBakeShaders()
}

func (s *Settings) CodeFontFile() string {
	return s.store.String(KeyCodeFontFile, DefaultCodeFontFile)
}

func (s *Settings) CodeFontSize() int {
	return s.store.Int(KeyCodeFontSize, DefaultCodeFontSize)
}

// SetCodeFontFile stores font when it differs from the current value. A file
// that does not parse as a font is logged and stored anyway.
func (s *Settings) SetCodeFontFile(font string) {
	if s.CodeFontFile() == font {
		return
	}
	l := applog.WithOperation(s.log, "set_code_font").With(slog.String("font", font))
	if family, err := inspectFont(s.resolver.RelativeToAbsolute(font, s.dataRoot)); err != nil {
		l.Warn("can't read font", slog.Any("err", err))
	} else {
		l.Debug("code font", slog.String("family", family))
	}
	if err := s.store.SetString(KeyCodeFontFile, font); err != nil {
		l.Error("persist failed", slog.Any("err", err))
	}
	s.notify(PropCodeFontFile)
}

// ValidCodeFontSize reports whether size is within MinCodeFontSize..MaxCodeFontSize.
func ValidCodeFontSize(size int) bool {
	return size >= MinCodeFontSize && size <= MaxCodeFontSize
}

// SetCodeFontSize stores size when it differs from the current value. Sizes
// outside the valid range are logged and ignored.
func (s *Settings) SetCodeFontSize(size int) {
	if s.CodeFontSize() == size {
		return
	}
	l := applog.WithOperation(s.log, "set_code_font_size").With(slog.Int("size", size))
	if !ValidCodeFontSize(size) {
		l.Warn("code font size out of range", slog.Int("min", MinCodeFontSize), slog.Int("max", MaxCodeFontSize))
		return
	}
	if err := s.store.SetInt(KeyCodeFontSize, size); err != nil {
		l.Error("persist failed", slog.Any("err", err))
	}
	s.notify(PropCodeFontSize)
}

// ResetCodeFont restores the default code font file and size.
func (s *Settings) ResetCodeFont() {
	s.SetCodeFontFile(DefaultCodeFontFile)
	s.SetCodeFontSize(DefaultCodeFontSize)
}
