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
	"slices"

	"effectcomposer/internal/imageprobe"
	applog "effectcomposer/internal/log"
	"effectcomposer/internal/model"
)

// AddSourceImage appends an image to the source list. It returns false for an
// empty path or a path already in the list. An unreadable image is still
// added with 0x0 dimensions. Removable images are also recorded in the
// persisted custom source list.
func (s *Settings) AddSourceImage(path string, canRemove bool) bool {
	l := applog.WithOperation(s.log, "add_source").With(slog.String("file", path))
	if path == "" {
		return false
	}
	if s.sources.Contains(path) {
		l.Warn("image already exists in the list, not adding")
		return false
	}

	var size imageprobe.Size
	info, err := s.prober.Probe(imageprobe.LocalPath(path))
	if err != nil {
		l.Warn("can't read image", slog.Any("err", err))
	} else {
		size = info.Size
	}

	s.sources.Append(model.ImageEntry{
		Name:      displayName(path),
		File:      path,
		Width:     size.Width,
		Height:    size.Height,
		CanRemove: canRemove,
	})

	if canRemove {
		custom := s.store.StringList(KeyCustomSourceImages)
		if !slices.Contains(custom, path) {
			custom = append(custom, path)
			if err := s.store.SetStringList(KeyCustomSourceImages, custom); err != nil {
				l.Error("persist custom sources failed", slog.Any("err", err))
			}
		}
	}
	return true
}

// RemoveSourceImage removes the source image at index. Built-in images occupy
// the first NumDefaultSources positions, so the persisted custom entry sits
// at index-NumDefaultSources().
func (s *Settings) RemoveSourceImage(index int) bool {
	l := applog.WithOperation(s.log, "remove_source").With(slog.Int("index", index))
	if index < 0 || index >= s.sources.Len() {
		return false
	}
	if err := s.sources.RemoveAt(index); err != nil {
		return false
	}

	custom := s.store.StringList(KeyCustomSourceImages)
	pos := index - len(defaultSources)
	if pos < 0 || pos >= len(custom) {
		l.Warn("no persisted custom source at position", slog.Int("pos", pos), slog.Int("custom", len(custom)))
		return true
	}
	custom = slices.Delete(custom, pos, pos+1)
	if err := s.store.SetStringList(KeyCustomSourceImages, custom); err != nil {
		l.Error("persist custom sources failed", slog.Any("err", err))
	}
	return true
}
