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

	"effectcomposer/internal/kvstore"
	applog "effectcomposer/internal/log"
	"effectcomposer/internal/model"
)

// UpdateRecentProjects moves file to the top of the recent projects, adding
// it when missing and dropping the oldest entry past MaxRecentProjects.
// With an empty name or file it only reloads the menu from the store.
func (s *Settings) UpdateRecentProjects(name, file string) {
	if file != "" && s.recent.Len() > 0 {
		if top, err := s.recent.At(0); err == nil && top.File == file {
			return
		}
	}

	recs := s.store.Array(KeyRecentProjects)
	entries := make([]model.MenuEntry, 0, MaxRecentProjects+1)
	found := -1
	for i, r := range recs {
		if i >= MaxRecentProjects {
			break
		}
		e := model.MenuEntry{Name: r[KeyProjectName], File: r[KeyProjectFile]}
		if e.Name == "" || e.File == "" {
			continue
		}
		entries = append(entries, e)
		// Store index and list index differ once malformed records are skipped.
		if e.File == file {
			found = len(entries) - 1
		}
	}

	if name != "" && file != "" {
		switch {
		case found == -1:
			entries = slices.Insert(entries, 0, model.MenuEntry{Name: name, File: file})
		case found > 0:
			e := entries[found]
			entries = slices.Delete(entries, found, found+1)
			entries = slices.Insert(entries, 0, e)
		}
		if len(entries) > MaxRecentProjects {
			entries = entries[:MaxRecentProjects]
		}
		if err := s.store.SetArray(KeyRecentProjects, toRecords(entries)); err != nil {
			applog.WithOperation(s.log, "update_recent").Error("persist recent projects failed",
				slog.String("file", file), slog.Any("err", err))
		}
	}

	s.recent.Reset(entries)
}

// ClearRecentProjects empties the persisted and in-memory recent projects.
func (s *Settings) ClearRecentProjects() {
	if err := s.store.SetArray(KeyRecentProjects, nil); err != nil {
		applog.WithOperation(s.log, "clear_recent").Error("persist recent projects failed", slog.Any("err", err))
	}
	s.recent.Reset(nil)
}

// RemoveRecentProject removes the first persisted entry for file and the menu
// entry at the same position.
func (s *Settings) RemoveRecentProject(file string) {
	l := applog.WithOperation(s.log, "remove_recent").With(slog.String("file", file))
	recs := s.store.Array(KeyRecentProjects)
	for i, r := range recs {
		if r[KeyProjectFile] != file {
			continue
		}
		recs = slices.Delete(recs, i, i+1)
		if err := s.store.SetArray(KeyRecentProjects, recs); err != nil {
			l.Error("persist recent projects failed", slog.Any("err", err))
		}
		s.removeRecentEntry(i, file)
		return
	}
}

// removeRecentEntry drops the menu entry at pos, or the entry for file when
// skipped records have shifted the menu against the store.
func (s *Settings) removeRecentEntry(pos int, file string) {
	if e, err := s.recent.At(pos); err == nil && e.File == file {
		_ = s.recent.RemoveAt(pos)
		return
	}
	for i, e := range s.recent.Entries() {
		if e.File == file {
			_ = s.recent.RemoveAt(i)
			return
		}
	}
}

func toRecords(entries []model.MenuEntry) []kvstore.Record {
	out := make([]kvstore.Record, len(entries))
	for i, e := range entries {
		out[i] = kvstore.Record{KeyProjectName: e.Name, KeyProjectFile: e.File}
	}
	return out
}
