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
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	applog "effectcomposer/internal/log"
)

//go:embed schema.json
var exportSchema []byte

// Document is the JSON form of the persisted preferences used by Export and Import.
// Pointer fields are optional on import.
type Document struct {
	CustomSourceImages []string        `json:"customSourceImages,omitempty"`
	RecentProjects     []RecentProject `json:"recentProjects,omitempty"`
	UseLegacyShaders   *bool           `json:"useLegacyShaders,omitempty"`
	CodeFontFile       *string         `json:"codeFontFile,omitempty"`
	CodeFontSize       *int            `json:"codeFontSize,omitempty"`
}

type RecentProject struct {
	Name string `json:"projectName"`
	File string `json:"projectFile"`
}

// ErrInvalidDocument wraps schema violations reported by Import.
var ErrInvalidDocument = errors.New("invalid settings document")

// Snapshot returns the persisted preferences as a Document. Scalars that were
// never stored are left out. A stored code font size outside the
// valid range, e.g. from a hand-edited store, is clamped so the document
// always imports again.
func (s *Settings) Snapshot() Document {
	doc := Document{CustomSourceImages: s.store.StringList(KeyCustomSourceImages)}
	if s.store.Contains(KeyUseLegacyShaders) {
		legacy := s.UseLegacyShaders()
		doc.UseLegacyShaders = &legacy
	}
	if s.store.Contains(KeyCodeFontFile) {
		if font := s.CodeFontFile(); font != "" {
			doc.CodeFontFile = &font
		}
	}
	if s.store.Contains(KeyCodeFontSize) {
		size := min(max(s.CodeFontSize(), MinCodeFontSize), MaxCodeFontSize)
		doc.CodeFontSize = &size
	}
	for _, e := range s.recent.Entries() {
		doc.RecentProjects = append(doc.RecentProjects, RecentProject{Name: e.Name, File: e.File})
	}
	return doc
}

// Export writes the preferences as indented JSON.
func (s *Settings) Export(w io.Writer) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Import validates a document written by Export and applies it through the
// regular operations, so listeners and write-through behave as for UI edits.
// Custom sources and recent projects are merged; scalars are replaced.
func (s *Settings) Import(r io.Reader) error {
	l := applog.WithOperation(s.log, "import")
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if err := validateDocument(data); err != nil {
		l.Warn("settings document rejected", slog.Any("err", err))
		return err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}

	added := 0
	for _, src := range doc.CustomSourceImages {
		if s.AddSourceImage(src, true) {
			added++
		}
	}
	// Oldest first so the document's first entry ends on top.
	for i := len(doc.RecentProjects) - 1; i >= 0; i-- {
		p := doc.RecentProjects[i]
		s.UpdateRecentProjects(p.Name, p.File)
	}
	if doc.UseLegacyShaders != nil {
		s.SetUseLegacyShaders(*doc.UseLegacyShaders)
	}
	if doc.CodeFontFile != nil {
		s.SetCodeFontFile(*doc.CodeFontFile)
	}
	if doc.CodeFontSize != nil {
		s.SetCodeFontSize(*doc.CodeFontSize)
	}
	l.Info("settings imported", slog.Int("sources_added", added), slog.Int("recent", len(doc.RecentProjects)))
	return nil
}

func validateDocument(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(exportSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}
