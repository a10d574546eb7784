/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package model

// ImageEntry is one image offered as an effect source or preview background.
// Width and Height are 0 when the file could not be read as an image.
type ImageEntry struct {
	Name      string
	File      string
	Width     int
	Height    int
	CanRemove bool
}

// ImageList is an ordered, observable list of images keyed by file path.
// It also tracks the currently selected image.
type ImageList struct {
	list[ImageEntry]
	selected         int
	selectionChanged []func()
}

func NewImageList() *ImageList { return &ImageList{} }

func (m *ImageList) Len() int { return len(m.items) }

func (m *ImageList) At(i int) (ImageEntry, error) { return m.at(i) }

// Append adds e at the end of the list.
func (m *ImageList) Append(e ImageEntry) { m.append(e) }

// RemoveAt deletes the entry at i.
func (m *ImageList) RemoveAt(i int) error { return m.removeAt(i) }

// Contains reports whether an entry with the given file path exists.
func (m *ImageList) Contains(file string) bool {
	return m.IndexOf(file) >= 0
}

// IndexOf returns the position of file, or -1.
func (m *ImageList) IndexOf(file string) int {
	for i, e := range m.items {
		if e.File == file {
			return i
		}
	}
	return -1
}

// Entries returns a copy of the current entries in display order.
func (m *ImageList) Entries() []ImageEntry { return m.snapshot() }

// OnReset registers a listener for bracketed list changes.
func (m *ImageList) OnReset(rl ResetListener) (remove func()) { return m.addListener(rl) }

// OnSelectionChanged registers fn to run whenever the selected index changes.
func (m *ImageList) OnSelectionChanged(fn func()) {
	m.selectionChanged = append(m.selectionChanged, fn)
}

// SelectedIndex returns the index last passed to SetSelectedIndex.
func (m *ImageList) SelectedIndex() int { return m.selected }

func (m *ImageList) SetSelectedIndex(i int) {
	if m.selected == i {
		return
	}
	m.selected = i
	for _, fn := range m.selectionChanged {
		fn()
	}
}

// SelectedFile returns the file of the selected entry, or "" when the
// selection does not point at an entry.
func (m *ImageList) SelectedFile() string {
	if m.selected >= 0 && m.selected < len(m.items) {
		return m.items[m.selected].File
	}
	return ""
}
