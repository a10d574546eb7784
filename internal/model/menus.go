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

// MenuEntry is a named file shown in a menu, e.g. a recent project.
type MenuEntry struct {
	Name string
	File string
}

// MenuList is an ordered, observable list of menu entries.
type MenuList struct {
	list[MenuEntry]
}

func NewMenuList() *MenuList { return &MenuList{} }

func (m *MenuList) Len() int { return len(m.items) }

func (m *MenuList) At(i int) (MenuEntry, error) { return m.at(i) }

func (m *MenuList) Append(e MenuEntry) { m.append(e) }

func (m *MenuList) RemoveAt(i int) error { return m.removeAt(i) }

// Reset replaces the whole content in one bracketed change.
func (m *MenuList) Reset(entries []MenuEntry) { m.replace(entries) }

func (m *MenuList) Entries() []MenuEntry { return m.snapshot() }

func (m *MenuList) OnReset(rl ResetListener) (remove func()) { return m.addListener(rl) }
