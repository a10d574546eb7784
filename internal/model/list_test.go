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

import (
	"errors"
	"testing"
)

// recorder checks that every change is bracketed and that the list is never read mid-change.
type recorder struct {
	events []string
	open   bool
}

func (r *recorder) ResetBegun() {
	r.events = append(r.events, "begin")
	r.open = true
}

func (r *recorder) ResetEnded() {
	r.events = append(r.events, "end")
	r.open = false
}

func TestImageListAppendAndRemoveBracketed(t *testing.T) {
	l := NewImageList()
	rec := &recorder{}
	l.OnReset(rec)

	var lenAtEnd []int
	l.OnReset(ResetFuncs{Ended: func() { lenAtEnd = append(lenAtEnd, l.Len()) }})

	l.Append(ImageEntry{File: "/a.png", Width: 4, Height: 2})
	l.Append(ImageEntry{File: "/b.png"})
	if err := l.RemoveAt(0); err != nil {
		t.Fatalf("RemoveAt(0): %v", err)
	}

	want := []string{"begin", "end", "begin", "end", "begin", "end"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", rec.events, want)
		}
	}
	if got := []int{1, 2, 1}; len(lenAtEnd) != 3 || lenAtEnd[0] != got[0] || lenAtEnd[1] != got[1] || lenAtEnd[2] != got[2] {
		t.Fatalf("lengths seen after reset = %v, want %v", lenAtEnd, got)
	}
	e, err := l.At(0)
	if err != nil || e.File != "/b.png" {
		t.Fatalf("At(0) = %+v, %v", e, err)
	}
}

func TestImageListOutOfRange(t *testing.T) {
	l := NewImageList()
	rec := &recorder{}
	l.OnReset(rec)
	l.Append(ImageEntry{File: "/a.png"})

	if _, err := l.At(1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("At(1) err = %v, want ErrOutOfRange", err)
	}
	if _, err := l.At(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("At(-1) err = %v, want ErrOutOfRange", err)
	}
	if err := l.RemoveAt(3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("RemoveAt(3) err = %v, want ErrOutOfRange", err)
	}
	if len(rec.events) != 2 {
		t.Fatalf("failed remove must not notify, events = %v", rec.events)
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
}

func TestImageListSelection(t *testing.T) {
	l := NewImageList()
	l.Append(ImageEntry{File: "/a.png"})
	l.Append(ImageEntry{File: "/b.png"})

	changes := 0
	l.OnSelectionChanged(func() { changes++ })

	if got := l.SelectedFile(); got != "/a.png" {
		t.Fatalf("initial SelectedFile() = %q", got)
	}
	l.SetSelectedIndex(1)
	l.SetSelectedIndex(1)
	if changes != 1 {
		t.Fatalf("selection notifications = %d, want 1", changes)
	}
	if got := l.SelectedFile(); got != "/b.png" {
		t.Fatalf("SelectedFile() = %q, want /b.png", got)
	}
	l.SetSelectedIndex(5)
	if got := l.SelectedFile(); got != "" {
		t.Fatalf("SelectedFile() past end = %q, want empty", got)
	}
	l.SetSelectedIndex(-1)
	if got := l.SelectedFile(); got != "" {
		t.Fatalf("SelectedFile() negative = %q, want empty", got)
	}
}

func TestListenerRemoval(t *testing.T) {
	l := NewMenuList()
	rec := &recorder{}
	remove := l.OnReset(rec)
	l.Append(MenuEntry{Name: "A", File: "/a"})
	remove()
	l.Append(MenuEntry{Name: "B", File: "/b"})
	if len(rec.events) != 2 {
		t.Fatalf("removed listener still notified: %v", rec.events)
	}
}

func TestMenuListResetReplacesContent(t *testing.T) {
	l := NewMenuList()
	l.Append(MenuEntry{Name: "old", File: "/old"})
	in := []MenuEntry{{Name: "A", File: "/a"}, {Name: "B", File: "/b"}}
	l.Reset(in)
	in[0].Name = "mutated"

	got := l.Entries()
	if len(got) != 2 || got[0].Name != "A" || got[1].File != "/b" {
		t.Fatalf("Entries() = %+v", got)
	}
	l.Reset(nil)
	if l.Len() != 0 {
		t.Fatalf("Len() after empty reset = %d", l.Len())
	}
}
