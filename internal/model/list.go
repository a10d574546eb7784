/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package model holds the list data behind the settings views: source and
// background images and the recent projects menu. Lists are observable; every
// membership change is bracketed by a begin/end reset pair so bound views only
// re-read a consistent list.
package model

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for an index outside [0, Len()).
var ErrOutOfRange = errors.New("index out of range")

// ResetListener observes bulk changes of a list. Views must not read the list
// between ResetBegun and ResetEnded.
type ResetListener interface {
	ResetBegun()
	ResetEnded()
}

// ResetFuncs adapts plain funcs to ResetListener. Nil funcs are skipped.
type ResetFuncs struct {
	Begun func()
	Ended func()
}

func (f ResetFuncs) ResetBegun() {
	if f.Begun != nil {
		f.Begun()
	}
}

func (f ResetFuncs) ResetEnded() {
	if f.Ended != nil {
		f.Ended()
	}
}

// list is the shared ordered storage of ImageList and MenuList.
type list[T any] struct {
	items     []T
	listeners map[int]ResetListener
	order     []int
	nextID    int
}

func (l *list[T]) addListener(rl ResetListener) (remove func()) {
	if l.listeners == nil {
		l.listeners = make(map[int]ResetListener)
	}
	id := l.nextID
	l.nextID++
	l.listeners[id] = rl
	l.order = append(l.order, id)
	return func() {
		delete(l.listeners, id)
		for i, v := range l.order {
			if v == id {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	}
}

// reset runs mutate between the begin and end notifications.
func (l *list[T]) reset(mutate func()) {
	ids := append([]int(nil), l.order...)
	for _, id := range ids {
		if rl, ok := l.listeners[id]; ok {
			rl.ResetBegun()
		}
	}
	mutate()
	for _, id := range ids {
		if rl, ok := l.listeners[id]; ok {
			rl.ResetEnded()
		}
	}
}

func (l *list[T]) at(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(l.items) {
		return zero, fmt.Errorf("entry %d of %d: %w", i, len(l.items), ErrOutOfRange)
	}
	return l.items[i], nil
}

func (l *list[T]) append(v T) {
	l.reset(func() { l.items = append(l.items, v) })
}

func (l *list[T]) removeAt(i int) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("remove entry %d of %d: %w", i, len(l.items), ErrOutOfRange)
	}
	l.reset(func() { l.items = append(l.items[:i:i], l.items[i+1:]...) })
	return nil
}

func (l *list[T]) replace(items []T) {
	cp := append([]T(nil), items...)
	l.reset(func() { l.items = cp })
}

func (l *list[T]) snapshot() []T { return append([]T(nil), l.items...) }
