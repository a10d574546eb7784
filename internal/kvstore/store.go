/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	applog "effectcomposer/internal/log"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("settings store closed")

// Record is one element of an array value, e.g. {projectName, projectFile}.
type Record map[string]string

// Backend stores raw values. Get returns values as the backend decoded them
// (YAML and JSON yield different numeric and slice types); Store normalizes them.
type Backend interface {
	Get(key string) (any, bool, error)
	Put(key string, value any) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// Locator is implemented by backends that live at a filesystem location.
type Locator interface {
	Location() string
}

// Store gives typed access to a Backend. Reads never fail: a missing or
// malformed value yields the caller's fallback and malformed values are logged.
type Store struct {
	b   Backend
	log *slog.Logger
	ctx context.Context // tags records with the backend location
}

func New(b Backend) *Store {
	s := &Store{b: b, log: applog.WithComponent("kvstore")}
	s.ctx = applog.WithStore(context.Background(), s.Location())
	return s
}

// Location returns the backend location, or "" for in-process backends.
func (s *Store) Location() string {
	if loc, ok := s.b.(Locator); ok {
		return loc.Location()
	}
	return ""
}

func (s *Store) get(key string) (any, bool) {
	v, ok, err := s.b.Get(key)
	if err != nil {
		s.log.WarnContext(s.ctx, "read failed", slog.String("key", key), slog.Any("err", err))
		return nil, false
	}
	return v, ok
}

func (s *Store) malformed(key string, v any) {
	s.log.WarnContext(s.ctx, "malformed value ignored", slog.String("key", key), slog.String("type", fmt.Sprintf("%T", v)))
}

func (s *Store) put(key string, v any) error {
	if err := s.b.Put(key, v); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Contains reports whether key holds a value.
func (s *Store) Contains(key string) bool {
	_, ok := s.get(key)
	return ok
}

func (s *Store) Bool(key string, fallback bool) bool {
	v, ok := s.get(key)
	if !ok {
		return fallback
	}
	b, ok := toBool(v)
	if !ok {
		s.malformed(key, v)
		return fallback
	}
	return b
}

func (s *Store) SetBool(key string, v bool) error { return s.put(key, v) }

func (s *Store) Int(key string, fallback int) int {
	v, ok := s.get(key)
	if !ok {
		return fallback
	}
	n, ok := toInt(v)
	if !ok {
		s.malformed(key, v)
		return fallback
	}
	return n
}

func (s *Store) SetInt(key string, v int) error { return s.put(key, v) }

func (s *Store) String(key string, fallback string) string {
	v, ok := s.get(key)
	if !ok {
		return fallback
	}
	str, ok := toString(v)
	if !ok {
		s.malformed(key, v)
		return fallback
	}
	return str
}

func (s *Store) SetString(key string, v string) error { return s.put(key, v) }

// StringList returns the list under key; nil when absent or malformed.
// A single string is read as a one-element list.
func (s *Store) StringList(key string) []string {
	v, ok := s.get(key)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			str, ok := toString(e)
			if !ok {
				s.malformed(key, e)
				continue
			}
			out = append(out, str)
		}
		return out
	}
	s.malformed(key, v)
	return nil
}

func (s *Store) SetStringList(key string, v []string) error {
	if v == nil {
		v = []string{}
	}
	return s.put(key, append([]string(nil), v...))
}

// Array returns the records under key in stored order. Elements that are not
// records are skipped; non-string fields are formatted.
func (s *Store) Array(key string) []Record {
	v, ok := s.get(key)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []Record:
		out := make([]Record, len(t))
		for i, r := range t {
			out[i] = cloneRecord(r)
		}
		return out
	case []any:
		out := make([]Record, 0, len(t))
		for _, e := range t {
			r, ok := toRecord(e)
			if !ok {
				s.malformed(key, e)
				continue
			}
			out = append(out, r)
		}
		return out
	}
	s.malformed(key, v)
	return nil
}

// SetArray replaces the whole array under key.
func (s *Store) SetArray(key string, recs []Record) error {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = cloneRecord(r)
	}
	return s.put(key, out)
}

func (s *Store) Remove(key string) error {
	if err := s.b.Delete(key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	keys, err := s.b.Keys()
	if err != nil {
		s.log.WarnContext(s.ctx, "list keys failed", slog.Any("err", err))
		return nil
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) Close() error { return s.b.Close() }

func cloneRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	case float64:
		return t != 0, true
	}
	return false, false
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		if t > math.MaxInt {
			return 0, false
		}
		return int(t), true
	case float64:
		if t != math.Trunc(t) || t > math.MaxInt || t < math.MinInt {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	}
	return 0, false
}

func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int, int64, float64, bool:
		return fmt.Sprint(t), true
	}
	return "", false
}

func toRecord(v any) (Record, bool) {
	switch t := v.(type) {
	case Record:
		return cloneRecord(t), true
	case map[string]string:
		return cloneRecord(t), true
	case map[string]any:
		r := make(Record, len(t))
		for k, fv := range t {
			str, ok := toString(fv)
			if !ok {
				continue
			}
			r[k] = str
		}
		return r, true
	}
	return nil, false
}
