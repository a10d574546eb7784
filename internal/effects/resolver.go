/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package effects holds the effect-manager side that settings talk to:
// resolving bundled asset paths against the data root and rebaking shaders
// when the shader language target changes.
package effects

import (
	"path/filepath"
	"strings"
)

// Resolver turns data-relative paths into absolute ones.
type Resolver struct {
	DataRoot string
}

// RelativeToAbsolute joins rel onto root. Absolute paths and URLs are returned
// unchanged; an empty root falls back to r.DataRoot.
func (r Resolver) RelativeToAbsolute(rel, root string) string {
	if rel == "" || filepath.IsAbs(rel) || strings.Contains(rel, "://") || strings.HasPrefix(strings.ToLower(rel), "file:") {
		return rel
	}
	if root == "" {
		root = r.DataRoot
	}
	abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return filepath.Join(root, filepath.FromSlash(rel))
	}
	return abs
}
