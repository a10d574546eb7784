/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package imageprobe reports whether a file is a readable image and its pixel size
// without decoding the pixel data.
package imageprobe

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	// Register decoders: standard formats plus the x/image ones.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned when the file exists but no registered decoder recognizes it.
var ErrUnsupported = errors.New("unsupported image format")

// Size is an image's pixel dimensions.
type Size struct {
	Width  int
	Height int
}

// Info is the probe result.
type Info struct {
	Size
	Format string
}

// Prober probes files on the local filesystem.
type Prober struct{}

// Probe reads only the image header of path.
func (Prober) Probe(path string) (Info, error) { return Probe(path) }

// Probe reads only the image header of path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Info{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
		}
		return Info{}, fmt.Errorf("decode header %s: %w", filepath.Base(path), err)
	}
	return Info{Size: Size{Width: cfg.Width, Height: cfg.Height}, Format: format}, nil
}

// LocalPath turns a file URL ("file:///x/y.png", "file:y.png") into a filesystem
// path. Anything without a file scheme is returned unchanged.
func LocalPath(s string) string {
	if !hasFileScheme(s) {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return strings.TrimPrefix(s[len("file:"):], "//")
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	if u.Host != "" && u.Host != "localhost" {
		// UNC share
		p = "//" + u.Host + p
	}
	// file:///C:/x.png -> C:/x.png
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	if runtime.GOOS == "windows" {
		p = filepath.FromSlash(p)
	}
	return p
}

func hasFileScheme(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "file:")
}
