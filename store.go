// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spashell

import (
	"fmt"
	"io/fs"
	"sort"
)

// IndexKey is the store key of the SPA shell.
const IndexKey = "index.html"

// Asset is a single static resource of an SPA bundle. Its content type isn't
// stored but instead derived from the Path's extension when serving it.
type Asset struct {
	Path string // unrooted, slash-separated path, such as "assets/app.a1b2.js".
	Data []byte // raw file contents; must not be modified.
}

// Store is an immutable mapping from normalized asset paths to assets. Lookups
// are exact-match and case-sensitive. A Store never changes after creation and
// thus is safe for concurrent use without any locking.
//
// A nil *Store behaves like an empty store.
type Store struct {
	assets map[string]Asset
}

// NewStore returns a new Store for the specified path→contents mapping. The
// mapping is copied, so later changes to files don't affect the Store. Paths
// are taken verbatim.
func NewStore(files map[string][]byte) *Store {
	s := &Store{assets: make(map[string]Asset, len(files))}
	for path, data := range files {
		s.assets[path] = Asset{Path: path, Data: data}
	}
	return s
}

// StoreFromFS returns a new Store containing all regular files found in fsys,
// keyed by their unrooted fs.FS paths. Use fs.Sub to strip any leading build
// output directory from an embed.FS first:
//
//	dist, _ := fs.Sub(embeddedFiles, "dist")
//	store, err := StoreFromFS(dist)
func StoreFromFS(fsys fs.FS) (*Store, error) {
	s := &Store{assets: map[string]Asset{}}
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		s.assets[path] = Asset{Path: path, Data: data}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot populate asset store: %w", err)
	}
	return s, nil
}

// Get returns the asset stored under the exact path, and true. If there is no
// such asset, Get returns false instead.
func (s *Store) Get(path string) (Asset, bool) {
	if s == nil {
		return Asset{}, false
	}
	a, ok := s.assets[path]
	return a, ok
}

// Has reports whether the store contains an asset with the exact path.
func (s *Store) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Len returns the number of assets in the store.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.assets)
}

// Paths returns the sorted paths of all assets in the store.
func (s *Store) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.assets))
	for path := range s.assets {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
