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
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

var (
	// ErrAssetMiss signals that no asset exists for a file-like candidate key.
	// Unless strict asset handling is enabled, a Handler recovers from it by
	// serving the SPA shell instead.
	ErrAssetMiss = fmt.Errorf("asset not found: %w", fs.ErrNotExist)
	// ErrTotalMiss signals that neither the candidate asset nor the SPA shell
	// exist.
	ErrTotalMiss = fmt.Errorf("neither asset nor %s found: %w", IndexKey, fs.ErrNotExist)
)

// NormalizedHttpError writes a normalized HTTP error message and HTTP status
// code based on the specified error, but not leaking any interesting internal
// server details from this specified error. The message is always plain text.
func NormalizedHttpError(w http.ResponseWriter, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	if errors.Is(err, fs.ErrPermission) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
