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

package middleware

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compressionMinSize is the minimum response size worth compressing.
const compressionMinSize = 1024

// Compression returns a middleware compressing responses for clients
// accepting gzip. Already compressed content types, such as most images, are
// passed through.
func Compression() (func(http.Handler) http.Handler, error) {
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(compressionMinSize))
	if err != nil {
		return nil, err
	}
	return func(next http.Handler) http.Handler {
		return wrapper(next)
	}, nil
}
