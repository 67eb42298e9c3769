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
	"net/http"
	"net/url"
	"path"
	"strings"
)

// ForwardedPrefixHeader, if present, specifies the prefix that need to be
// preprended to the request's URI path in order to learn the original path
// when hitting the path rewriting proxy.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI (or sometimes only
// the original URI path) of a request when hitting the first path rewriting
// proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// cleanReqPath returns the request's URL path, rooted and cleaned. This is
// only used for deriving the base path and never for asset lookups.
func cleanReqPath(r *http.Request) string {
	return path.Clean("/" + r.URL.Path)
}

// originalReqPath returns the request path as seen by the first proxy in a
// chain, derived from either a forwarded prefix or a forwarded URI. Without
// any usable forwarding information it returns the cleaned request path.
func originalReqPath(r *http.Request) string {
	reqPath := cleanReqPath(r)
	switch prefix, uri := r.Header.Get(ForwardedPrefixHeader), r.Header.Get(ForwardedUriHeader); {
	case prefix != "":
		return path.Join(path.Clean("/"+prefix), reqPath)
	case strings.HasPrefix(uri, "/"):
		// only the original path got passed.
		return path.Clean(uri)
	case uri != "":
		if u, err := url.Parse(uri); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return reqPath
}

// basename returns the base path the client sees the SPA at, always ending in
// "/" as browsers otherwise clip the last element. It is the part of the
// original request path in front of the request path we got; if the two
// don't line up, the base is "/".
func basename(r *http.Request) string {
	reqPath := cleanReqPath(r)
	original := originalReqPath(r)
	if reqPath == "/" {
		// a proxy might have redirected /foo to /foo/ before rewriting it to /.
		original = strings.TrimSuffix(original, "/") + "/"
	}
	base, ok := strings.CutSuffix(original, reqPath)
	if !ok {
		base = ""
	}
	return strings.TrimSuffix(base, "/") + "/"
}
