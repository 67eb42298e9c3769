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
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Cache-Control directives for the SPA shell and for all other (hashed)
// assets.
const (
	ShellCacheControl = "no-cache"
	AssetCacheControl = "public, max-age=31536000, immutable"
)

// baseRe matches the base element in index.html in order to allow us to
// dynamically rewrite the base the SPA is served from.
//
// Please note: "*?" instead of "*" ensures that our irregular expression
// doesn't get too greedy, gobbling much more than it should until the last(!)
// empty element.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/>)`)

// Outcome tells how a request path was resolved.
type Outcome int

const (
	OutcomeAsset    Outcome = iota // served the asset matching a file-like path.
	OutcomeShell                   // served the shell for the root or a client-side route.
	OutcomeFallback                // served the shell instead of a missing file-like asset.
	OutcomeNotFound                // served nothing.
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAsset:
		return "asset"
	case OutcomeShell:
		return "shell"
	case OutcomeFallback:
		return "fallback"
	default:
		return "notfound"
	}
}

// Handler implements an http.Handler that serves assets from an immutable
// Store, falling back to the SPA shell for client-side routes and (unless
// strict) for missing file-like assets.
type Handler struct {
	store         *Store
	strict        bool          // answer missing file-like assets with 404.
	rewriteBase   bool          // rewrite the shell's <base href> from proxy headers.
	indexRewriter IndexRewriter // optional user function to rewrite the shell.
	observer      func(Outcome)
	log           *slog.Logger
}

// NewHandler returns a new HTTP handler serving the assets from the specified
// store. The store should contain an IndexKey asset; otherwise, all requests
// not matching an asset get a 404.
func NewHandler(store *Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandlerOption sets optional properties at the time of creating a Handler.
type HandlerOption func(*Handler)

// IndexRewriter rewrites (parts) of the SPA shell contents to be delivered to
// a requesting client. It can be optionally activated using the
// WithIndexRewriter option when creating a new Handler.
type IndexRewriter func(r *http.Request, index string) string

// WithIndexRewriter sets the specified IndexRewriter that gets called before
// delivering the SPA shell contents to requesting clients, allowing for
// application-specific changes.
func WithIndexRewriter(rewriter IndexRewriter) HandlerOption {
	return func(h *Handler) {
		h.indexRewriter = rewriter
	}
}

// WithBaseRewriting rewrites the base element of the SPA shell to match the
// base path the client sees, based on forwarding proxy headers.
func WithBaseRewriting() HandlerOption {
	return func(h *Handler) {
		h.rewriteBase = true
	}
}

// WithStrictAssets answers file-like paths without a matching asset with a
// 404 instead of the SPA shell.
func WithStrictAssets() HandlerOption {
	return func(h *Handler) {
		h.strict = true
	}
}

// WithObserver sets a function that gets called with the outcome of each
// request resolution.
func WithObserver(fn func(Outcome)) HandlerOption {
	return func(h *Handler) {
		h.observer = fn
	}
}

// WithLogger sets the logger for resolution diagnostics.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// Resolve returns the asset to serve for the specified raw, percent-encoded
// request path, together with how it got resolved. If nothing can be served,
// Resolve returns ErrTotalMiss or, in strict mode, ErrAssetMiss.
func (h *Handler) Resolve(rawPath string) (Asset, Outcome, error) {
	key := Candidate(rawPath)
	if a, ok := h.store.Get(key); ok {
		if key == IndexKey {
			return a, OutcomeShell, nil
		}
		return a, OutcomeAsset, nil
	}
	if key != IndexKey && h.strict {
		return Asset{}, OutcomeNotFound, ErrAssetMiss
	}
	if a, ok := h.store.Get(IndexKey); ok {
		return a, OutcomeFallback, nil
	}
	return Asset{}, OutcomeNotFound, ErrTotalMiss
}

// ServeHTTP serves the asset resolved from the request path with its content
// type and cache policy, or a plain-text 404 if there is nothing to serve. The
// request method isn't taken into account, except that HEAD requests don't get
// a body.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rawPath := r.URL.EscapedPath()
	asset, outcome, err := h.Resolve(rawPath)
	if h.observer != nil {
		h.observer(outcome)
	}
	if err != nil {
		h.log.Warn("no asset to serve",
			slog.String("path", rawPath),
			slog.String("error", err.Error()))
		NormalizedHttpError(w, err)
		return
	}
	h.log.Debug("resolved asset",
		slog.String("path", rawPath),
		slog.String("key", asset.Path),
		slog.String("outcome", outcome.String()))

	data := asset.Data
	if asset.Path == IndexKey {
		data = h.rewriteIndex(r, data)
	}
	hdr := w.Header()
	hdr.Set("Content-Type", ContentType(asset.Path))
	hdr.Set("Cache-Control", CacheControl(asset.Path))
	hdr.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(data)
}

// CacheControl returns the Cache-Control directive for the specified asset
// key.
func CacheControl(key string) string {
	if key == IndexKey {
		return ShellCacheControl
	}
	return AssetCacheControl
}

// rewriteIndex returns the SPA shell contents to serve, after optionally
// updating the base element and applying the user's rewriter. Without any
// rewriting configured, the stored contents are returned unmodified.
func (h *Handler) rewriteIndex(r *http.Request, index []byte) []byte {
	if !h.rewriteBase && h.indexRewriter == nil {
		return index
	}
	contents := string(index)
	if h.rewriteBase {
		// Sanitize the base path so it cannot interfere with our regexp
		// replacement operations where we need to use "$1" and "$2" back
		// references.
		base := strings.ReplaceAll(basename(r), "$", "")
		contents = baseRe.ReplaceAllString(contents, "${1}"+base+"${2}")
	}
	if h.indexRewriter != nil {
		contents = h.indexRewriter(r, contents)
	}
	return []byte(contents)
}
