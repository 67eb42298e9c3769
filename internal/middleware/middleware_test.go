// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/thediveo/spashell"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var teapot = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("short and stout"))
})

var _ = Describe("middleware", func() {

	Context("request IDs", func() {

		It("generates missing request IDs", func() {
			var seen string
			h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.Header.Get(RequestIDHeader)
			}))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(seen).To(MatchRegexp(`^[0-9a-f-]{36}$`))
			Expect(w.Header().Get(RequestIDHeader)).To(Equal(seen))
		})

		It("keeps passed request IDs", func() {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(RequestIDHeader, "abc")
			w := httptest.NewRecorder()
			WithRequestID(teapot).ServeHTTP(w, r)
			Expect(w.Header().Get(RequestIDHeader)).To(Equal("abc"))
		})

	})

	It("logs requests", func() {
		var buff bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buff, nil))
		w := httptest.NewRecorder()
		WithLogging(logger, teapot).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		Expect(buff.String()).To(And(
			ContainSubstring(`"path":"/dashboard"`),
			ContainSubstring(`"status":418`),
			ContainSubstring(`"bytes":15`)))
	})

	Context("metrics", func() {

		It("counts requests by bounded routes", func() {
			m := NewMetrics(prometheus.NewRegistry())
			h := m.Middleware(teapot)
			for _, path := range []string{"/", "/some/route", "/assets/app.js", "/api/hello"} {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
			}
			Expect(testutil.ToFloat64(m.RequestsTotal.WithLabelValues("spa", "GET", "418"))).To(Equal(3.0))
			Expect(testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/*", "GET", "418"))).To(Equal(1.0))
		})

		It("counts resolution outcomes", func() {
			m := NewMetrics(prometheus.NewRegistry())
			h := spashell.NewHandler(
				spashell.NewStore(map[string][]byte{"index.html": []byte("shell")}),
				spashell.WithObserver(m.ObserveResolution))
			for _, path := range []string{"/", "/route", "/missing.png"} {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
			}
			Expect(testutil.ToFloat64(m.Resolutions.WithLabelValues("shell"))).To(Equal(2.0))
			Expect(testutil.ToFloat64(m.Resolutions.WithLabelValues("fallback"))).To(Equal(1.0))
		})

	})

	Context("rate limiting", func() {

		It("limits per client", func() {
			m := NewMetrics(prometheus.NewRegistry())
			h := NewLimiter(1, 2).Middleware(m, teapot)
			codes := func(remote string) []int {
				var codes []int
				for i := 0; i < 3; i++ {
					r := httptest.NewRequest(http.MethodGet, "/", nil)
					r.RemoteAddr = remote
					w := httptest.NewRecorder()
					h.ServeHTTP(w, r)
					codes = append(codes, w.Code)
				}
				return codes
			}
			Expect(codes("10.0.0.1:1234")).To(Equal([]int{418, 418, http.StatusTooManyRequests}))
			Expect(codes("10.0.0.2:1234")).To(Equal([]int{418, 418, http.StatusTooManyRequests}))
			Expect(testutil.ToFloat64(m.RateLimitDropped)).To(Equal(2.0))
		})

		It("forgets idle clients", func() {
			l := NewLimiter(1, 1)
			past := time.Now().Add(-time.Hour)
			for i := 0; i <= maxClients; i++ {
				l.allow(strconv.Itoa(i), past)
			}
			Expect(l.allow("new", time.Now())).To(BeTrue())
			Expect(l.clients).To(HaveLen(1))
		})

		It("ignores forwarded addresses unless behind a trusted proxy", func() {
			serve := func(h http.Handler, forwarded string) int {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.RemoteAddr = "10.0.0.1:1234"
				r.Header.Set("X-Forwarded-For", forwarded)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, r)
				return w.Code
			}

			h := NewLimiter(0.001, 1).Middleware(nil, teapot)
			Expect(serve(h, "192.0.2.1")).To(Equal(http.StatusTeapot))
			Expect(serve(h, "192.0.2.2")).To(Equal(http.StatusTooManyRequests))

			h = NewLimiter(0.001, 1, WithTrustedProxy()).Middleware(nil, teapot)
			Expect(serve(h, "192.0.2.1")).To(Equal(http.StatusTeapot))
			Expect(serve(h, "192.0.2.2")).To(Equal(http.StatusTeapot))
			Expect(serve(h, "192.0.2.1, 10.0.0.1")).To(Equal(http.StatusTooManyRequests))
		})

		DescribeTable("determines client IPs",
			func(remote, forwarded string, trustProxy bool, expected string) {
				r := httptest.NewRequest(http.MethodGet, "/", nil)
				r.RemoteAddr = remote
				if forwarded != "" {
					r.Header.Set("X-Forwarded-For", forwarded)
				}
				Expect(clientIP(r, trustProxy)).To(Equal(expected))
			},
			Entry("remote address", "10.0.0.1:1234", "", false, "10.0.0.1"),
			Entry("untrusted forwarded", "10.0.0.1:1234", "192.0.2.1", false, "10.0.0.1"),
			Entry("trusted forwarded", "10.0.0.1:1234", "192.0.2.1, 10.0.0.1", true, "192.0.2.1"),
			Entry("trusted without forwarded", "10.0.0.1:1234", "", true, "10.0.0.1"),
			Entry("unparsable remote address", "somewhere", "", false, "somewhere"),
		)

	})

	Context("compression", func() {

		large := strings.Repeat("body { margin: 0; }\n", 200)

		serve := func(acceptEncoding string) *httptest.ResponseRecorder {
			compress := Successful(Compression())
			h := compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/css; charset=utf-8")
				w.Header().Set("Cache-Control", spashell.AssetCacheControl)
				_, _ = io.WriteString(w, large)
			}))
			r := httptest.NewRequest(http.MethodGet, "/app.css", nil)
			if acceptEncoding != "" {
				r.Header.Set("Accept-Encoding", acceptEncoding)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			return w
		}

		It("compresses for accepting clients", func() {
			w := serve("gzip")
			Expect(w.Header().Get("Content-Encoding")).To(Equal("gzip"))
			Expect(w.Header().Get("Cache-Control")).To(Equal(spashell.AssetCacheControl))
			zr := Successful(gzip.NewReader(w.Body))
			Expect(string(Successful(io.ReadAll(zr)))).To(Equal(large))
		})

		It("passes through for other clients", func() {
			w := serve("")
			Expect(w.Header().Get("Content-Encoding")).To(BeEmpty())
			Expect(w.Body.String()).To(Equal(large))
		})

	})

})
