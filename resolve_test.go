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

package spashell

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("candidate keys", func() {

	DescribeTable("resolves request paths",
		func(rawPath string, expected string) {
			Expect(Candidate(rawPath)).To(Equal(expected))
		},
		Entry("empty path", "", IndexKey),
		Entry("root", "/", IndexKey),
		Entry("client-side route", "/dashboard", IndexKey),
		Entry("nested client-side route", "/users/42/settings", IndexKey),
		Entry("trailing slash route", "/users/", IndexKey),
		Entry("shell", "/index.html", IndexKey),
		Entry("unrooted file", "app.js", "app.js"),
		Entry("hashed asset", "/assets/app.a1b2.js", "assets/app.a1b2.js"),
		Entry("dot in directory", "/v1.2/notes", "v1.2/notes"),
		Entry("only a single leading slash is stripped", "//x.js", "/x.js"),
		Entry("encoded space", "/my%20file.css", "my file.css"),
		Entry("encoded dot makes it file-like", "/foo%2Ebar", "foo.bar"),
		Entry("encoded slash", "/a%2Fb.js", "a/b.js"),
		Entry("traversal isn't collapsed", "/../secret.txt", "../secret.txt"),
		Entry("encoded traversal isn't collapsed", "/%2e%2e/secret", "../secret"),
		Entry("malformed escape kept literally", "/bad%zz.js", "bad%zz.js"),
		Entry("truncated escape kept literally", "/x.js%4", "x.js%4"),
		Entry("lone percent is a route", "/%", IndexKey),
		Entry("invalid UTF-8 gets replaced", "/%ff.js", "�.js"),
		Entry("valid UTF-8 decodes", "/%C3%A4.css", "ä.css"),
	)

})
