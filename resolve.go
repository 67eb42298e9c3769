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
	"strings"
	"unicode/utf8"
)

// Candidate returns the store key to look up for the specified raw, still
// percent-encoded request path.
//
// The root path ("" or "/") as well as any path without a "." anywhere are
// taken to be client-side routes and thus resolve to IndexKey. Paths with a
// "." are file-like and resolve to the decoded path with a single leading "/"
// removed. The result is never cleaned, so ".." elements are kept as-is.
func Candidate(rawPath string) string {
	p := decodeLossy(rawPath)
	switch {
	case p == "" || p == "/":
		return IndexKey
	case strings.Contains(p, "."):
		return strings.TrimPrefix(p, "/")
	default:
		return IndexKey
	}
}

// decodeLossy percent-decodes s without ever failing: malformed escapes are
// passed through literally and invalid UTF-8 byte sequences in the decoded
// result are replaced by U+FFFD.
func decodeLossy(s string) string {
	if !strings.Contains(s, "%") {
		if utf8.ValidString(s) {
			return s
		}
		return strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return strings.ToValidUTF8(b.String(), string(utf8.RuneError))
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
