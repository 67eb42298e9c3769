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

// spashell serves a single page application from its embedded build output,
// next to a small JSON API.
package main

import (
	"embed"
	"os"

	"github.com/thediveo/spashell/cmd/spashell/cmd"
)

// bundle holds the SPA build output; "all:" also embeds files such as
// ".well-known/..." in the build output.
//
//go:embed all:dist
var bundle embed.FS

func main() {
	if err := cmd.Execute(bundle); err != nil {
		os.Exit(1)
	}
}
