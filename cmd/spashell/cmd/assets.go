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

package cmd

import (
	"fmt"
	"io/fs"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/thediveo/spashell"
	"github.com/thediveo/spashell/internal/config"
)

func newAssetsCmd(cfg *config.Config, bundle fs.FS) *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "List the served assets with their content types and caching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cfg, bundle)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tSIZE\tCONTENT-TYPE\tCACHE-CONTROL")
			for _, path := range store.Paths() {
				asset, _ := store.Get(path)
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
					path, len(asset.Data), spashell.ContentType(path), spashell.CacheControl(path))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !store.Has(spashell.IndexKey) {
				return fmt.Errorf("asset bundle lacks %s", spashell.IndexKey)
			}
			return nil
		},
	}
}
