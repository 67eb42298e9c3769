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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thediveo/spashell"
	"github.com/thediveo/spashell/internal/config"
	"github.com/thediveo/spashell/internal/server"
)

// BundleDir is the directory inside the embedded bundle containing the SPA
// build output.
const BundleDir = "dist"

// NewRootCmd returns the spashell root command, serving the SPA build output
// from the specified bundle unless told to use a directory instead.
func NewRootCmd(bundle fs.FS) *cobra.Command {
	cfg, loadErr := config.Load(".env")
	if cfg == nil {
		cfg = config.Default()
	}
	rootCmd := &cobra.Command{
		Use:           "spashell",
		Short:         "spashell serves a single page application and its API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				return loadErr
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, cfg, bundle)
		},
	}
	cfg.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(newAssetsCmd(cfg, bundle))
	return rootCmd
}

// Execute runs the root command, reporting any error on stderr.
func Execute(bundle fs.FS) error {
	rootCmd := NewRootCmd(bundle)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "error: %v\n", err)
		return err
	}
	return nil
}

func serve(cmd *cobra.Command, cfg *config.Config, bundle fs.FS) error {
	logger := server.NewLogger(cfg.LogLevel, cmd.OutOrStdout())
	store, err := loadStore(cfg, bundle)
	if err != nil {
		return err
	}
	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// loadStore populates the asset store, either from the configured directory or
// the embedded bundle.
func loadStore(cfg *config.Config, bundle fs.FS) (*spashell.Store, error) {
	if cfg.Dir != "" {
		return spashell.StoreFromFS(os.DirFS(cfg.Dir))
	}
	dist, err := fs.Sub(bundle, BundleDir)
	if err != nil {
		return nil, fmt.Errorf("invalid asset bundle: %w", err)
	}
	return spashell.StoreFromFS(dist)
}
