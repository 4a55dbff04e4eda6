/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hunter-Bennett/Blinknet/cmd/blinknet/app"
	"github.com/Hunter-Bennett/Blinknet/pkg/config"
	"github.com/Hunter-Bennett/Blinknet/pkg/config/kvnats"
	"github.com/Hunter-Bennett/Blinknet/pkg/lifecycle"
	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
	"github.com/Hunter-Bennett/Blinknet/pkg/scan"
	"github.com/Hunter-Bennett/Blinknet/pkg/version"
)

const defaultConfigPath = "/etc/blinknet/blinknet.json"

var errInvalidPort = errors.New("port must be a number between 1 and 65535")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blinknet",
		Short:         "Multi-tenant TCP device availability monitor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newProbeCmd(), newConfigCmd(), newVersionCmd())

	return root
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the monitor and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: configPath,
				Version:    version.GetVersion(),
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "Path to the config file (or KV key path when CONFIG_SOURCE=kv)")

	return cmd
}

func newProbeCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "probe <host> <port>",
		Short: "Run a single TCP probe and print the latency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := parsePort(args[1])
			if err != nil {
				return err
			}

			log, err := lifecycle.CreateComponentLogger(cmd.Context(), "probe", &logger.Config{Level: "error", Output: "stderr"})
			if err != nil {
				return err
			}

			prober := scan.NewTCPProber(timeout, 1, log)

			latency := prober.Probe(cmd.Context(), args[0], port)
			if latency == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "unreachable")

				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%.2f ms\n", *latency)

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", models.DefaultProbeTimeout, "Probe timeout")

	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration stored in the NATS KV bucket",
	}

	var (
		natsURL string
		bucket  string
		key     string
	)

	push := &cobra.Command{
		Use:   "push <file>",
		Short: "Validate a config file and store it in the KV bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readValidatedConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			kv, err := app.OpenKVStore(cmd.Context(), natsURL, bucket)
			if err != nil {
				return err
			}

			defer func() { _ = kv.Close() }()

			if key == "" {
				key = config.KeyForPath(args[0])
			}

			revision, err := kv.Put(cmd.Context(), key, data)
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", key, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored %s at revision %d\n", key, revision)

			return nil
		},
	}

	push.Flags().StringVar(&natsURL, "nats-url", os.Getenv("NATS_URL"), "NATS server URL")
	push.Flags().StringVar(&bucket, "bucket", kvnats.DefaultBucket, "KV bucket name")
	push.Flags().StringVar(&key, "key", "", "KV key (defaults to the key derived from the file path)")

	cmd.AddCommand(push)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "blinknet %s\n", version.GetVersion())
			fmt.Fprintf(out, "commit: %s\n", version.GetCommit())
			fmt.Fprintf(out, "built: %s\n", version.GetBuildDate())
			fmt.Fprintf(out, "go: %s\n", runtime.Version())
		},
	}
}

// readValidatedConfig loads path through the file loader so a document is
// only pushed when the daemon would accept it.
func readValidatedConfig(ctx context.Context, path string) ([]byte, error) {
	var cfg models.Config

	loader := &config.FileConfigLoader{}
	if err := loader.Load(ctx, path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return os.ReadFile(path)
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: %q", errInvalidPort, raw)
	}

	return port, nil
}
