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

// Package version exposes build information injected at link time.
package version

import "fmt"

// These variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/Hunter-Bennett/Blinknet/pkg/version.version=1.0.0"
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// GetCommit returns the commit the binary was built from
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp
func GetBuildDate() string {
	return date
}

// GetFullVersion returns version with commit
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}
