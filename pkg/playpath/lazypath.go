/*
Copyright The Playfetch Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package playpath

import (
	"os"
	"path/filepath"
)

const (
	// CacheHomeEnvVar overrides the playfetch cache directory.
	CacheHomeEnvVar = "PLAYFETCH_CACHE_HOME"

	// ConfigHomeEnvVar overrides the playfetch config directory.
	ConfigHomeEnvVar = "PLAYFETCH_CONFIG_HOME"

	xdgCacheHome  = "XDG_CACHE_HOME"
	xdgConfigHome = "XDG_CONFIG_HOME"
)

// lazypath is a directory name under the per-user config and cache roots,
// resolved when a path is asked for.
type lazypath string

func (l lazypath) path(appEnvVar, xdgEnvVar string, defaultFn func() string, elem ...string) string {
	// 1. an application specific environment variable
	// 2. the XDG environment variable
	// 3. the platform default
	base := os.Getenv(appEnvVar)
	if base != "" {
		return filepath.Join(base, filepath.Join(elem...))
	}
	base = os.Getenv(xdgEnvVar)
	if base == "" {
		base = defaultFn()
	}
	return filepath.Join(base, string(l), filepath.Join(elem...))
}

func (l lazypath) cachePath(elem ...string) string {
	return l.path(CacheHomeEnvVar, xdgCacheHome, cacheHome, filepath.Join(elem...))
}

func (l lazypath) configPath(elem ...string) string {
	return l.path(ConfigHomeEnvVar, xdgConfigHome, configHome, filepath.Join(elem...))
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.TempDir()
}

func configHome() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return filepath.Join(homeDir(), ".config")
}

func cacheHome() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return filepath.Join(homeDir(), ".cache")
}
