package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/feeders"
)

// Source name prefixes for native and remote documents.
const (
	NativeSourceName = "configProperties"
	RemoteSourceName = "cloudProperties"
)

// FallbackConfigFile is used when no profile file exists.
const FallbackConfigFile = "./config.toml"

// ProfileFileName inserts "-profile" before the extension of name. The
// default profile leaves name unchanged.
func ProfileFileName(name, profile string) string {
	if profile == env.DefaultProfile || profile == "" {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + profile + ext
}

// CandidateFiles lists every location x file name x profile combination,
// in that nesting order.
func CandidateFiles(locations, fileNames, profiles []string) []string {
	var out []string
	for _, loc := range locations {
		for _, name := range fileNames {
			for _, profile := range profiles {
				out = append(out, filepath.Join(loc, ProfileFileName(name, profile)))
			}
		}
	}
	return out
}

// ExistingFiles filters candidates down to regular files, keeping order and
// dropping duplicates. Paths are cleaned.
func ExistingFiles(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, c := range candidates {
		c = filepath.Clean(c)
		if seen[c] {
			continue
		}
		seen[c] = true
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			out = append(out, c)
		}
	}
	return out
}

// ResolveNativeFiles returns the config files for e's profiles. When none
// exists, FallbackConfigFile is used if present.
func ResolveNativeFiles(e *env.Environment) []string {
	files := ExistingFiles(CandidateFiles(e.Locations(), e.FileNames(), e.ActiveProfiles()))
	if len(files) == 0 {
		files = ExistingFiles([]string{FallbackConfigFile})
	}
	return files
}

// NativeSourceFor names the source of a native file.
func NativeSourceFor(path string) string {
	return fmt.Sprintf("%s [%s]", NativeSourceName, path)
}

// LoadNativeSource parses one native file.
func LoadNativeSource(path string) (*env.MapPropertySource, error) {
	f, err := feeders.ForFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNativeConfig, err)
	}
	src, err := feeders.PropertySource(NativeSourceFor(path), f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNativeConfig, err)
	}
	return src, nil
}
