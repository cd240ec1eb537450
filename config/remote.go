package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/GoCodeAlone/boot/discovery"
	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/feeders"
	"github.com/GoCodeAlone/boot/logging"
)

// RemoteTimeout bounds each remote key fetch.
const RemoteTimeout = 5 * time.Second

// RemoteKey is "{profile}/{app}", or just app for the default profile.
func RemoteKey(profile, app string) string {
	if profile == env.DefaultProfile || profile == "" {
		return app
	}
	return profile + "/" + app
}

// RemoteSourceFor names the source of a remote key.
func RemoteSourceFor(key string) string {
	return fmt.Sprintf("%s [%s]", RemoteSourceName, key)
}

// LoadRemoteSources fetches one document per profile. Fetch and parse
// failures are logged and skipped; a missing key is skipped quietly.
// Documents are TOML unless the key ends in .yaml, .yml or .json.
func LoadRemoteSources(ctx context.Context, kv discovery.KVReader, app string, profiles []string, logger logging.Logger) []env.PropertySource {
	var out []env.PropertySource
	for _, profile := range profiles {
		key := RemoteKey(profile, app)
		data, found, err := fetch(ctx, kv, key)
		if err != nil {
			logger.Warn("Remote config fetch failed", "key", key, "error", err)
			continue
		}
		if !found {
			logger.Debug("Remote config key not found", "key", key)
			continue
		}
		values, err := feeders.Parse(remoteFormat(key), data)
		if err != nil {
			logger.Warn("Remote config is malformed", "key", key, "error", err)
			continue
		}
		out = append(out, env.NewMapPropertySource(RemoteSourceFor(key), values))
		logger.Info("Loaded remote config", "key", key)
	}
	return out
}

func fetch(ctx context.Context, kv discovery.KVReader, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, RemoteTimeout)
	defer cancel()
	return kv.Get(ctx, key)
}

func remoteFormat(key string) string {
	switch ext := strings.ToLower(filepath.Ext(key)); ext {
	case ".yaml", ".yml", ".json":
		return ext
	default:
		return "toml"
	}
}
