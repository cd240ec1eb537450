// Package config loads bootstrap properties and assembles the layered
// Environment from computed defaults, native files, remote documents and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoCodeAlone/boot/discovery"
	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/logging"
	"github.com/spf13/viper"
)

// DefaultBootstrapFile is read when no other path is given.
const DefaultBootstrapFile = "./bootstrap.toml"

// BootstrapProperties is the configuration needed before the Environment
// exists.
type BootstrapProperties struct {
	Application ApplicationProperties `mapstructure:"application"`
	Logger      logging.Options       `mapstructure:"logger"`
}

type ApplicationProperties struct {
	Name string `mapstructure:"name"`
	// Port is optional; zero means not configured.
	Port   int             `mapstructure:"port"`
	Config FileProperties  `mapstructure:"config"`
	Cloud  CloudProperties `mapstructure:"cloud"`
}

// FileProperties select native config files.
type FileProperties struct {
	Activate  ActivateProperties `mapstructure:"activate"`
	Locations []string           `mapstructure:"locations"`
	FileNames []string           `mapstructure:"file_names"`
	// Watch reloads native files when they change on disk.
	Watch bool `mapstructure:"watch"`
}

type ActivateProperties struct {
	Profiles []string `mapstructure:"profiles"`
}

type CloudProperties struct {
	Discovery discovery.Properties `mapstructure:"discovery"`
	Config    RemoteProperties     `mapstructure:"config"`
}

// RemoteProperties configure the remote config backend. Address and Token
// default to the discovery server when empty.
type RemoteProperties struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

// RemoteServer returns the backend address and token for remote config.
func (p *BootstrapProperties) RemoteServer() discovery.ServerProperties {
	srv := discovery.ServerProperties{Address: p.Application.Cloud.Config.Address, Token: p.Application.Cloud.Config.Token}
	if srv.Address == "" {
		srv = p.Application.Cloud.Discovery.Server
	}
	return srv
}

func setDefaults(v *viper.Viper) {
	log := logging.DefaultOptions()
	v.SetDefault("application.name", "")
	v.SetDefault("application.port", 0)
	v.SetDefault("application.config.activate.profiles", []string{env.DefaultProfile})
	v.SetDefault("application.config.locations", []string{"."})
	v.SetDefault("application.config.file_names", []string{"config.toml"})
	v.SetDefault("application.config.watch", false)
	v.SetDefault("application.cloud.discovery.server.address", "")
	v.SetDefault("application.cloud.discovery.server.token", "")
	v.SetDefault("application.cloud.discovery.host.ip", "")
	v.SetDefault("application.cloud.discovery.host.port", 0)
	v.SetDefault("application.cloud.discovery.health.check.path", "")
	v.SetDefault("application.cloud.discovery.health.check.interval", "")
	v.SetDefault("application.cloud.config.enabled", false)
	v.SetDefault("application.cloud.config.address", "")
	v.SetDefault("application.cloud.config.token", "")
	v.SetDefault("logger.enabled", log.Enabled)
	v.SetDefault("logger.level", log.Level)
	v.SetDefault("logger.file", log.File)
	v.SetDefault("logger.log_dir", log.Dir)
}

// LoadBootstrap reads path if it exists, applies environment overrides
// (APPLICATION_PORT overrides application.port) and fills the application
// name from the executable when empty. A malformed file is an error; a
// missing one is not.
func LoadBootstrap(path string) (*BootstrapProperties, error) {
	if path == "" {
		path = DefaultBootstrapFile
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBootstrapParse, path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrBootstrapRead, path, err)
	}

	props := &BootstrapProperties{}
	if err := v.Unmarshal(props); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBootstrapParse, err)
	}
	if props.Application.Name == "" {
		props.Application.Name = ExecutableName()
	}
	return props, nil
}

// DefaultBootstrap returns the properties used when no file exists and no
// environment overrides apply.
func DefaultBootstrap() *BootstrapProperties {
	return &BootstrapProperties{
		Application: ApplicationProperties{
			Name: ExecutableName(),
			Config: FileProperties{
				Activate:  ActivateProperties{Profiles: []string{env.DefaultProfile}},
				Locations: []string{"."},
				FileNames: []string{"config.toml"},
			},
		},
		Logger: logging.DefaultOptions(),
	}
}

// ExecutableName is the base name of the running binary without extension.
func ExecutableName() string {
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DefaultsSourceName names the computed defaults source.
const DefaultsSourceName = "defaultProperties"

// DefaultPropertySource computes the highest priority source: the
// application name, the port when set, and the cloud settings when present.
func (p *BootstrapProperties) DefaultPropertySource() *env.MapPropertySource {
	app := map[string]any{"name": p.Application.Name}
	if p.Application.Port != 0 {
		app["port"] = p.Application.Port
	}

	cloud := map[string]any{}
	d := p.Application.Cloud.Discovery
	if d.Configured() {
		disc := map[string]any{
			"server": map[string]any{"address": d.Server.Address, "token": d.Server.Token},
		}
		host := map[string]any{}
		if d.Host.IP != "" {
			host["ip"] = d.Host.IP
		}
		if d.Host.Port != 0 {
			host["port"] = d.Host.Port
		}
		if len(host) > 0 {
			disc["host"] = host
		}
		check := map[string]any{}
		if d.Health.Check.Path != "" {
			check["path"] = d.Health.Check.Path
		}
		if d.Health.Check.Interval != "" {
			check["interval"] = d.Health.Check.Interval
		}
		if len(check) > 0 {
			disc["health"] = map[string]any{"check": check}
		}
		cloud["discovery"] = disc
	}
	if c := p.Application.Cloud.Config; c.Enabled {
		srv := p.RemoteServer()
		cloud["config"] = map[string]any{"enabled": true, "address": srv.Address, "token": srv.Token}
	}
	if len(cloud) > 0 {
		app["cloud"] = cloud
	}
	return env.NewMapPropertySource(DefaultsSourceName, map[string]any{"application": app})
}
