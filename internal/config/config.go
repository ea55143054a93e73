package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default ports match the values baked into the container image: the
// maps4fs API listens on 8000 and the streamlit UI on 8501.
const (
	DefaultAPIPort = 8000
	DefaultUIPort  = 8501

	// DefaultDiagnosticVar is echoed in the startup banner. On the public
	// deployment it is set to "maps4fs"; everywhere else it is empty.
	DefaultDiagnosticVar = "PUBLIC_HOSTNAME"
)

// ServiceConfig describes one managed service process
type ServiceConfig struct {
	Name      string   `mapstructure:"name" yaml:"name"`
	Command   string   `mapstructure:"command" yaml:"command"`
	Args      []string `mapstructure:"args" yaml:"args"`
	Port      int      `mapstructure:"port" yaml:"port"`
	Env       []string `mapstructure:"env" yaml:"env,omitempty"`
	WaitReady bool     `mapstructure:"wait_ready" yaml:"wait_ready"`
}

// Addr returns the TCP address used for readiness probing
func (s ServiceConfig) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", s.Port)
}

// BannerConfig controls the diagnostic banner
type BannerConfig struct {
	Tools  []string `mapstructure:"tools" yaml:"tools"`
	EnvVar string   `mapstructure:"env_var" yaml:"env_var"`
}

// AdminConfig controls the launcher's own HTTP endpoint
type AdminConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig controls launcher logging (service output is passed through raw)
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
	File  bool   `mapstructure:"file" yaml:"file"`
}

// Config is the full launcher configuration
type Config struct {
	Services    []ServiceConfig `mapstructure:"services" yaml:"services"`
	Banner      BannerConfig    `mapstructure:"banner" yaml:"banner"`
	Admin       AdminConfig     `mapstructure:"admin" yaml:"admin"`
	Log         LogConfig       `mapstructure:"log" yaml:"log"`
	GracePeriod time.Duration   `mapstructure:"grace_period" yaml:"grace_period"`
}

// DefaultServices returns the two services the container image ships with.
// Order matters: the API is started before the UI, same as the original
// entrypoint, though readiness is not enforced between them.
func DefaultServices() []ServiceConfig {
	return []ServiceConfig{
		{
			Name:    "api",
			Command: "uvicorn",
			Args: []string{
				"maps4fsapi.main:app",
				"--host", "0.0.0.0",
				"--port", "8000",
			},
			Port:      DefaultAPIPort,
			WaitReady: true,
		},
		{
			Name:    "ui",
			Command: "streamlit",
			Args: []string{
				"run", "maps4fsui/ui.py",
				"--server.port", "8501",
				"--server.address", "0.0.0.0",
				"--server.headless", "true",
			},
			Port:      DefaultUIPort,
			WaitReady: true,
		},
	}
}

// Default returns the configuration used when no config file is present.
// It reproduces the behavior of the original shell entrypoint.
func Default() *Config {
	return &Config{
		Services: DefaultServices(),
		Banner: BannerConfig{
			Tools:  []string{"python3", "pip3", "gdal-config"},
			EnvVar: DefaultDiagnosticVar,
		},
		Admin: AdminConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Log: LogConfig{
			Level: "info",
		},
		GracePeriod: 10 * time.Second,
	}
}

// Load reads configuration from the given file (optional) and LAUNCHER_*
// environment variables, layered over Default()
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("banner.tools", def.Banner.Tools)
	v.SetDefault("banner.env_var", def.Banner.EnvVar)
	v.SetDefault("admin.enabled", def.Admin.Enabled)
	v.SetDefault("admin.addr", def.Admin.Addr)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.json", def.Log.JSON)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("grace_period", def.GracePeriod)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("launcher")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/maps4fs")
		v.AddConfigPath(".")
		// Missing config file is fine, defaults apply
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("LAUNCHER")
	v.AutomaticEnv()
	v.BindEnv("admin.addr", "LAUNCHER_ADMIN_ADDR")
	v.BindEnv("log.level", "LAUNCHER_LOG_LEVEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.Services) == 0 {
		cfg.Services = DefaultServices()
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = def.GracePeriod
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks service definitions for obvious mistakes
func (c *Config) Validate() error {
	seenNames := make(map[string]bool)
	seenPorts := make(map[int]string)

	for _, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("service with command %q has no name", svc.Command)
		}
		if svc.Command == "" {
			return fmt.Errorf("service %s has no command", svc.Name)
		}
		if seenNames[svc.Name] {
			return fmt.Errorf("duplicate service name: %s", svc.Name)
		}
		seenNames[svc.Name] = true

		if svc.Port <= 0 || svc.Port > 65535 {
			return fmt.Errorf("service %s has invalid port %d", svc.Name, svc.Port)
		}
		if owner, taken := seenPorts[svc.Port]; taken {
			return fmt.Errorf("services %s and %s both claim port %d", owner, svc.Name, svc.Port)
		}
		seenPorts[svc.Port] = svc.Name
	}

	return nil
}
