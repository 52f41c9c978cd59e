// Package config holds the settings threaded through every provisioning component.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Sources lists every remote endpoint the engine talks to.
type Sources struct {
	JavaRuntimeList string   `yaml:"java_runtime_list"`
	ForgePromotions string   `yaml:"forge_promotions"`
	ForgeMaven      []string `yaml:"forge_maven"`
	Libraries       string   `yaml:"libraries"`
	Corretto        string   `yaml:"corretto"`
	ARM32JDK        string   `yaml:"arm32_jdk"`
}

// Config is the explicit replacement for process-wide launcher constants.
type Config struct {
	LauncherDir     string        `yaml:"launcher_dir"`
	LauncherVersion string        `yaml:"launcher_version"`
	Concurrency     int           `yaml:"concurrency"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	// JavaArgs are extra JVM options for the loader installer, shell-quoted.
	JavaArgs        string        `yaml:"java_args"`
	Sources         Sources       `yaml:"sources"`
}

const (
	DefaultLauncherVersion = "0.4.0"
	DefaultConcurrency     = 16
	DefaultHTTPTimeout     = 2 * time.Minute
)

// DefaultSources are the official endpoints.
func DefaultSources() Sources {
	return Sources{
		JavaRuntimeList: "https://launchermeta.mojang.com/v1/products/java-runtime/2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json",
		ForgePromotions: "https://files.minecraftforge.net/net/minecraftforge/forge/promotions_slim.json",
		ForgeMaven: []string{
			"https://files.minecraftforge.net/maven/net/minecraftforge/forge/",
			"https://maven.minecraftforge.net/net/minecraftforge/forge/",
		},
		Libraries: "https://libraries.minecraft.net/",
		Corretto:  "https://corretto.aws/downloads/latest/",
		ARM32JDK:  "https://github.com/hmsjy2017/get-jdk/releases/download/v8u231/jdk-8u231-linux-arm32-vfp-hflt.tar.gz",
	}
}

// Default returns a fully populated configuration.
func Default() *Config {
	return &Config{
		LauncherDir:     DefaultLauncherDir(),
		LauncherVersion: DefaultLauncherVersion,
		Concurrency:     DefaultConcurrency,
		HTTPTimeout:     DefaultHTTPTimeout,
		Sources:         DefaultSources(),
	}
}

// Load reads a YAML file on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from CRAFTKIT_* environment variables.
func (c *Config) ApplyEnv() error {
	if dir := os.Getenv("CRAFTKIT_DIR"); dir != "" {
		c.LauncherDir = dir
	}
	if v := os.Getenv("CRAFTKIT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CRAFTKIT_CONCURRENCY %q: %w", v, err)
		}
		c.Concurrency = n
	}
	if v := os.Getenv("CRAFTKIT_JAVA_ARGS"); v != "" {
		c.JavaArgs = v
	}
	if v := os.Getenv("CRAFTKIT_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CRAFTKIT_HTTP_TIMEOUT %q: %w", v, err)
		}
		c.HTTPTimeout = d
	}
	return nil
}

// Validate rejects configurations no component can work with.
func (c *Config) Validate() error {
	if c.LauncherDir == "" {
		return fmt.Errorf("launcher_dir must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Sources.JavaRuntimeList == "" || c.Sources.ForgePromotions == "" || c.Sources.Libraries == "" {
		return fmt.Errorf("sources must not be empty")
	}
	if len(c.Sources.ForgeMaven) == 0 {
		return fmt.Errorf("at least one forge maven mirror is required")
	}
	return nil
}

// fillDefaults restores zero values a partial YAML file left behind.
func (c *Config) fillDefaults() {
	def := Default()
	if c.LauncherDir == "" {
		c.LauncherDir = def.LauncherDir
	}
	if c.LauncherVersion == "" {
		c.LauncherVersion = def.LauncherVersion
	}
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = def.HTTPTimeout
	}
	s := &c.Sources
	if s.JavaRuntimeList == "" {
		s.JavaRuntimeList = def.Sources.JavaRuntimeList
	}
	if s.ForgePromotions == "" {
		s.ForgePromotions = def.Sources.ForgePromotions
	}
	if len(s.ForgeMaven) == 0 {
		s.ForgeMaven = def.Sources.ForgeMaven
	}
	if s.Libraries == "" {
		s.Libraries = def.Sources.Libraries
	}
	if s.Corretto == "" {
		s.Corretto = def.Sources.Corretto
	}
	if s.ARM32JDK == "" {
		s.ARM32JDK = def.Sources.ARM32JDK
	}
}
