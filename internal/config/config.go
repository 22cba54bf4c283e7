package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeusync/fieldflip/internal/core/actionset"
	"github.com/zeusync/fieldflip/internal/core/agents"
	"github.com/zeusync/fieldflip/internal/core/errs"
	"github.com/zeusync/fieldflip/internal/core/observability/log"
	"github.com/zeusync/fieldflip/internal/core/observation"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the file-level configuration of the adapter and the mirror
// service.
type Config struct {
	Env    EnvConfig    `json:"env" yaml:"env"`
	Mirror MirrorConfig `json:"mirror" yaml:"mirror"`
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log" yaml:"log"`

	// dir is where the file was loaded from; relative paths resolve against it.
	dir string
}

// EnvConfig mirrors the options the environment is created with.
type EnvConfig struct {
	Scenario       string            `json:"scenario" yaml:"scenario"`
	Representation string            `json:"representation" yaml:"representation"`
	Rewards        string            `json:"rewards" yaml:"rewards"`
	LeftAgents     int               `json:"left_agents" yaml:"left_agents"`
	RightAgents    int               `json:"right_agents" yaml:"right_agents"`
	Options        map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

type MirrorConfig struct {
	ActionSet string `json:"action_set" yaml:"action_set"`
	// Catalog is an optional YAML file with custom action sets.
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Workers int    `json:"workers" yaml:"workers"`
}

type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`
	MaxMessageSize  int64         `json:"max_message_size" yaml:"max_message_size"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Env: EnvConfig{
			Scenario:       "academy_3_vs_1_with_keeper",
			Representation: "simplev1",
			Rewards:        "scoring",
			LeftAgents:     1,
		},
		Mirror: MirrorConfig{
			ActionSet: actionset.DefaultSet,
			Workers:   4,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8090",
			MaxMessageSize:  1024 * 1024, // 1MB
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// Decode reads YAML from r on top of Default and validates the result.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := c.Env.Validate(); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	if c.Mirror.Workers < 0 {
		return fmt.Errorf("%w: mirror.workers must not be negative", ErrInvalidConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.MaxMessageSize <= 0 {
		return fmt.Errorf("%w: server.max_message_size must be positive", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (e *EnvConfig) Validate() error {
	if e.LeftAgents < 0 || e.RightAgents < 0 {
		return fmt.Errorf("%w: agent counts must not be negative", ErrInvalidConfig)
	}
	if e.LeftAgents+e.RightAgents == 0 {
		return fmt.Errorf("%w: at least one agent-controlled player is required", ErrInvalidConfig)
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// ActionSet resolves the configured action set, loading the catalog when one
// is configured.
func (c *Config) ActionSet() (*actionset.Set, error) {
	var catalog *actionset.Catalog
	if c.Mirror.Catalog != "" {
		path := c.Mirror.Catalog
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		var err error
		if catalog, err = actionset.LoadCatalog(path); err != nil {
			return nil, err
		}
	}
	return catalog.Resolve(c.Mirror.ActionSet)
}

// AgentNames lists every controlled agent; left-side agents come first.
func (e *EnvConfig) AgentNames() []string {
	return agents.Names(e.LeftAgents + e.RightAgents)
}

// AgentSide reports which side the named agent plays on.
func (e *EnvConfig) AgentSide(name string) (observation.Side, error) {
	idx, err := agents.Index(name)
	if err != nil {
		return observation.SideNone, err
	}
	switch {
	case idx < e.LeftAgents:
		return observation.SideLeft, nil
	case idx < e.LeftAgents+e.RightAgents:
		return observation.SideRight, nil
	default:
		return observation.SideNone, fmt.Errorf("%w: agent %s is not controlled", errs.ErrInvalidArgument, name)
	}
}
