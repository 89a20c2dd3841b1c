package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// PathEnv overrides control room file discovery
const PathEnv = "CONTROLROOM_CONFIG_PATH"

// ErrNoConfigFile is returned when discovery finds no control room file
var ErrNoConfigFile = errors.New("no control room config file found")

// FileNames are the discovered file names in order of preference
var FileNames = []string{
	"controlroom.config.json",
	"controlroom.config.yaml",
	"controlroom.config.yml",
	"controlroom.config.toml",
}

// Locate returns the control room file to load. An explicit path wins;
// otherwise dir and then its parent are searched for FileNames.
func Locate(explicit, dir string) (string, error) {
	if explicit != "" {
		if !filepath.IsAbs(explicit) && dir != "" {
			explicit = filepath.Join(dir, explicit)
		}
		return explicit, nil
	}

	for _, d := range []string{dir, filepath.Dir(dir)} {
		for _, name := range FileNames {
			candidate := filepath.Join(d, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", ErrNoConfigFile
}

// Decode parses a control room file in the format implied by ext.
// Sections missing from the file keep their defaults.
func Decode(data []byte, ext string) (types.ControlRoomConfig, error) {
	cfg := types.DefaultControlRoomConfig()

	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json", "":
		err = sonic.Unmarshal(data, &cfg)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &cfg)
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Services == nil {
		cfg.Services = []types.ServiceDefinition{}
	}
	if cfg.Workspaces == nil {
		cfg.Workspaces = []types.Workspace{}
	}
	return cfg, Validate(cfg)
}

// Validate checks ids are present and unique. Commands are checked at spawn time.
func Validate(cfg types.ControlRoomConfig) error {
	seen := make(map[string]struct{}, len(cfg.Services))
	for i, svc := range cfg.Services {
		if strings.TrimSpace(svc.ID) == "" {
			return fmt.Errorf("service %d: id cannot be empty", i)
		}
		if _, dup := seen[svc.ID]; dup {
			return fmt.Errorf("service %q: duplicate id", svc.ID)
		}
		seen[svc.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(cfg.Workspaces))
	for i, ws := range cfg.Workspaces {
		if strings.TrimSpace(ws.ID) == "" {
			return fmt.Errorf("workspace %d: id cannot be empty", i)
		}
		if _, dup := seen[ws.ID]; dup {
			return fmt.Errorf("workspace %q: duplicate id", ws.ID)
		}
		seen[ws.ID] = struct{}{}
	}
	return nil
}

// LoadFile reads and decodes a control room file
func LoadFile(path string) (types.ControlRoomConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ControlRoomConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Store holds the active control room configuration.
// A failed reload keeps the previous configuration.
type Store struct {
	log  *zap.Logger
	path string

	mu  sync.RWMutex
	cfg types.ControlRoomConfig
}

// NewStore creates a store for the file found by Locate. Without a file
// the store serves the default configuration.
func NewStore(explicit string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	path, err := Locate(explicit, wd)
	if err != nil && !errors.Is(err, ErrNoConfigFile) {
		return nil, err
	}

	return &Store{
		log:  log.Named("config"),
		path: path,
		cfg:  types.DefaultControlRoomConfig(),
	}, nil
}

// NewStoreAt creates a store bound to path
func NewStoreAt(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log.Named("config"), path: path, cfg: types.DefaultControlRoomConfig()}
}

// Path returns the bound file, empty when none was found
func (s *Store) Path() string {
	return s.path
}

// Current returns the active configuration
func (s *Store) Current() types.ControlRoomConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Reload re-reads the bound file and makes it active
func (s *Store) Reload() (types.ControlRoomConfig, error) {
	if s.path == "" {
		s.log.Debug("no control room file, using defaults")
		return s.Current(), nil
	}

	cfg, err := LoadFile(s.path)
	if err != nil {
		s.log.Warn("control room config rejected", zap.String("path", s.path), zap.Error(err))
		return s.Current(), err
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.log.Info("control room config loaded",
		zap.String("path", s.path),
		zap.Int("services", len(cfg.Services)),
		zap.Int("workspaces", len(cfg.Workspaces)))
	return cfg, nil
}
