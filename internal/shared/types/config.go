package types

// Workspace is a named directory that runs can execute in
type Workspace struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name" yaml:"name" toml:"name"`
	Path string `json:"path" yaml:"path" toml:"path"`
}

// FeatureFlags toggles control room features
type FeatureFlags struct {
	ControlRoomEnabled bool `json:"controlRoomEnabled" yaml:"controlRoomEnabled" toml:"controlRoomEnabled"`
}

// GitConfig configures the commit log panel
type GitConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	MaxCommits int  `json:"maxCommits" yaml:"maxCommits" toml:"maxCommits"`
}

// ControlRoomConfig is the file-based control room configuration.
// UI and video settings are carried opaquely for the frontend.
type ControlRoomConfig struct {
	FeatureFlags FeatureFlags           `json:"featureFlags" yaml:"featureFlags" toml:"featureFlags"`
	UI           map[string]interface{} `json:"ui,omitempty" yaml:"ui,omitempty" toml:"ui,omitempty"`
	Services     []ServiceDefinition    `json:"services" yaml:"services" toml:"services"`
	Workspaces   []Workspace            `json:"workspaces" yaml:"workspaces" toml:"workspaces"`
	Git          GitConfig              `json:"git" yaml:"git" toml:"git"`
	VideoWall    map[string]interface{} `json:"videoWall,omitempty" yaml:"videoWall,omitempty" toml:"videoWall,omitempty"`
}

// DefaultControlRoomConfig returns the configuration used before a file is loaded
func DefaultControlRoomConfig() ControlRoomConfig {
	return ControlRoomConfig{
		UI: map[string]interface{}{
			"defaultView":      "classic",
			"rememberLastView": true,
		},
		Services:   []ServiceDefinition{},
		Workspaces: []Workspace{},
		Git: GitConfig{
			Enabled:    true,
			MaxCommits: 30,
		},
	}
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}
