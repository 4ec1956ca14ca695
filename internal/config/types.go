package config

// Config represents the complete taskgate configuration.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Definition DefinitionConfig `yaml:"definition"`
	Tasks      TasksConfig      `yaml:"tasks,omitempty"`
	API        APIConfig        `yaml:"api,omitempty"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefinitionConfig locates the task-language definition document served to
// callers as the task://definition resource.
type DefinitionConfig struct {
	Path string `yaml:"path"`
}

// TasksConfig defines task execution settings.
type TasksConfig struct {
	// AllowedCommands is the command/run allow-list: bare executable names,
	// not paths. Empty means the built-in default set.
	AllowedCommands []string `yaml:"allowed_commands,omitempty"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Listen  string        `yaml:"listen"`
	Auth    APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines API authentication settings.
type APIAuthConfig struct {
	// APIKey is a single bearer token with admin/full access.
	// Prefer Tokens for scoped access.
	APIKey string     `yaml:"api_key"`
	Tokens []APIToken `yaml:"tokens,omitempty"`
}

// APIToken defines a bearer token and its scopes.
type APIToken struct {
	Token  string   `yaml:"token"`
	Scopes []string `yaml:"scopes"`
}

// ChecksumManifest is the parsed .checksums file guarding config integrity.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "taskgate",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Definition: DefinitionConfig{
			Path: "./resources/definition.md",
		},
		Tasks: TasksConfig{},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8080",
		},
	}
}
