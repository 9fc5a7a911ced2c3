package config

// Config is the root of a derivation profile file.
type Config struct {
	Profiles map[string]Profile `yaml:"profiles"`
	Tool     ToolConfig         `yaml:"tool"`
}

// Profile names a fixed set of derivation parameters. The password and salt
// are always supplied at derivation time, never stored in the profile.
type Profile struct {
	Name       string `yaml:"name,omitempty"`
	Hash       string `yaml:"hash"`
	Iterations int    `yaml:"iterations"`
	KeyLength  int    `yaml:"key_length"`
	Purpose    string `yaml:"purpose"`               // key, iv or mac
	SaltLength int    `yaml:"salt_length,omitempty"` // for generated salts
}

// ToolConfig holds settings for the command line tool.
type ToolConfig struct {
	LogLevel string `yaml:"log_level"`
}
