// Package config handles vmapkit configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds vmap data locations.
type DataConfig struct {
	Dir string `yaml:"dir"` // Directory holding .vmtile/.vmtree files
}

// CacheConfig holds tile cache settings.
type CacheConfig struct {
	MaxTiles int `yaml:"max_tiles"` // Decoded tiles kept in memory, 0 = unbounded
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "vmaps",
		},
		Cache: CacheConfig{
			MaxTiles: 256,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
