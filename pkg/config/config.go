package config

// Config represents the complete server configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log" json:"log" yaml:"log"`
	Server  ServerConfig  `mapstructure:"server" json:"server" yaml:"server"`
	YApi    YApiConfig    `mapstructure:"yapi" json:"yapi" yaml:"yapi"`
	Metrics MetricsConfig `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
}

// ToolsConfig contains tools configuration
type ToolsConfig struct {
	Prefix string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`
	Suffix string `mapstructure:"suffix" json:"suffix" yaml:"suffix"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" json:"level" yaml:"level"`
}

// ServerConfig contains server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host" yaml:"host"`
	Port int    `mapstructure:"port" json:"port" yaml:"port"`
	Mode string `mapstructure:"mode" json:"mode" yaml:"mode"`
	URI  string `mapstructure:"uri" json:"uri" yaml:"uri"`
}

// YApiConfig contains yapi module configuration
type YApiConfig struct {
	Enabled   bool        `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	BaseURL   string      `mapstructure:"baseUrl" json:"baseUrl" yaml:"baseUrl"`
	Token     string      `mapstructure:"token" json:"token" yaml:"token"`
	Timeout   int         `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
	RateLimit float64     `mapstructure:"rateLimit" json:"rateLimit" yaml:"rateLimit"`
	Tools     ToolsConfig `mapstructure:"tools" json:"tools" yaml:"tools"`
}

// MetricsConfig contains Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" json:"path" yaml:"path"`
}
