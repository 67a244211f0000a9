package domain

// Config mirrors logbot.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Discord             DiscordSettings   `yaml:"discord"`
	Lifecycle           LifecycleSettings `yaml:"lifecycle"`
	Store               StoreSettings     `yaml:"store"`
	Images              ImageSettings     `yaml:"images"`
	Web                 WebSettings       `yaml:"web"`
	Logging             LoggingSettings   `yaml:"logging"`
}

// DiscordSettings configures the gateway session.
type DiscordSettings struct {
	// Token is normally supplied through DISCORD_TOKEN in .env and never written back.
	Token            string `yaml:"token,omitempty"`
	ObservedBotID    string `yaml:"observed_bot_id"`
	MessageCacheSize int    `yaml:"message_cache_size"`
}

// LifecycleSettings holds the classification constants.
type LifecycleSettings struct {
	CompletionTitle  string `yaml:"completion_title"`
	PlaceholderWidth int    `yaml:"placeholder_width"`
}

// StoreSettings locates the record database.
type StoreSettings struct {
	Path string `yaml:"path"`
}

// ImageSettings controls image retrieval.
type ImageSettings struct {
	Path    string `yaml:"path"`
	Timeout string `yaml:"timeout"`
	MaxSize string `yaml:"max_size"`
}

// WebSettings configures the listing server.
type WebSettings struct {
	ListenAddr     string  `yaml:"listen_addr"`
	PageSize       int     `yaml:"page_size"`
	ScopeChannel   string  `yaml:"scope_channel"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// LoggingSettings configures the structured logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}
