package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	OutputPath  string   `env:"OUTPUT_PATH" envDefault:"./downloads"`
	MaxHeight   int      `env:"MAX_HEIGHT" envDefault:"2160"`
	CookiesPath string   `env:"COOKIES_PATH" envDefault:""`
	Verbose     bool     `env:"VERBOSE" envDefault:"false"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	URLs        []string `env:"URLS" envSeparator:","`
	URLList     string   `env:"URL_LIST" envDefault:""`

	YtDLPPath           string        `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	MergeOutputFormat   string        `env:"MERGE_OUTPUT_FORMAT" envDefault:"mkv"`
	Retries             int           `env:"RETRIES" envDefault:"20"`
	FragmentRetries     int           `env:"FRAGMENT_RETRIES" envDefault:"50"`
	ConcurrentFragments int           `env:"CONCURRENT_FRAGMENTS" envDefault:"1"`
	SocketTimeout       time.Duration `env:"SOCKET_TIMEOUT" envDefault:"30s"`
	ForceIPv4           bool          `env:"FORCE_IPV4" envDefault:"true"`
	JSRuntime           string        `env:"JS_RUNTIME" envDefault:"node"`
	RemoteComponents    string        `env:"REMOTE_COMPONENTS" envDefault:"ejs:github"`
	PlayerClients       []string      `env:"PLAYER_CLIENTS" envSeparator:","`

	BrowserUserData string `env:"BROWSER_USER_DATA" envDefault:""`

	DropBoxAppKey       string `env:"DROPBOX_APP_KEY" envDefault:""`
	DropBoxAppSecret    string `env:"DROPBOX_APP_SECRET" envDefault:""`
	DropBoxRefreshToken string `env:"DROPBOX_REFRESH_TOKEN" envDefault:""`
	DropBoxPath         string `env:"DROPBOX_PATH" envDefault:"youtube/downloads"`
	DropBoxRemoveLocal  bool   `env:"DROPBOX_REMOVE_LOCAL" envDefault:"false"`

	NatsDSN     string `env:"NATS_DSN" envDefault:""`
	NatsSubject string `env:"NATS_SUBJECT" envDefault:"ytgrab.downloads"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// DropBoxEnabled reports whether finished files should be uploaded.
func (cfg *Config) DropBoxEnabled() bool {
	return cfg.DropBoxRefreshToken != "" && cfg.DropBoxAppKey != ""
}
