package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Port              string `json:"port" envconfig:"PORT"`
	RequestTimeoutSec int    `json:"request_timeout_sec" envconfig:"REQUEST_TIMEOUT_SEC"`
	Production        bool   `json:"production" envconfig:"PRODUCTION"`
}

type Tencent struct {
	Enabled  bool   `json:"enabled" envconfig:"TENCENT_ENABLED"`
	Endpoint string `json:"endpoint" envconfig:"TENCENT_ENDPOINT"`
	Referer  string `json:"referer" envconfig:"TENCENT_REFERER"`
}

type Sina struct {
	Enabled  bool   `json:"enabled" envconfig:"SINA_ENABLED"`
	Endpoint string `json:"endpoint" envconfig:"SINA_ENDPOINT"`
	Referer  string `json:"referer" envconfig:"SINA_REFERER"`
}

type Batch struct {
	DefaultSymbol  string `json:"default_symbol" envconfig:"DEFAULT_SYMBOL"`
	MaxSymbols     int    `json:"max_symbols" envconfig:"MAX_SYMBOLS"`
	MaxConcurrency int    `json:"max_concurrency" envconfig:"MAX_CONCURRENCY"`
}

type Config struct {
	Server  Server  `json:"server"`
	Tencent Tencent `json:"tencent"`
	Sina    Sina    `json:"sina"`
	Batch   Batch   `json:"batch"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Tencent: Tencent{
			Enabled:  true,
			Endpoint: "https://qt.gtimg.cn",
			Referer:  "https://gu.qq.com/",
		},
		Sina: Sina{
			Enabled:  true,
			Endpoint: "https://hq.sinajs.cn",
			Referer:  "https://finance.sina.com.cn/",
		},
		Batch: Batch{
			DefaultSymbol:  "sz000001",
			MaxSymbols:     50,
			MaxConcurrency: 4,
		},
	}
}

// Load reads JSON config from path (defaults when empty or missing), then
// overlays a .env file and the process environment on top.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	// .env may legitimately be absent outside development
	_ = godotenv.Load()
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("env overlay: %w", err)
	}
	return cfg, nil
}
