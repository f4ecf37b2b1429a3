// Command fetch performs a one-shot batch quote fetch and prints the
// result as indented JSON. Useful for poking at the upstreams without
// running the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"stockquote/internal/batch"
	"stockquote/internal/config"
	"stockquote/internal/httpx"
	"stockquote/internal/observability"
	"stockquote/internal/provider"
	"stockquote/internal/provider/sina"
	"stockquote/internal/provider/tencent"
	"stockquote/internal/quote"
)

func main() {
	var symbolsCSV string
	var configPath string
	var timeout int

	flag.StringVar(&symbolsCSV, "symbols", "sz000001", "comma-separated ticker symbols")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := observability.InitLogger(false, slog.LevelWarn)

	httpClient := httpx.New(time.Duration(timeout) * time.Second)

	var primary, fallback provider.Provider
	if cfg.Tencent.Enabled {
		primary = tencent.New(tencent.Config{
			BaseURL:   cfg.Tencent.Endpoint,
			Referer:   cfg.Tencent.Referer,
			UserAgent: httpClient.UserAgent,
		}, httpClient.HTTP)
	}
	if cfg.Sina.Enabled {
		fallback = sina.New(sina.Config{BaseURL: cfg.Sina.Endpoint, Referer: cfg.Sina.Referer}, httpClient)
	}
	if primary == nil {
		primary, fallback = fallback, nil
	}
	if primary == nil {
		logger.Error("no provider enabled")
		os.Exit(1)
	}

	symbols := splitCSV(symbolsCSV)
	if len(symbols) == 0 {
		logger.Error("no symbols provided")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	res := batch.New(primary, fallback, cfg.Batch.MaxConcurrency, logger).Run(ctx, symbols)
	for _, e := range res.Errors {
		logger.Warn("symbol failed", "error", e)
	}
	if len(res.Quotes) == 0 {
		logger.Error("no quotes received")
		os.Exit(1)
	}

	out := struct {
		MarketStatus string        `json:"market_status"`
		Quotes       []quote.Quote `json:"quotes"`
		Errors       []string      `json:"errors,omitempty"`
		Warnings     []string      `json:"warnings,omitempty"`
	}{res.MarketStatus, res.Quotes, res.Errors, res.Warnings}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
