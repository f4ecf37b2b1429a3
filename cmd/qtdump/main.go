// Command qtdump fetches the raw text reply for one or more symbols and
// prints the GBK-decoded payload with numbered fields. Maintenance tool
// for the positional field table in internal/provider/tencent.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"stockquote/internal/config"
	"stockquote/internal/httpx"
)

func main() {
	var symbolsCSV string
	var configPath string
	var timeout int
	var raw bool

	flag.StringVar(&symbolsCSV, "symbols", "sz000001", "comma-separated ticker symbols")
	flag.StringVar(&configPath, "config", "", "path to config.json (optional)")
	flag.IntVar(&timeout, "timeout", 15, "HTTP timeout seconds")
	flag.BoolVar(&raw, "raw", false, "print the undecoded body instead of numbered fields")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := httpx.New(time.Duration(timeout) * time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	for _, sym := range strings.Split(symbolsCSV, ",") {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		u := fmt.Sprintf("%s/q=%s", cfg.Tencent.Endpoint, sym)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if err != nil {
			log.Fatalf("request: %v", err)
		}
		req.Header.Set("Referer", cfg.Tencent.Referer)
		res, err := client.Do(ctx, req)
		if err != nil {
			log.Fatalf("%s: %v", sym, err)
		}
		body, err := io.ReadAll(io.LimitReader(res.Body, 256<<10))
		res.Body.Close()
		if err != nil {
			log.Fatalf("%s: read: %v", sym, err)
		}
		if res.StatusCode != http.StatusOK {
			log.Fatalf("%s: http %d: %s", sym, res.StatusCode, body)
		}

		if raw {
			fmt.Printf("%s\n", body)
			continue
		}
		decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), body)
		if err != nil {
			log.Printf("%s: gbk decode: %v (printing raw)", sym, err)
			decoded = body
		}
		payload := string(decoded)
		if i := strings.Index(payload, `="`); i >= 0 {
			payload = payload[i+2:]
			if j := strings.Index(payload, `"`); j >= 0 {
				payload = payload[:j]
			}
		}
		fmt.Printf("== %s (%d fields)\n", sym, strings.Count(payload, "~")+1)
		for i, f := range strings.Split(payload, "~") {
			fmt.Printf("%3d  %s\n", i, f)
		}
	}
}
