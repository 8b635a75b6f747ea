// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/0x0BSoD/inoreader-mcp/internal/config"
	"github.com/0x0BSoD/inoreader-mcp/internal/inoreader"
	"github.com/0x0BSoD/inoreader-mcp/internal/mcpserver"
	"github.com/0x0BSoD/inoreader-mcp/internal/tools"
)

const version = "1.0.0"

func main() {
	// stdlib log writes to stderr by default, which matters here: stdout
	// carries the MCP protocol stream.
	files := []string{"./inoreader.hcl"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".config", "inoreader-mcp", "config.hcl"))
	}

	cfg, err := config.Load(files...)
	if err != nil {
		log.Printf("[ERROR] failed to load config: %v", err)
		return
	}

	var (
		client = inoreader.New(inoreader.Opts{
			AppID:       cfg.AppID,
			AppKey:      cfg.AppKey,
			Username:    cfg.Username,
			Password:    cfg.Password,
			BaseURL:     cfg.BaseURL,
			AuthURL:     cfg.AuthURL,
			Timeout:     cfg.Timeout(),
			CacheTTL:    cfg.CacheTTL(),
			MaxArticles: cfg.MaxArticles,
		})
		svc = tools.New(client)
		srv = mcpserver.New(svc, version)
	)

	log.Printf("[INFO] inoreader-mcp %s serving on stdio", version)
	if err := srv.ServeStdio(); err != nil {
		log.Printf("[ERROR] server stopped: %v", err)
		return
	}
	log.Printf("[INFO] server stopped")
}
