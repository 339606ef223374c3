// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/jllopis/argonaut/pkg/acp"
	"github.com/jllopis/argonaut/pkg/config"
)

// chatCmd is an interactive REPL against a running workflow server. Each
// question becomes one stateless run.
func chatCmd(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	host := fs.String("host", "", "run server base URL (default from config host:port)")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}

	baseURL := *host
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	var opts []acp.ClientOption
	if cfg.Server.APIKey != "" {
		opts = append(opts, acp.WithClientAPIKey(cfg.Server.APIKey))
	}
	client, err := acp.NewClient(baseURL, cfg.Server.AgentID, opts...)
	if err != nil {
		fatal(err)
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if interactive {
		fmt.Println("Start chatting with the agent. Type 'exit' or Ctrl+D to quit.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if interactive {
			fmt.Print("\n> Your Question: ")
		}
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := client.Ask(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("Agent: %s\n", answer)
	}
	if err := scanner.Err(); err != nil {
		fatal(err)
	}
}
