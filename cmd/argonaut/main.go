// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Command argonaut runs the ArgoCD operations agent: a workflow server, the
// ArgoCD MCP tool server, a one-shot runner and an interactive chat client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jllopis/argonaut/pkg/config"
)

const version = "0.1.0"

type globalFlags struct {
	ConfigPath string
	EnvFile    string
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		return
	}

	if global.EnvFile != "" {
		if err := config.LoadEnvFile(global.EnvFile, true); err != nil {
			fatal(err)
		}
	} else {
		_ = config.LoadEnvFile(".env", false)
	}

	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(err)
	}

	switch args[0] {
	case "run":
		runCmd(ctx, cfg, args[1:])
	case "serve":
		serveCmd(ctx, cfg, args[1:])
	case "mcp":
		mcpCmd(ctx, cfg, args[1:])
	case "card":
		cardCmd(args[1:])
	case "chat":
		chatCmd(ctx, cfg, args[1:])
	case "version":
		fmt.Println("argonaut " + version)
	case "help":
		printUsage()
	default:
		fatal(fmt.Errorf("unknown command %q", args[0]))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --config")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--env-file":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --env-file")
			}
			flags.EnvFile = args[i+1]
			i++
		case strings.HasPrefix(arg, "--env-file="):
			flags.EnvFile = strings.TrimPrefix(arg, "--env-file=")
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

func printUsage() {
	fmt.Print(`Argonaut - ArgoCD operations agent

Usage:
  argonaut [global flags] <command> [args]

Global flags:
  --config <path>      Path to config YAML
  --env-file <path>    Load environment from a dotenv file (default .env if present)

Commands:
  run   --human <msg> [--assistant <msg>] ...   One-shot agent invocation
  serve [--addr host:port]                      Workflow run server
  mcp   [--http <addr>]                         ArgoCD MCP tool server (stdio by default)
  card  [--yaml]                                Print the agent manifest
  chat  [--host <url>]                          Interactive chat against a run server
  version                                       Print version
`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// stringList collects repeated flag values in order.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
