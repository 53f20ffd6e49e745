// onfin TUI - A terminal interface for the onfin compliance agent.
//
// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/JaynouOliver/onfin-tui/internal/api"
	"github.com/JaynouOliver/onfin-tui/internal/cli"
	"github.com/JaynouOliver/onfin-tui/internal/config"
	"github.com/JaynouOliver/onfin-tui/internal/history"
	"github.com/JaynouOliver/onfin-tui/internal/logging"
	"github.com/JaynouOliver/onfin-tui/internal/session"
	"github.com/JaynouOliver/onfin-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cmd := "tui"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)

	logPath, err := cfg.LogPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving log path: %v\n", err)
		os.Exit(1)
	}
	logCloser, err := logging.Setup(logPath, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	client := newClient(cfg)
	store := session.NewStore()
	ctrl := session.NewController(store, session.ChatFunc(
		func(ctx context.Context, message, threadID string) (string, error) {
			resp, err := client.Chat(ctx, message, threadID)
			if err != nil {
				return "", err
			}
			return resp.Response, nil
		}))

	switch cmd {
	case "tui":
		runTUI(ctrl, client, cfg)
	case "chat":
		if err := cli.RunChat(ctrl, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "health":
		if err := cli.RunHealth(client); err != nil {
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("onfin-tui %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

// newClient builds the backend client from config.
func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.Server.BaseURL).WithTimeout(cfg.Timeout())
}

// runTUI starts the full-screen interface. Falls back to the plain-terminal
// REPL when stdout is not a TTY (pipes, CI).
func runTUI(ctrl *session.Controller, client *api.Client, cfg *config.Config) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		log.Info().Msg("stdout is not a TTY, using plain chat mode")
		if err := cli.RunChat(ctrl, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	m := chat.New(ctrl, history.NewList(), cfg).WithHealthCheck(
		func(ctx context.Context) error {
			h, err := client.Health(ctx)
			if err != nil {
				return err
			}
			if !h.OK() {
				return fmt.Errorf("backend status: %s", h.Status)
			}
			return nil
		})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Observer bridge: every store mutation triggers a repaint through the
	// program without blocking the mutating goroutine.
	chat.SubscribeProgram(ctrl.Store(), p.Send)

	// Hot-reload the config file while the program runs.
	if path, err := config.ConfigPathTOML(); err == nil {
		if w, err := config.Watch(path, func(next *config.Config) {
			config.SetGlobal(next)
			p.Send(chat.ConfigReloadedMsg{Config: next})
		}); err == nil {
			defer w.Close()
		} else {
			log.Warn().Err(err).Msg("config watch unavailable")
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("onfin-tui - terminal client for the onfin compliance agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  onfin-tui [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  tui       Full-screen interface (default)")
	fmt.Println("  chat      Plain-terminal chat")
	fmt.Println("  health    Check backend availability")
	fmt.Println("  version   Print version information")
	fmt.Println("  help      Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  ONFIN_BASE_URL      Backend base URL")
	fmt.Println("  ONFIN_TIMEOUT_SECS  Request timeout in seconds")
	fmt.Println("  ONFIN_THEME         auto, dark, or light")
	fmt.Println("  ONFIN_LOG_LEVEL     debug, info, warn, error, or off")
}
