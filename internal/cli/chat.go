// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the onfin CLI.
//
// Handles the "onfin-tui chat" command which provides a plain-terminal REPL
// for conversing with the compliance agent. This mode is used when stdout is
// not a TTY or when the full-screen interface is not wanted.
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /new, /n            Start a new session (fresh server thread)
//   /history            Show conversation so far
//   /save [json]        Save transcript to a file
//   /quit, /q           Exit chat
//   Ctrl+C, Ctrl+D      Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/JaynouOliver/onfin-tui/internal/config"
	"github.com/JaynouOliver/onfin-tui/internal/export"
	"github.com/JaynouOliver/onfin-tui/internal/model"
	"github.com/JaynouOliver/onfin-tui/internal/session"
	"github.com/JaynouOliver/onfin-tui/internal/ui/components"
	"github.com/JaynouOliver/onfin-tui/internal/ui/styles"
	"github.com/JaynouOliver/onfin-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader provides input history and line editing for the REPL.
type lineReader struct {
	line        *liner.State
	historyFile string
}

// newLineReader creates a line reader with persistent input history.
func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}

	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// readInput reads a line with history navigation support.
func (r *lineReader) readInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// close saves history and releases the terminal.
func (r *lineReader) close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// RunChat runs the plain-terminal REPL against the given controller.
func RunChat(ctrl *session.Controller, cfg *config.Config) error {
	reader := newLineReader()
	defer reader.close()

	markdown := components.NewMarkdownRenderer(true, 80)

	printWelcome(cfg)
	timeout := cfg.Timeout()

	for {
		input, err := reader.readInput(promptStyle.Render("onfin> "))
		if err != nil {
			// Ctrl+C (ErrPromptAborted) and Ctrl+D (EOF) both exit.
			fmt.Println()
			fmt.Println(infoStyle.Render("Goodbye!"))
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !handleSlashCommand(input, ctrl) {
				fmt.Println(infoStyle.Render("Goodbye!"))
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			fmt.Println(infoStyle.Render("Goodbye!"))
			return nil
		}

		processMessage(ctrl, input, timeout, cfg.UI.Markdown, markdown)
	}
}

// processMessage runs one request round-trip and prints the reply. Failures
// surface as the fallback reply in the transcript; the transport error is
// echoed to stderr for diagnosis.
func processMessage(ctrl *session.Controller, input string, timeout time.Duration, renderMarkdown bool, markdown *components.MarkdownRenderer) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := ctrl.Send(ctx, input)
	if err != nil && (errors.Is(err, session.ErrBusy) || errors.Is(err, session.ErrEmptyInput)) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
	}

	last := lastAgentReply(ctrl)
	if last == "" {
		return
	}

	fmt.Println()
	if renderMarkdown {
		fmt.Println(markdown.Render(last))
	} else {
		fmt.Println(last)
	}
	fmt.Println()
}

// lastAgentReply returns the content of the newest agent message.
func lastAgentReply(ctrl *session.Controller) string {
	msgs := ctrl.Store().Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAgent {
			return msgs[i].Content
		}
	}
	return ""
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands. Returns false to exit.
func handleSlashCommand(cmd string, ctrl *session.Controller) bool {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/help", "/h", "/?", "/":
		printHelp()
		return true

	case "/new", "/n":
		ctrl.StartNewSession()
		fmt.Println(commandStyle.Render("[Started a new session]"))
		return true

	case "/history":
		printHistory(ctrl)
		return true

	case "/save":
		saveTranscript(cmd, ctrl)
		return true

	case "/quit", "/q", "/exit":
		return false

	default:
		fmt.Fprintf(os.Stderr, "%s unknown command: %s (type /help for commands)\n",
			errorStyle.Render("[Error]"), cmd)
		return true
	}
}

// saveTranscript writes the conversation so far to a file in the current
// directory. "/save" produces Markdown, "/save json" produces JSON.
func saveTranscript(cmd string, ctrl *session.Controller) {
	snap := ctrl.Store().Snapshot()
	if len(snap.Messages) == 0 {
		fmt.Println(infoStyle.Render("[Nothing to save yet]"))
		return
	}

	t := &export.Transcript{
		Title:    ctrl.Store().Title(),
		ThreadID: snap.ThreadID,
		Messages: snap.Messages,
	}

	var exporter export.Exporter = export.NewMarkdownExporter(nil)
	fields := strings.Fields(cmd)
	if len(fields) > 1 && strings.EqualFold(fields[1], "json") {
		exporter = export.NewJSONExporter()
	}

	path, err := export.ToFile(t, exporter, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s save failed: %v\n", errorStyle.Render("[Error]"), err)
		return
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Saved]"), path)
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(cfg *config.Config) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("onfin compliance chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Backend:"),
		commandStyle.Render(cfg.Server.BaseURL))
	fmt.Println()
	fmt.Println(infoStyle.Render("Type your question and press Enter. Commands: /help, /new, /quit"))
	fmt.Println()
}

// printHelp prints available commands.
func printHelp() {
	fmt.Println()
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/new, /n", "Start a new session"},
		{"/history", "Show conversation so far"},
		{"/save [json]", "Save transcript to a file"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-14s", c.cmd)),
			infoStyle.Render(c.desc))
	}
	fmt.Println()
}

// printHistory prints the conversation so far.
func printHistory(ctrl *session.Controller) {
	msgs := ctrl.Store().Messages()
	if len(msgs) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	for i, msg := range msgs {
		role := msg.Role.DisplayName()
		switch msg.Role {
		case model.RoleUser:
			role = lipgloss.NewStyle().Foreground(styles.Cyan).Render(role)
		case model.RoleAgent:
			role = lipgloss.NewStyle().Foreground(styles.Indigo).Render(role)
		case model.RoleSystem:
			role = lipgloss.NewStyle().Foreground(styles.Amber).Render(role)
		}

		content := util.NormalizeWhitespace(util.TruncateRunes(msg.Content, 100))
		fmt.Printf("  %d. %s: %s\n", i+1, role, content)
	}
	fmt.Println()
}
