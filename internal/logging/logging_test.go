// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "debug.log")

	closer, err := Setup(path, "debug")
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	log.Info().Str("key", "value").Msg("hello from test")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestSetup_OffDisablesLogging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug.log")

	closer, err := Setup(path, "off")
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer closer.Close()

	log.Info().Msg("should not appear")

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("log file should not be created when logging is off")
	}
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	if _, err := Setup(filepath.Join(t.TempDir(), "x.log"), "verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
