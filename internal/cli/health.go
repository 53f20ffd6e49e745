// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

// health.go - Backend health check command for the onfin CLI.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/JaynouOliver/onfin-tui/internal/api"
)

// RunHealth probes the backend and prints its status. Returns a non-nil
// error when the backend is unreachable or reports an unhealthy status, so
// the command exits non-zero for scripting.
func RunHealth(client *api.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), api.HealthTimeout)
	defer cancel()

	h, err := client.Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s is unreachable: %v\n",
			errorStyle.Render("[Error]"), client.BaseURL(), err)
		return err
	}

	if !h.OK() {
		fmt.Printf("%s %s reports status %q\n",
			errorStyle.Render("[Degraded]"), client.BaseURL(), h.Status)
		return fmt.Errorf("backend status: %s", h.Status)
	}

	service := h.Service
	if service == "" {
		service = "backend"
	}
	fmt.Printf("%s %s (%s) is healthy\n",
		commandStyle.Render("[OK]"), client.BaseURL(), service)
	return nil
}
