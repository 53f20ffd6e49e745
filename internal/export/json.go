// Copyright (c) 2025 Jaynou Oliver
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts as pretty-printed JSON.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter { return &JSONExporter{} }

// FileExtension implements Exporter.
func (e *JSONExporter) FileExtension() string { return ".json" }

// jsonDocument is the on-disk JSON shape.
type jsonDocument struct {
	Title    string        `json:"title"`
	ThreadID string        `json:"thread_id"`
	Exported time.Time     `json:"exported"`
	Messages []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Export converts a transcript to JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return nil, fmt.Errorf("transcript has no messages")
	}

	doc := jsonDocument{
		Title:    t.Title,
		ThreadID: t.ThreadID,
		Exported: time.Now().UTC(),
		Messages: make([]jsonMessage, 0, len(t.Messages)),
	}
	for _, msg := range t.Messages {
		doc.Messages = append(doc.Messages, jsonMessage{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}
