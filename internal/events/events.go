package events

import (
	"encoding/json"
	"time"
)

// Event types pushed to /events subscribers.
const (
	TypeJobApplied    = "job_applied"
	TypeJobSaved      = "job_saved"
	TypeScrapeStarted = "scrape_started"
	TypeScrapeDone    = "scrape_finished"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent encodes one event as a JSON line for the SSE stream.
func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// JobRef is the payload of job events.
type JobRef struct {
	ID      int64  `json:"id"`
	Company string `json:"company,omitempty"`
	Title   string `json:"title,omitempty"`
}
