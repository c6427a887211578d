package model

import "time"

// ArchiveStatus summarizes the archive pipeline for the admin API.
type ArchiveStatus struct {
	Enabled        bool       `json:"enabled"`
	Sinks          []string   `json:"sinks"`
	Pending        int64      `json:"pending"`
	Dropped        int64      `json:"dropped"`
	LastFlushAt    *time.Time `json:"last_flush_at,omitempty"`
	LastFlushSink  string     `json:"last_flush_sink,omitempty"`
	LastFlushCount int        `json:"last_flush_count"`
	LastError      string     `json:"last_error,omitempty"`
}
