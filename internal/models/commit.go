package models

import "time"

// CommitInfo represents a single commit on a pull request
type CommitInfo struct {
	SHA         string    `json:"sha"`
	Author      string    `json:"author"`
	CommittedAt time.Time `json:"committed_at"`
	Message     string    `json:"message"`
}
