package models

import "time"

// CommentInfo represents a comment on a pull request. Review comments and
// issue comments are collected into the same list, ordered by creation time.
type CommentInfo struct {
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Body      string    `json:"body"`
}
