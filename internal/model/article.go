package model

import "time"

// Article is a text post stored at articles/{id}.
//
// Articles live in one global collection; ID is the store key and is not
// persisted inside the record itself. UpdatedAt stays nil until the first edit.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	AuthorID    string     `json:"authorId"`
	AuthorEmail string     `json:"authorEmail"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// ArticleInput holds the user-editable article fields.
type ArticleInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
