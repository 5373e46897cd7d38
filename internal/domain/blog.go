package domain

import "time"

// BlogPost is an article on the marketing site.
type BlogPost struct {
	ID        string
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Author    string
	CoverURL  string
	Tags      []string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
