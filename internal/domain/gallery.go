package domain

import "time"

// GalleryImage is a gallery document paired with its stored image file. It travels in
// realtime change events, hence the JSON tags.
type GalleryImage struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	ImageID     string    `json:"imageId"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
