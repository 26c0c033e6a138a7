package models

import (
	"time"

	"github.com/google/uuid"
)

type Activity struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	MinAge      int    `json:"min_age"`
	MaxAge      int    `json:"max_age"`
	StarsReward int    `json:"stars_reward"`
	ImageURL    string `json:"image_url,omitempty"`
	IsPublished bool   `json:"is_published"`
}

type Advice struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title"`
	Body        string `json:"body"`
	Category    string `json:"category,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	IsPublished bool   `json:"is_published"`
}

type ContentItem struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title"`
	Kind        string `json:"kind"` // article, video, guide
	Body        string `json:"body,omitempty"`
	MediaURL    string `json:"media_url,omitempty"`
	IsPublished bool   `json:"is_published"`
}
