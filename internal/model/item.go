package model

import (
	"slices"
	"time"
)

// Item is the domain model for a todo entry as the backend returns it.
// ID and the timestamps are assigned remotely; the client never sets them.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewItem is the create payload (CreateTodoInput on the backend).
type NewItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SortByUpdated orders items oldest-modified first. Ties keep backend order.
func SortByUpdated(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
}
