package domain

import "time"

// ToggleResult reports what a toggle did.
type ToggleResult string

const (
	Added   ToggleResult = "added"
	Removed ToggleResult = "removed"
)

// FavoritePet is a favorited pet as shown in the user's list.
type FavoritePet struct {
	PetID       int64
	OwnerID     string
	Name        string
	Type        string
	PriceCents  int64
	Status      string
	Images      []string
	FavoritedAt time.Time
}
