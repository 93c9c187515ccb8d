package types

import "github.com/Apurer/pet-marketplace/internal/domains/community/domain"

type CreatePostInput struct {
	Title          string
	Content        string
	LookingForType string
}

type AddCommentInput struct {
	PostID  int64
	Content string
}

// Feed is the post list. IgnoredFilter holds a filter value that was not a
// known pet type and therefore not applied.
type Feed struct {
	Posts         []domain.Post
	IgnoredFilter string
}
