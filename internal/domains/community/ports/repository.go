package ports

import (
	"context"
	"errors"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/domain"
)

var ErrPostNotFound = errors.New("post not found")

// Repository persists posts and comments. Loaded posts and comments carry
// their author.
type Repository interface {
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// GetPost returns the post without comments.
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	// GetPostWithComments returns the post and all its comments, newest first.
	GetPostWithComments(ctx context.Context, id int64) (*domain.Post, error)
	// ListPosts returns posts newest first with their comment counts. A nil
	// lookingFor matches every post.
	ListPosts(ctx context.Context, lookingFor *catalogdomain.Type) ([]domain.Post, error)
	AddComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	// DeletePost removes the post's comments, then the post.
	DeletePost(ctx context.Context, id int64) error
}
