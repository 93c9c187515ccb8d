package ports

import (
	"context"

	"github.com/Apurer/pet-marketplace/internal/domains/community/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/community/domain"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

type Service interface {
	CreatePost(ctx context.Context, principal authz.Principal, input types.CreatePostInput) (*domain.Post, error)
	AddComment(ctx context.Context, principal authz.Principal, input types.AddCommentInput) (*domain.Comment, error)
	DeletePost(ctx context.Context, principal authz.Principal, id int64) error
	ListPosts(ctx context.Context, filterType string) (types.Feed, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
}
