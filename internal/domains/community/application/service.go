package application

import (
	"context"
	"errors"
	"strings"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/community/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/ports"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
	"github.com/Apurer/pet-marketplace/internal/shared/transaction"
)

var _ ports.Service = (*Service)(nil)

// Service runs the community board.
type Service struct {
	repo ports.Repository
	tx   transaction.Manager
}

func NewService(repo ports.Repository, tx transaction.Manager) *Service {
	if tx == nil {
		tx = transaction.None
	}
	return &Service{repo: repo, tx: tx}
}

func (s *Service) CreatePost(ctx context.Context, principal authz.Principal, input types.CreatePostInput) (*domain.Post, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	post, err := domain.NewPost(principal.UserID, input.Title, input.Content, input.LookingForType)
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.repo.CreatePost(ctx, post)
	return created, mapError(err)
}

// AddComment appends a comment to an existing post and returns it with its author.
func (s *Service) AddComment(ctx context.Context, principal authz.Principal, input types.AddCommentInput) (*domain.Comment, error) {
	if err := authz.RequireUser(principal); err != nil {
		return nil, err
	}
	comment, err := domain.NewComment(input.PostID, principal.UserID, input.Content)
	if err != nil {
		return nil, mapError(err)
	}
	var created *domain.Comment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetPost(ctx, input.PostID); err != nil {
			return err
		}
		created, err = s.repo.AddComment(ctx, comment)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// DeletePost removes a post and its comments. Only the author or an admin may delete.
func (s *Service) DeletePost(ctx context.Context, principal authz.Principal, id int64) error {
	if err := authz.RequireUser(principal); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		post, err := s.repo.GetPost(ctx, id)
		if err != nil {
			return mapError(err)
		}
		resource := authz.Resource{Kind: "post", ID: post.ID, Owners: []string{post.AuthorID}}
		if err := authz.Authorize(principal, authz.ActionDeletePost, resource); err != nil {
			return err
		}
		return mapError(s.repo.DeletePost(ctx, post.ID))
	})
}

// ListPosts returns the feed newest first. A filter that is not a pet type is
// ignored and reported in the feed.
func (s *Service) ListPosts(ctx context.Context, filterType string) (types.Feed, error) {
	var (
		feed   types.Feed
		filter *catalogdomain.Type
	)
	if raw := strings.TrimSpace(filterType); raw != "" {
		t, err := catalogdomain.ParseType(raw)
		if err != nil {
			feed.IgnoredFilter = raw
		} else {
			filter = &t
		}
	}
	posts, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		return types.Feed{}, mapError(err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	feed.Posts = posts
	return feed, nil
}

func (s *Service) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.repo.GetPostWithComments(ctx, id)
	return post, mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, catalogdomain.ErrInvalidType):
		return apperr.Wrap(apperr.ErrValidation, err)
	case errors.Is(err, ports.ErrPostNotFound):
		return apperr.Wrap(apperr.ErrNotFound, err)
	}
	return err
}
