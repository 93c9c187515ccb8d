package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/ports"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
)

var _ ports.Repository = (*Repository)(nil)

type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post == nil {
		return nil, errors.New("post is nil")
	}
	var created *domain.Post
	err := r.db.Update(ctx, func(s *memdb.State) error {
		now := r.db.Now()
		row := memdb.Post{
			ID:        s.NextID("posts"),
			AuthorID:  post.AuthorID,
			Title:     post.Title,
			Content:   post.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if post.LookingForType != nil {
			t := string(*post.LookingForType)
			row.LookingForType = &t
		}
		s.Posts[row.ID] = row
		created = toPost(s, row)
		return nil
	})
	return created, err
}

func (r *Repository) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	var found *domain.Post
	err := r.db.View(ctx, func(s *memdb.State) error {
		row, ok := s.Posts[id]
		if !ok {
			return ports.ErrPostNotFound
		}
		found = toPost(s, row)
		return nil
	})
	return found, err
}

func (r *Repository) GetPostWithComments(ctx context.Context, id int64) (*domain.Post, error) {
	var found *domain.Post
	err := r.db.View(ctx, func(s *memdb.State) error {
		row, ok := s.Posts[id]
		if !ok {
			return ports.ErrPostNotFound
		}
		found = toPost(s, row)
		comments := commentsOf(s, id)
		found.Comments = make([]domain.Comment, 0, len(comments))
		for _, c := range comments {
			found.Comments = append(found.Comments, toComment(s, c))
		}
		return nil
	})
	return found, err
}

func (r *Repository) ListPosts(ctx context.Context, lookingFor *catalogdomain.Type) ([]domain.Post, error) {
	var out []domain.Post
	err := r.db.View(ctx, func(s *memdb.State) error {
		rows := make([]memdb.Post, 0, len(s.Posts))
		for _, row := range s.Posts {
			if lookingFor != nil && (row.LookingForType == nil || *row.LookingForType != string(*lookingFor)) {
				continue
			}
			rows = append(rows, row)
		}
		slices.SortFunc(rows, func(a, b memdb.Post) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		})
		out = make([]domain.Post, 0, len(rows))
		for _, row := range rows {
			out = append(out, *toPost(s, row))
		}
		return nil
	})
	return out, err
}

func (r *Repository) AddComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if comment == nil {
		return nil, errors.New("comment is nil")
	}
	var created domain.Comment
	err := r.db.Update(ctx, func(s *memdb.State) error {
		if _, ok := s.Posts[comment.PostID]; !ok {
			return ports.ErrPostNotFound
		}
		row := memdb.Comment{
			ID:        s.NextID("comments"),
			PostID:    comment.PostID,
			AuthorID:  comment.AuthorID,
			Content:   comment.Content,
			CreatedAt: r.db.Now(),
		}
		s.Comments[row.ID] = row
		created = toComment(s, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	return r.db.Update(ctx, func(s *memdb.State) error {
		if _, ok := s.Posts[id]; !ok {
			return ports.ErrPostNotFound
		}
		for cid, c := range s.Comments {
			if c.PostID == id {
				delete(s.Comments, cid)
			}
		}
		delete(s.Posts, id)
		return nil
	})
}

func commentsOf(s *memdb.State, postID int64) []memdb.Comment {
	rows := make([]memdb.Comment, 0)
	for _, c := range s.Comments {
		if c.PostID == postID {
			rows = append(rows, c)
		}
	}
	slices.SortFunc(rows, func(a, b memdb.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return rows
}

func author(s *memdb.State, id string) *domain.Author {
	user, ok := s.Users[id]
	if !ok {
		return nil
	}
	return &domain.Author{ID: user.ID, Name: user.Name, Image: user.Image, Roles: slices.Clone(user.Roles)}
}

func toPost(s *memdb.State, row memdb.Post) *domain.Post {
	p := &domain.Post{
		ID:           row.ID,
		AuthorID:     row.AuthorID,
		Title:        row.Title,
		Content:      row.Content,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Author:       author(s, row.AuthorID),
		CommentCount: int64(len(commentsOf(s, row.ID))),
	}
	if row.LookingForType != nil {
		t := catalogdomain.Type(*row.LookingForType)
		p.LookingForType = &t
	}
	return p
}

func toComment(s *memdb.State, row memdb.Comment) domain.Comment {
	return domain.Comment{
		ID:        row.ID,
		PostID:    row.PostID,
		AuthorID:  row.AuthorID,
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
		Author:    author(s, row.AuthorID),
	}
}
