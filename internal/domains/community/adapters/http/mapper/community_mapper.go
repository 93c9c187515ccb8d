package mapper

import (
	"time"

	"github.com/Apurer/pet-marketplace/internal/domains/community/application/types"
	"github.com/Apurer/pet-marketplace/internal/domains/community/domain"
)

type CreatePostRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	LookingForType string `json:"lookingForType,omitempty"`
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

type Author struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Image string   `json:"image,omitempty"`
	Roles []string `json:"roles"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    *Author   `json:"author,omitempty"`
}

type Post struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	LookingForType *string   `json:"lookingForType"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Author         *Author   `json:"author,omitempty"`
	CommentCount   int64     `json:"commentCount"`
	Comments       []Comment `json:"comments,omitempty"`
}

func (r CreatePostRequest) ToInput() types.CreatePostInput {
	return types.CreatePostInput{Title: r.Title, Content: r.Content, LookingForType: r.LookingForType}
}

func (r AddCommentRequest) ToInput(postID int64) types.AddCommentInput {
	return types.AddCommentInput{PostID: postID, Content: r.Content}
}

func fromAuthor(a *domain.Author) *Author {
	if a == nil {
		return nil
	}
	roles := a.Roles
	if roles == nil {
		roles = []string{}
	}
	return &Author{ID: a.ID, Name: a.Name, Image: a.Image, Roles: roles}
}

func FromComment(c *domain.Comment) Comment {
	return Comment{ID: c.ID, PostID: c.PostID, Content: c.Content, CreatedAt: c.CreatedAt, Author: fromAuthor(c.Author)}
}

func FromPost(p *domain.Post) Post {
	out := Post{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Author:       fromAuthor(p.Author),
		CommentCount: p.CommentCount,
	}
	if p.LookingForType != nil {
		t := string(*p.LookingForType)
		out.LookingForType = &t
	}
	if len(p.Comments) > 0 {
		out.Comments = make([]Comment, 0, len(p.Comments))
		for i := range p.Comments {
			out.Comments = append(out.Comments, FromComment(&p.Comments[i]))
		}
	}
	return out
}

func FromPosts(posts []domain.Post) []Post {
	out := make([]Post, 0, len(posts))
	for i := range posts {
		out = append(out, FromPost(&posts[i]))
	}
	return out
}
