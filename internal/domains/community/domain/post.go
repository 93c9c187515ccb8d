package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
)

const maxTitleLength = 255

var (
	ErrEmptyTitle   = errors.New("post title is required")
	ErrTitleTooLong = errors.New("post title is too long")
	ErrEmptyContent = errors.New("content is required")
)

// Author is the public summary of a post or comment writer.
type Author struct {
	ID    string
	Name  string
	Image string
	Roles []string
}

// Post is a "looking for" message on the community board.
type Post struct {
	ID             int64
	AuthorID       string
	Title          string
	Content        string
	LookingForType *catalogdomain.Type
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Author       *Author
	CommentCount int64
	// Comments is only loaded for a single post, newest first.
	Comments []Comment
}

type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  string
	Content   string
	CreatedAt time.Time
	Author    *Author
}

// NewPost validates a post. lookingFor may be empty.
func NewPost(authorID, title, content, lookingFor string) (*Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	post := &Post{AuthorID: authorID, Title: title, Content: content}
	if strings.TrimSpace(lookingFor) != "" {
		t, err := catalogdomain.ParseType(lookingFor)
		if err != nil {
			return nil, err
		}
		post.LookingForType = &t
	}
	return post, nil
}

func NewComment(postID int64, authorID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	return &Comment{PostID: postID, AuthorID: authorID, Content: content}, nil
}
