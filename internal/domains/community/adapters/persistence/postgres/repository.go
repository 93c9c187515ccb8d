package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/ports"
	platformpostgres "github.com/Apurer/pet-marketplace/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists posts and comments in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type postRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	AuthorID       string    `gorm:"column:author_id"`
	Title          string    `gorm:"column:title"`
	Content        string    `gorm:"column:content"`
	LookingForType *string   `gorm:"column:looking_for_type"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (postRecord) TableName() string { return "posts" }

type commentRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	PostID    int64     `gorm:"column:post_id"`
	AuthorID  string    `gorm:"column:author_id"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (commentRecord) TableName() string { return "comments" }

type authorRow struct {
	ID    string
	Name  string
	Image string
	Roles pq.StringArray `gorm:"type:text[]"`
}

type countRow struct {
	PostID int64
	Count  int64
}

func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New("post is nil")
	}
	conn := platformpostgres.Conn(ctx, r.db)
	now := time.Now().UTC()
	record := postRecord{
		AuthorID:  post.AuthorID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if post.LookingForType != nil {
		t := string(*post.LookingForType)
		record.LookingForType = &t
	}
	if err := conn.Create(&record).Error; err != nil {
		return nil, err
	}
	posts, err := hydratePosts(conn, []postRecord{record})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *Repository) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	record, err := findPost(conn, id)
	if err != nil {
		return nil, err
	}
	posts, err := hydratePosts(conn, []postRecord{*record})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *Repository) GetPostWithComments(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := r.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	var records []commentRecord
	if err := conn.Where("post_id = ?", id).Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	comments, err := hydrateComments(conn, records)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}

func (r *Repository) ListPosts(ctx context.Context, lookingFor *catalogdomain.Type) ([]domain.Post, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	query := conn.Model(&postRecord{})
	if lookingFor != nil {
		query = query.Where("looking_for_type = ?", string(*lookingFor))
	}
	var records []postRecord
	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return hydratePosts(conn, records)
}

func (r *Repository) AddComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, errors.New("comment is nil")
	}
	conn := platformpostgres.Conn(ctx, r.db)
	record := commentRecord{
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := conn.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ports.ErrPostNotFound
		}
		return nil, err
	}
	comments, err := hydrateComments(conn, []commentRecord{record})
	if err != nil {
		return nil, err
	}
	return &comments[0], nil
}

func (r *Repository) DeletePost(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	conn := platformpostgres.Conn(ctx, r.db)
	if err := conn.Where("post_id = ?", id).Delete(&commentRecord{}).Error; err != nil {
		return err
	}
	result := conn.Delete(&postRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres community repository not configured")
	}
	return nil
}

func findPost(conn *gorm.DB, id int64) (*postRecord, error) {
	var record postRecord
	if err := conn.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrPostNotFound
		}
		return nil, err
	}
	return &record, nil
}

// hydratePosts attaches authors and comment counts in two batched queries.
func hydratePosts(conn *gorm.DB, records []postRecord) ([]domain.Post, error) {
	if len(records) == 0 {
		return []domain.Post{}, nil
	}
	ids := make([]int64, len(records))
	authorIDs := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		authorIDs[i] = rec.AuthorID
	}
	authors, err := loadAuthors(conn, authorIDs)
	if err != nil {
		return nil, err
	}
	var counts []countRow
	if err := conn.Model(&commentRecord{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countByPost := make(map[int64]int64, len(counts))
	for _, c := range counts {
		countByPost[c.PostID] = c.Count
	}
	out := make([]domain.Post, 0, len(records))
	for _, rec := range records {
		p := domain.Post{
			ID:           rec.ID,
			AuthorID:     rec.AuthorID,
			Title:        rec.Title,
			Content:      rec.Content,
			CreatedAt:    rec.CreatedAt,
			UpdatedAt:    rec.UpdatedAt,
			Author:       authors[rec.AuthorID],
			CommentCount: countByPost[rec.ID],
		}
		if rec.LookingForType != nil {
			t := catalogdomain.Type(*rec.LookingForType)
			p.LookingForType = &t
		}
		out = append(out, p)
	}
	return out, nil
}

func hydrateComments(conn *gorm.DB, records []commentRecord) ([]domain.Comment, error) {
	authorIDs := make([]string, len(records))
	for i, rec := range records {
		authorIDs[i] = rec.AuthorID
	}
	authors, err := loadAuthors(conn, authorIDs)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Comment{
			ID:        rec.ID,
			PostID:    rec.PostID,
			AuthorID:  rec.AuthorID,
			Content:   rec.Content,
			CreatedAt: rec.CreatedAt,
			Author:    authors[rec.AuthorID],
		})
	}
	return out, nil
}

func loadAuthors(conn *gorm.DB, ids []string) (map[string]*domain.Author, error) {
	authors := make(map[string]*domain.Author, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}
	var rows []authorRow
	if err := conn.Table("users").Select("id, name, image, roles").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		authors[row.ID] = &domain.Author{ID: row.ID, Name: row.Name, Image: row.Image, Roles: []string(row.Roles)}
	}
	return authors, nil
}
