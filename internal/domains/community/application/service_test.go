package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/Apurer/pet-marketplace/internal/domains/catalog/domain"
	"github.com/Apurer/pet-marketplace/internal/domains/community/adapters/memory"
	"github.com/Apurer/pet-marketplace/internal/domains/community/application/types"
	"github.com/Apurer/pet-marketplace/internal/platform/memdb"
	"github.com/Apurer/pet-marketplace/internal/shared/apperr"
	"github.com/Apurer/pet-marketplace/internal/shared/authz"
)

var (
	gina  = authz.Principal{UserID: "gina", Roles: []authz.Role{authz.RoleCustomer}}
	hank  = authz.Principal{UserID: "hank", Roles: []authz.Role{authz.RoleCustomer}}
	admin = authz.Principal{UserID: "root", Roles: []authz.Role{authz.RoleAdmin}}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db := memdb.New().WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	require.NoError(t, db.Update(context.Background(), func(s *memdb.State) error {
		s.Users["gina"] = memdb.User{ID: "gina", Name: "Gina", Roles: []string{"customer"}}
		s.Users["hank"] = memdb.User{ID: "hank", Name: "Hank", Roles: []string{"customer"}}
		return nil
	}))
	return NewService(memory.NewRepository(db), db)
}

func TestCreatePostValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, gina, types.CreatePostInput{Title: "Looking for a beagle", Content: "Kraków area", LookingForType: "dog"})
	require.NoError(t, err)
	require.NotNil(t, post.LookingForType)
	assert.Equal(t, catalogdomain.TypeDog, *post.LookingForType)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Gina", post.Author.Name)

	_, err = svc.CreatePost(ctx, gina, types.CreatePostInput{Title: " ", Content: "x"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.CreatePost(ctx, gina, types.CreatePostInput{Title: "x", Content: "x", LookingForType: "unicorn"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.CreatePost(ctx, authz.Principal{}, types.CreatePostInput{Title: "x", Content: "x"})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAddCommentToMissingPost(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddComment(context.Background(), hank, types.AddCommentInput{PostID: 404, Content: "hi"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListPostsCountsCommentsAndIgnoresUnknownFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	dogs, err := svc.CreatePost(ctx, gina, types.CreatePostInput{Title: "Dogs", Content: "any", LookingForType: "dog"})
	require.NoError(t, err)
	cats, err := svc.CreatePost(ctx, hank, types.CreatePostInput{Title: "Cats", Content: "any", LookingForType: "cat"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		comment, err := svc.AddComment(ctx, hank, types.AddCommentInput{PostID: dogs.ID, Content: "me too"})
		require.NoError(t, err)
		require.NotNil(t, comment.Author)
		assert.Equal(t, "Hank", comment.Author.Name)
	}

	feed, err := svc.ListPosts(ctx, "unicorn")
	require.NoError(t, err)
	assert.Equal(t, "unicorn", feed.IgnoredFilter)
	require.Len(t, feed.Posts, 2)
	assert.Equal(t, cats.ID, feed.Posts[0].ID)
	assert.Equal(t, int64(0), feed.Posts[0].CommentCount)
	assert.Equal(t, int64(2), feed.Posts[1].CommentCount)
	assert.Empty(t, feed.Posts[1].Comments)

	filtered, err := svc.ListPosts(ctx, "Dog")
	require.NoError(t, err)
	assert.Empty(t, filtered.IgnoredFilter)
	require.Len(t, filtered.Posts, 1)
	assert.Equal(t, dogs.ID, filtered.Posts[0].ID)
}

func TestGetPostReturnsCommentsNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, gina, types.CreatePostInput{Title: "Dogs", Content: "any"})
	require.NoError(t, err)
	first, err := svc.AddComment(ctx, hank, types.AddCommentInput{PostID: post.ID, Content: "first"})
	require.NoError(t, err)
	second, err := svc.AddComment(ctx, gina, types.AddCommentInput{PostID: post.ID, Content: "second"})
	require.NoError(t, err)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, second.ID, got.Comments[0].ID)
	assert.Equal(t, first.ID, got.Comments[1].ID)

	_, err = svc.GetPost(ctx, 404)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeletePostAuthorization(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, gina, types.CreatePostInput{Title: "Dogs", Content: "any"})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, hank, types.AddCommentInput{PostID: post.ID, Content: "hi"})
	require.NoError(t, err)

	err = svc.DeletePost(ctx, hank, post.ID)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	intact, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, intact.Comments, 1)

	require.NoError(t, svc.DeletePost(ctx, admin, post.ID))
	_, err = svc.GetPost(ctx, post.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.DeletePost(ctx, gina, post.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAuthorCanDeleteOwnPost(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, gina, types.CreatePostInput{Title: "Dogs", Content: "any"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, gina, post.ID))
	feed, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, feed.Posts)
	assert.NotNil(t, feed.Posts)
}
