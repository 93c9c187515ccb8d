package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	communitymapper "github.com/Apurer/pet-marketplace/internal/domains/community/adapters/http/mapper"
	communityports "github.com/Apurer/pet-marketplace/internal/domains/community/ports"
)

// CommunityAPI wires HTTP transport with the community board.
type CommunityAPI struct {
	service communityports.Service
}

func NewCommunityAPI(service communityports.Service) CommunityAPI {
	return CommunityAPI{service: service}
}

// Get /api/community/posts?type=dog
func (api CommunityAPI) ListPosts(c *gin.Context) {
	feed, err := api.service.ListPosts(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, communitymapper.FromPosts(feed.Posts))
}

// Get /api/community/posts/:postId
func (api CommunityAPI) GetPost(c *gin.Context) {
	id, ok := parseIDParam(c, "postId")
	if !ok {
		return
	}
	post, err := api.service.GetPost(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, communitymapper.FromPost(post))
}

// Post /api/community/posts
func (api CommunityAPI) CreatePost(c *gin.Context) {
	var payload communitymapper.CreatePostRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	post, err := api.service.CreatePost(c.Request.Context(), principalFrom(c), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, communitymapper.FromPost(post))
}

// Post /api/community/posts/:postId/comments
func (api CommunityAPI) AddComment(c *gin.Context) {
	id, ok := parseIDParam(c, "postId")
	if !ok {
		return
	}
	var payload communitymapper.AddCommentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	comment, err := api.service.AddComment(c.Request.Context(), principalFrom(c), payload.ToInput(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, communitymapper.FromComment(comment))
}

// Delete /api/community/posts/:postId
func (api CommunityAPI) DeletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "postId")
	if !ok {
		return
	}
	if err := api.service.DeletePost(c.Request.Context(), principalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
