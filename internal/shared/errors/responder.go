package errors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for problem documents.
const ContentTypeProblemJSON = "application/problem+json"

// Responder writes problem documents. A non-empty BaseURI turns the relative
// problem type references absolute.
type Responder struct {
	BaseURI string
}

// DefaultResponder keeps problem types relative.
var DefaultResponder = &Responder{}

// Respond writes problem with the problem+json content type, defaulting the
// instance to the request path.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && strings.HasPrefix(problem.Type, "/") {
		problem.Type = strings.TrimSuffix(r.BaseURI, "/") + problem.Type
	}
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError maps err and responds. Server errors are also attached to the
// gin context so middleware can log them.
func (r *Responder) RespondError(c *gin.Context, err error) {
	problem := FromError(err)
	if problem.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	r.Respond(c, problem)
}

// BadRequest reports an unreadable request.
func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

// RespondError uses the default responder.
func RespondError(c *gin.Context, err error) {
	DefaultResponder.RespondError(c, err)
}
