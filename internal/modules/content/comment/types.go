package comment

import "errors"

var errPostRequired = errors.New("comment needs a post")

// CreateCommentDTO is the comment form on the post detail page.
type CreateCommentDTO struct {
	Name string `form:"name" binding:"required,max=80"`
	Body string `form:"body" binding:"required"`
}
