package dashboard

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/content/post"
	"github.com/embracingthegirlchild/site/internal/pkg/slug"
	"github.com/embracingthegirlchild/site/internal/pkg/validation"
	"github.com/gin-gonic/gin"
)

const maxImageSize = 10 << 20

const (
	msgInvalidSlug  = "Enter a valid “slug” consisting of letters, numbers, underscores or hyphens."
	msgSlugTaken    = "Post with this Slug already exists."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgEmptyImage   = "The submitted file is empty."
	msgLargeImage   = "The image may not be larger than 10 MB."
)

// PostForm is the create/edit form. The image travels separately as a
// multipart file.
type PostForm struct {
	Title      string `form:"title"       binding:"required,max=200"`
	Slug       string `form:"slug"        binding:"omitempty,max=255"`
	Content    string `form:"content"     binding:"required"`
	Category   string `form:"category"    binding:"omitempty,oneof=education legal success awareness activism advocacy"`
	Status     string `form:"status"      binding:"omitempty,oneof=draft published archived"`
	PubLink    string `form:"pub_link"    binding:"omitempty,url,max=500"`
	ImageClear string `form:"image-clear"`
}

func formFromPost(p *models.PostModel) PostForm {
	return PostForm{
		Title:    p.Title,
		Slug:     p.Slug,
		Content:  p.Content,
		Category: string(p.Category),
		Status:   string(p.Status),
		PubLink:  p.PubLink,
	}
}

// bindPostForm binds and validates the submitted form, including the
// optional image upload.
func bindPostForm(c *gin.Context) (PostForm, *post.Input, validation.Errors) {
	var form PostForm
	errs := validation.BindForm(c, &form)
	if form.Slug != "" && !slug.Valid(form.Slug) {
		errs.Add("slug", msgInvalidSlug)
	}

	upload, err := readImage(c)
	if err != nil {
		errs.Add("image", err.Error())
	}
	if form.Status == "" {
		form.Status = string(models.StatusDraft)
	}

	in := &post.Input{
		Title:      form.Title,
		Slug:       form.Slug,
		Content:    form.Content,
		Category:   models.PostCategory(form.Category),
		Status:     models.PostStatus(form.Status),
		PubLink:    form.PubLink,
		Image:      upload,
		ClearImage: form.ImageClear == "on" || form.ImageClear == "true",
	}
	return form, in, errs
}

func readImage(c *gin.Context) (*post.Upload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New(msgInvalidImage)
	}
	if fh.Size > maxImageSize {
		return nil, errors.New(msgLargeImage)
	}
	data, err := readAll(fh)
	switch {
	case err != nil:
		return nil, errors.New(msgInvalidImage)
	case len(data) == 0:
		return nil, errors.New(msgEmptyImage)
	case len(data) > maxImageSize:
		return nil, errors.New(msgLargeImage)
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, errors.New(msgInvalidImage)
	}
	return &post.Upload{Filename: fh.Filename, Data: data}, nil
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageSize+1))
}

// serviceErrors maps service failures that belong to a field.
func serviceErrors(err error) (validation.Errors, bool) {
	errs := validation.Errors{}
	switch {
	case errors.Is(err, post.ErrSlugTaken):
		errs.Add("slug", msgSlugTaken)
	case errors.Is(err, post.ErrNotAnImage):
		errs.Add("image", msgInvalidImage)
	case errors.Is(err, post.ErrEmptyUpload):
		errs.Add("image", msgEmptyImage)
	default:
		return nil, false
	}
	return errs, true
}
