package testsupport

import (
	"testing"
	"time"

	"github.com/embracingthegirlchild/site/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every fixture user.
const Password = "correct horse"

// CreateUser inserts an author with Password as the password.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.UserModel {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.UserModel{Username: username, Password: string(hash)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// PostOption customizes a fixture post before insert.
type PostOption func(*models.PostModel)

func WithStatus(status models.PostStatus) PostOption {
	return func(p *models.PostModel) { p.Status = status }
}

func WithCategory(category models.PostCategory) PostOption {
	return func(p *models.PostModel) { p.Category = category }
}

func WithImage(ref string) PostOption {
	return func(p *models.PostModel) { p.Image = ref }
}

func WithViews(views uint) PostOption {
	return func(p *models.PostModel) { p.Views = views }
}

// WithCreatedAt pins the creation time so ordering is deterministic.
func WithCreatedAt(at time.Time) PostOption {
	return func(p *models.PostModel) { p.CreatedAt = at }
}

// CreatePost inserts a post by author; the slug is derived from title.
func CreatePost(t testing.TB, db *gorm.DB, author *models.UserModel, title string, opts ...PostOption) *models.PostModel {
	t.Helper()

	post := &models.PostModel{
		Title:    title,
		Content:  "Content of " + title,
		AuthorID: author.ID,
	}
	for _, opt := range opts {
		opt(post)
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return post
}

// CreateComment inserts a comment on post.
func CreateComment(t testing.TB, db *gorm.DB, post *models.PostModel, name, body string) *models.CommentModel {
	t.Helper()

	comment := &models.CommentModel{PostID: post.ID, Name: name, Body: body}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}
