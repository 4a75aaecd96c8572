package models_test

import (
	"testing"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/testsupport"
)

func TestPostSlugDerivedAndUnique(t *testing.T) {
	db := testsupport.OpenDB(t)
	author := testsupport.CreateUser(t, db, "amina")

	first := testsupport.CreatePost(t, db, author, "My Post")
	second := testsupport.CreatePost(t, db, author, "My Post")
	third := testsupport.CreatePost(t, db, author, "My   post!")

	if first.Slug != "my-post" {
		t.Fatalf("first slug = %q, want my-post", first.Slug)
	}
	if second.Slug != "my-post-1" {
		t.Fatalf("second slug = %q, want my-post-1", second.Slug)
	}
	if third.Slug != "my-post-2" {
		t.Fatalf("third slug = %q, want my-post-2", third.Slug)
	}
}

func TestPostSlugKeptWhenSupplied(t *testing.T) {
	db := testsupport.OpenDB(t)
	author := testsupport.CreateUser(t, db, "amina")

	post := &models.PostModel{Title: "Anything", Slug: "custom-slug", Content: "x", AuthorID: author.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Slug != "custom-slug" {
		t.Fatalf("slug = %q, want custom-slug", post.Slug)
	}
	if post.Status != models.StatusDraft {
		t.Fatalf("status = %q, want draft", post.Status)
	}
}

func TestPostSaveDoesNotRegenerateSlug(t *testing.T) {
	db := testsupport.OpenDB(t)
	author := testsupport.CreateUser(t, db, "amina")
	post := testsupport.CreatePost(t, db, author, "Stable Title")

	post.Title = "A Completely Different Title"
	if err := db.Save(post).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	var reloaded models.PostModel
	if err := db.First(&reloaded, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Slug != "stable-title" {
		t.Fatalf("slug changed to %q", reloaded.Slug)
	}
}

func TestCategoryLabels(t *testing.T) {
	if got := models.CategoryLegal.Label(); got != "Legal Rights" {
		t.Fatalf("legal label = %q", got)
	}
	if models.PostCategory("sports").Valid() {
		t.Fatal("unexpected valid category")
	}
	if !models.StatusArchived.Valid() {
		t.Fatal("archived should be valid")
	}
}
