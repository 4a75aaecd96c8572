package post

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/storage/media"
	"github.com/embracingthegirlchild/site/internal/pkg/events"
	"github.com/embracingthegirlchild/site/internal/testsupport"
	"gorm.io/gorm"
)

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newService(t *testing.T) (*Service, *gorm.DB, *events.Recorder, *media.Local) {
	t.Helper()
	db := testsupport.OpenDB(t)
	store := media.NewLocal(t.TempDir())
	rec := &events.Recorder{}
	return NewService(db, store, rec, nil, nil), db, rec, store
}

func TestLatestAndListOrdering(t *testing.T) {
	svc, db, _, _ := newService(t)
	author := testsupport.CreateUser(t, db, "alice")
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Oldest", "Middle", "Newest", "Latest"} {
		testsupport.CreatePost(t, db, author, title, testsupport.WithCreatedAt(base.AddDate(0, 0, i)))
	}

	latest, err := svc.Latest(context.Background(), HomeSize)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(latest) != 3 || latest[0].Title != "Latest" || latest[2].Title != "Middle" {
		t.Fatalf("unexpected latest %v", titles(latest))
	}

	page, err := svc.List(context.Background(), "2", 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Number != 2 || page.NumPages != 2 || len(page.Items) != 1 || page.Items[0].Title != "Oldest" {
		t.Fatalf("unexpected page %d/%d %v", page.Number, page.NumPages, titles(page.Items))
	}
}

func titles(posts []models.PostModel) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestGetOwnedHidesOtherAuthors(t *testing.T) {
	svc, db, _, _ := newService(t)
	alice := testsupport.CreateUser(t, db, "alice")
	bob := testsupport.CreateUser(t, db, "bob")
	testsupport.CreatePost(t, db, alice, "Mine")

	got, err := svc.GetOwned(context.Background(), "mine", bob.ID)
	if err != nil || got != nil {
		t.Fatalf("GetOwned as bob = %v, %v; want nil, nil", got, err)
	}
	got, err = svc.GetOwned(context.Background(), "mine", alice.ID)
	if err != nil || got == nil {
		t.Fatalf("GetOwned as alice = %v, %v", got, err)
	}
}

func TestCreateStoresImageAndPublishes(t *testing.T) {
	svc, db, rec, store := newService(t)
	author := testsupport.CreateUser(t, db, "alice")

	p, err := svc.Create(context.Background(), author.ID, &Input{
		Title:   "  Hello World ",
		Content: "Body",
		Status:  models.StatusPublished,
		Image:   &Upload{Filename: "My Photo.png", Data: png},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Title != "Hello World" || p.Slug != "hello-world" {
		t.Fatalf("unexpected post %q %q", p.Title, p.Slug)
	}
	if !strings.HasPrefix(p.Image, media.ImageDir+"/") || !strings.HasSuffix(p.Image, ".png") {
		t.Fatalf("image ref = %q", p.Image)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(p.Image))); err != nil {
		t.Fatalf("stored image: %v", err)
	}
	if types := rec.Types(); len(types) != 1 || types[0] != events.PostCreated {
		t.Fatalf("events = %v", types)
	}
}

func TestCreateRejectsTakenSlugAndNonImages(t *testing.T) {
	svc, db, _, _ := newService(t)
	author := testsupport.CreateUser(t, db, "alice")
	testsupport.CreatePost(t, db, author, "Taken")

	_, err := svc.Create(context.Background(), author.ID, &Input{Title: "x", Slug: "taken", Content: "c"})
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("err = %v, want ErrSlugTaken", err)
	}
	_, err = svc.Create(context.Background(), author.ID, &Input{Title: "x", Content: "c",
		Image: &Upload{Filename: "a.png", Data: []byte("hello")}})
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("err = %v, want ErrNotAnImage", err)
	}
	_, err = svc.Create(context.Background(), author.ID, &Input{Title: "x", Content: "c",
		Image: &Upload{Filename: "a.png"}})
	if !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("err = %v, want ErrEmptyUpload", err)
	}
}

func TestUpdateSlugRules(t *testing.T) {
	svc, db, rec, _ := newService(t)
	author := testsupport.CreateUser(t, db, "alice")
	testsupport.CreatePost(t, db, author, "Other")
	p := testsupport.CreatePost(t, db, author, "Mine")

	err := svc.Update(context.Background(), p, &Input{Title: "Mine", Slug: "other", Content: "c"})
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("err = %v, want ErrSlugTaken", err)
	}

	if err := svc.Update(context.Background(), p, &Input{Title: "Renamed", Content: "c", Status: models.StatusArchived}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	var got models.PostModel
	db.First(&got, "id = ?", p.ID)
	if got.Slug != "mine" || got.Title != "Renamed" || got.Status != models.StatusArchived {
		t.Fatalf("unexpected post %+v", got)
	}

	if err := svc.Update(context.Background(), p, &Input{Title: "Renamed", Slug: "fresh-slug", Content: "c"}); err != nil {
		t.Fatalf("Update slug: %v", err)
	}
	db.First(&got, "id = ?", p.ID)
	if got.Slug != "fresh-slug" {
		t.Fatalf("slug = %q", got.Slug)
	}
	if types := rec.Types(); len(types) != 2 || types[1] != events.PostUpdated {
		t.Fatalf("events = %v", types)
	}
}

func TestIncrementViewsKeepsUpdatedAt(t *testing.T) {
	svc, db, _, _ := newService(t)
	p := testsupport.CreatePost(t, db, testsupport.CreateUser(t, db, "alice"), "Viewed", testsupport.WithViews(4))

	var before models.PostModel
	db.First(&before, "id = ?", p.ID)
	if err := svc.IncrementViews(context.Background(), p.ID); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	var after models.PostModel
	db.First(&after, "id = ?", p.ID)
	if after.Views != 5 {
		t.Fatalf("views = %d, want 5", after.Views)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatal("view counting touched updated_at")
	}
}

func TestDeleteRemovesComments(t *testing.T) {
	svc, db, rec, _ := newService(t)
	author := testsupport.CreateUser(t, db, "alice")
	p := testsupport.CreatePost(t, db, author, "Doomed")
	keep := testsupport.CreatePost(t, db, author, "Kept")
	testsupport.CreateComment(t, db, p, "A", "1")
	testsupport.CreateComment(t, db, keep, "B", "2")

	if err := svc.Delete(context.Background(), p); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var posts, comments int64
	db.Model(&models.PostModel{}).Count(&posts)
	db.Model(&models.CommentModel{}).Count(&comments)
	if posts != 1 || comments != 1 {
		t.Fatalf("posts = %d comments = %d, want 1 and 1", posts, comments)
	}
	if err := svc.Delete(context.Background(), p); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if types := rec.Types(); len(types) != 1 || types[0] != events.PostDeleted {
		t.Fatalf("events = %v", types)
	}
}

func TestCommentCounts(t *testing.T) {
	svc, db, _, _ := newService(t)
	author := testsupport.CreateUser(t, db, "alice")
	a := testsupport.CreatePost(t, db, author, "A")
	b := testsupport.CreatePost(t, db, author, "B")
	testsupport.CreateComment(t, db, a, "x", "1")
	testsupport.CreateComment(t, db, a, "y", "2")

	counts, err := svc.CommentCounts(context.Background(), []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("CommentCounts: %v", err)
	}
	if counts[a.ID] != 2 || counts[b.ID] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}
