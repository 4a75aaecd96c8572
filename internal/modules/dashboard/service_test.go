package dashboard

import (
	"context"
	"testing"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/content/post"
	"github.com/embracingthegirlchild/site/internal/testsupport"
)

func TestFiltersQuery(t *testing.T) {
	cases := map[Filters]string{
		{}:                                   "",
		{Status: "draft"}:                    "status=draft&",
		{Status: "draft", Category: "legal"}: "status=draft&category=legal&",
	}
	for f, want := range cases {
		if got := f.Query(); got != want {
			t.Fatalf("%+v.Query() = %q, want %q", f, got, want)
		}
	}
}

func TestListAndStatsAreScopedToOwner(t *testing.T) {
	db := testsupport.OpenDB(t)
	alice := testsupport.CreateUser(t, db, "alice")
	bob := testsupport.CreateUser(t, db, "bob")
	a1 := testsupport.CreatePost(t, db, alice, "A1", testsupport.WithStatus(models.StatusPublished), testsupport.WithViews(7))
	testsupport.CreatePost(t, db, alice, "A2", testsupport.WithStatus(models.StatusDraft), testsupport.WithViews(1))
	b1 := testsupport.CreatePost(t, db, bob, "B1", testsupport.WithViews(50))
	testsupport.CreateComment(t, db, a1, "x", "1")
	testsupport.CreateComment(t, db, b1, "y", "2")

	svc := NewService(db, post.NewService(db, nil, nil, nil, nil))
	ctx := context.Background()

	page, err := svc.List(ctx, alice.ID, Filters{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(page.Items))
	}
	for _, p := range page.Items {
		if p.AuthorID != alice.ID {
			t.Fatalf("foreign post %q listed", p.Title)
		}
		if p.Title == "A1" && p.CommentCount != 1 {
			t.Fatalf("A1 comment count = %d", p.CommentCount)
		}
	}

	stats, err := svc.Stats(ctx, alice.ID, Filters{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats != (Stats{TotalPosts: 2, TotalViews: 8, TotalComments: 1}) {
		t.Fatalf("stats = %+v", stats)
	}

	stats, err = svc.Stats(ctx, alice.ID, Filters{Status: "draft"})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats != (Stats{TotalPosts: 1, TotalViews: 1, TotalComments: 0}) {
		t.Fatalf("draft stats = %+v", stats)
	}
}

func TestStatsForUserWithoutPosts(t *testing.T) {
	db := testsupport.OpenDB(t)
	u := testsupport.CreateUser(t, db, "empty")
	svc := NewService(db, post.NewService(db, nil, nil, nil, nil))

	stats, err := svc.Stats(context.Background(), u.ID, Filters{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats != (Stats{}) {
		t.Fatalf("stats = %+v", stats)
	}
}
