package mediamigrate

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
	"github.com/embracingthegirlchild/site/internal/testsupport"
	"github.com/gofrs/flock"
	"gorm.io/gorm"
)

type fakeStore struct {
	saved []media.Object
	fail  map[string]error
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) Save(_ context.Context, obj media.Object) (string, error) {
	if err := f.fail[obj.Key]; err != nil {
		return "", err
	}
	f.saved = append(f.saved, obj)
	return "https://cdn.example.org/" + obj.Key, nil
}

type fixture struct {
	db     *gorm.DB
	author *models.UserModel
	dir    string
	store  *fakeStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.OpenDB(t)
	return &fixture{
		db:     db,
		author: testsupport.CreateUser(t, db, "amina"),
		dir:    t.TempDir(),
		store:  &fakeStore{fail: map[string]error{}},
	}
}

func (f *fixture) file(t *testing.T, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, name), []byte("\x89PNG\r\n\x1a\n"+name), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func (f *fixture) post(t *testing.T, title, image string, offset int) *models.PostModel {
	t.Helper()
	return testsupport.CreatePost(t, f.db, f.author, title,
		testsupport.WithImage(image),
		testsupport.WithCreatedAt(time.Date(2024, 1, 1, 0, 0, offset, 0, time.UTC)))
}

func (f *fixture) migrator(t *testing.T, opts Options) *Migrator {
	opts.SourceDir = f.dir
	opts.LockPath = filepath.Join(t.TempDir(), "migrate.lock")
	return New(f.db, f.store, opts, nil, nil)
}

func imageOf(t *testing.T, db *gorm.DB, id string) string {
	t.Helper()
	var post models.PostModel
	if err := db.First(&post, "id = ?", id).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	return post.Image
}

func TestRunSkipsRemoteReferences(t *testing.T) {
	f := newFixture(t)
	remote := "https://res.cloudinary.com/demo/image/upload/girl.jpg"
	post := f.post(t, "Remote", remote, 0)

	report, err := f.migrator(t, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 1 || report.Skipped != 1 || report.Success != 0 || report.Errors != 0 {
		t.Fatalf("report = %+v", report)
	}
	if got := imageOf(t, f.db, post.ID); got != remote {
		t.Fatalf("image changed to %q", got)
	}
	if len(f.store.saved) != 0 {
		t.Fatalf("uploaded %d objects", len(f.store.saved))
	}
}

func TestRunUploadsAndUpdates(t *testing.T) {
	f := newFixture(t)
	f.file(t, "girl.png")
	post := f.post(t, "Local", "post_images/girl_Ab3dE9x.png", 0)

	report, err := f.migrator(t, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Success != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(f.store.saved) != 1 {
		t.Fatalf("saved = %d", len(f.store.saved))
	}
	obj := f.store.saved[0]
	if obj.Key != "post_images/girl.png" || !obj.Overwrite || obj.ContentType != "image/png" {
		t.Fatalf("object = %+v", obj)
	}
	want := "https://cdn.example.org/post_images/girl.png"
	if got := imageOf(t, f.db, post.ID); got != want {
		t.Fatalf("image = %q, want %q", got, want)
	}

	// second run sees a remote reference and does nothing
	again, err := f.migrator(t, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Skipped != 1 || len(f.store.saved) != 1 {
		t.Fatalf("second report = %+v", again)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	f.file(t, "ok.png")
	f.file(t, "broken.png")
	missing := f.post(t, "Missing", "post_images/gone.png", 0)
	broken := f.post(t, "Broken", "post_images/broken.png", 1)
	ok := f.post(t, "Fine", "post_images/ok.png", 2)
	f.store.fail["post_images/broken.png"] = errors.New("boom")

	report, err := f.migrator(t, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 3 || report.Errors != 2 || report.Success != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !strings.Contains(report.Items[0].Error, "not found") {
		t.Fatalf("first item error = %q", report.Items[0].Error)
	}
	if imageOf(t, f.db, missing.ID) != "post_images/gone.png" || imageOf(t, f.db, broken.ID) != "post_images/broken.png" {
		t.Fatal("failed items must keep their reference")
	}
	if !media.IsRemote(imageOf(t, f.db, ok.ID)) {
		t.Fatal("successful item was not updated")
	}
}

func TestRunFlagsAmbiguousMatches(t *testing.T) {
	f := newFixture(t)
	f.file(t, "girl_aaaaaaa.png")
	f.file(t, "girl_bbbbbbb.png")
	post := f.post(t, "Ambiguous", "post_images/girl_ccccccc.png", 0)

	report, err := f.migrator(t, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Errors != 1 || !strings.Contains(report.Items[0].Error, "ambiguous") {
		t.Fatalf("report = %+v", report)
	}
	if imageOf(t, f.db, post.ID) != "post_images/girl_ccccccc.png" {
		t.Fatal("ambiguous item was updated")
	}

	report, err = f.migrator(t, Options{AllowAmbiguous: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Success != 1 || report.Items[0].File != "girl_aaaaaaa.png" {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunDryRunLeavesRecords(t *testing.T) {
	f := newFixture(t)
	f.file(t, "girl.png")
	post := f.post(t, "Dry", "post_images/girl.png", 0)

	report, err := f.migrator(t, Options{DryRun: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Success != 1 || report.Items[0].Note != "dry-run" {
		t.Fatalf("report = %+v", report)
	}
	if len(f.store.saved) != 0 || imageOf(t, f.db, post.ID) != "post_images/girl.png" {
		t.Fatal("dry run changed state")
	}
}

func TestRunRefusesConcurrentRun(t *testing.T) {
	f := newFixture(t)
	lockPath := filepath.Join(t.TempDir(), "migrate.lock")
	held := flock.New(lockPath)
	if ok, err := held.TryLock(); !ok || err != nil {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer held.Unlock()

	m := New(f.db, f.store, Options{SourceDir: f.dir, LockPath: lockPath}, nil, nil)
	if _, err := m.Run(context.Background()); !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
}

func TestOriginalName(t *testing.T) {
	cases := []struct{ ref, recorded, stripped string }{
		{"post_images/girl_Ab3dE9x.jpg", "girl_Ab3dE9x.jpg", "girl.jpg"},
		{"post_images/girl.jpg", "girl.jpg", "girl.jpg"},
		{"school_trip.png", "school_trip.png", "school.png"},
		{`post_images\_x.png`, "_x.png", "_x.png"},
	}
	for _, tc := range cases {
		recorded, stripped := OriginalName(tc.ref)
		if recorded != tc.recorded || stripped != tc.stripped {
			t.Fatalf("OriginalName(%q) = %q, %q", tc.ref, recorded, stripped)
		}
	}
}

func TestFinderPrefersExactName(t *testing.T) {
	f := newFixture(t)
	f.file(t, "school_trip.png")
	f.file(t, "school.png")
	find, err := newFinder(f.dir, false)
	if err != nil {
		t.Fatalf("newFinder: %v", err)
	}
	name, others, err := find.Find(OriginalName("post_images/school_trip.png"))
	if err != nil || name != "school_trip.png" || len(others) != 0 {
		t.Fatalf("Find = %q, %v, %v", name, others, err)
	}
}

func TestRunRejectsLocalTarget(t *testing.T) {
	f := newFixture(t)
	f.file(t, "girl.png")
	post := f.post(t, "Local", "post_images/girl.png", 0)

	m := New(f.db, media.NewLocal(t.TempDir()), Options{
		SourceDir: f.dir,
		LockPath:  filepath.Join(t.TempDir(), "migrate.lock"),
	}, nil, nil)
	for run := 1; run <= 2; run++ {
		report, err := m.Run(context.Background())
		if !errors.Is(err, ErrLocalTarget) {
			t.Fatalf("run %d: err = %v, want ErrLocalTarget", run, err)
		}
		if report != nil {
			t.Fatalf("run %d: report = %+v, want nil", run, report)
		}
	}
	if got := imageOf(t, f.db, post.ID); got != "post_images/girl.png" {
		t.Fatalf("image changed to %q", got)
	}
}

type bucketStore struct {
	fakeStore
	ensured int
	err     error
}

func (b *bucketStore) EnsureBucket(context.Context) error {
	b.ensured++
	return b.err
}

func TestRunPreparesBucketBeforeUploads(t *testing.T) {
	f := newFixture(t)
	f.file(t, "girl.png")
	f.post(t, "Girl", "post_images/girl.png", 0)
	store := &bucketStore{fakeStore: fakeStore{fail: map[string]error{}}}

	m := New(f.db, store, Options{SourceDir: f.dir, LockPath: filepath.Join(t.TempDir(), "migrate.lock")}, nil, nil)
	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.ensured != 1 || report.Success != 1 {
		t.Fatalf("ensured = %d, report = %+v", store.ensured, report)
	}
}

func TestRunStopsWhenBucketUnavailable(t *testing.T) {
	f := newFixture(t)
	f.file(t, "girl.png")
	post := f.post(t, "Girl", "post_images/girl.png", 0)
	store := &bucketStore{fakeStore: fakeStore{fail: map[string]error{}}, err: errors.New("access denied")}

	m := New(f.db, store, Options{SourceDir: f.dir, LockPath: filepath.Join(t.TempDir(), "migrate.lock")}, nil, nil)
	report, err := m.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("err = %v, want bucket error", err)
	}
	if report != nil || len(store.saved) != 0 {
		t.Fatalf("report = %+v, saved = %d", report, len(store.saved))
	}
	if got := imageOf(t, f.db, post.ID); got != "post_images/girl.png" {
		t.Fatalf("image changed to %q", got)
	}
}

func TestDryRunSkipsBucketPreparation(t *testing.T) {
	f := newFixture(t)
	f.file(t, "girl.png")
	f.post(t, "Girl", "post_images/girl.png", 0)
	store := &bucketStore{fakeStore: fakeStore{fail: map[string]error{}}, err: errors.New("unreachable")}

	m := New(f.db, store, Options{SourceDir: f.dir, DryRun: true, LockPath: filepath.Join(t.TempDir(), "migrate.lock")}, nil, nil)
	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.ensured != 0 {
		t.Fatalf("ensured = %d during dry run", store.ensured)
	}
}
