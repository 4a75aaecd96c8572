// Package mediamigrate moves locally stored post images to a remote media
// backend and points each post at its new location.
package mediamigrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/embracingthegirlchild/site/internal/config"
	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/storage/media"
	"github.com/embracingthegirlchild/site/internal/pkg/metrics"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"

	defaultTimeout = 45 * time.Second
)

var (
	ErrLocked      = errors.New("another media migration is running")
	ErrLocalTarget = errors.New("media migration needs a remote backend: s3, minio or cloudinary")
)

// bucketPreparer is implemented by backends that can create their bucket
// before the first upload.
type bucketPreparer interface {
	EnsureBucket(ctx context.Context) error
}

// Options tune a single run.
type Options struct {
	SourceDir      string
	DryRun         bool
	AllowAmbiguous bool
	// LockPath defaults to a file in the system temp dir.
	LockPath string
	// Timeout bounds each upload.
	Timeout time.Duration
}

// ItemResult is the outcome for one post.
type ItemResult struct {
	PostID  string `json:"postId"`
	Slug    string `json:"slug"`
	Image   string `json:"image"`
	File    string `json:"file,omitempty"`
	NewRef  string `json:"newRef,omitempty"`
	Outcome string `json:"outcome"`
	Note    string `json:"note,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Report tallies a run.
type Report struct {
	Backend string       `json:"backend"`
	DryRun  bool         `json:"dryRun"`
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Skipped int          `json:"skipped"`
	Errors  int          `json:"errors"`
	Items   []ItemResult `json:"items"`
}

func (r *Report) add(item ItemResult) {
	r.Total++
	switch item.Outcome {
	case OutcomeSuccess:
		r.Success++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Errors++
	}
	r.Items = append(r.Items, item)
}

// Migrator re-uploads post images to store.
type Migrator struct {
	db      *gorm.DB
	store   media.Storage
	opts    Options
	log     *zap.Logger
	metrics *metrics.Registry
}

func New(db *gorm.DB, store media.Storage, opts Options, log *zap.Logger, reg *metrics.Registry) *Migrator {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.LockPath == "" {
		opts.LockPath = filepath.Join(os.TempDir(), "etgc-migrate-media.lock")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Migrator{db: db, store: store, opts: opts, log: log, metrics: reg}
}

// Run processes every post with an image. Per-item failures are recorded in
// the report and never stop the batch; the returned error covers setup
// problems and cancellation only.
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	if m.store.Name() == config.BackendLocal {
		return nil, ErrLocalTarget
	}

	lock := flock.New(m.opts.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	if p, ok := m.store.(bucketPreparer); ok && !m.opts.DryRun {
		if err := p.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("prepare %s bucket: %w", m.store.Name(), err)
		}
	}

	var posts []models.PostModel
	if err := m.db.WithContext(ctx).
		Where("image IS NOT NULL AND image <> ''").
		Order("created_at asc").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}

	report := &Report{Backend: m.store.Name(), DryRun: m.opts.DryRun, Items: make([]ItemResult, 0, len(posts))}

	find, findErr := newFinder(m.opts.SourceDir, m.opts.AllowAmbiguous)
	if findErr != nil {
		m.log.Warn("source directory unavailable", zap.String("dir", m.opts.SourceDir), zap.Error(findErr))
	}
	for i := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		item := m.migrateOne(ctx, find, findErr, &posts[i])
		report.add(item)
		m.metrics.MigrationOutcome(item.Outcome)
		m.logItem(item)
	}
	return report, nil
}

func (m *Migrator) migrateOne(ctx context.Context, find *finder, findErr error, post *models.PostModel) (item ItemResult) {
	item = ItemResult{PostID: post.ID, Slug: post.Slug, Image: post.Image}
	defer func() {
		if r := recover(); r != nil {
			item.Outcome = OutcomeError
			item.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if media.IsRemote(post.Image) {
		item.Outcome = OutcomeSkipped
		item.Note = "already remote"
		return item
	}

	fail := func(err error) ItemResult {
		item.Outcome = OutcomeError
		item.Error = err.Error()
		return item
	}

	if findErr != nil {
		return fail(findErr)
	}

	recorded, stripped := OriginalName(post.Image)
	name, others, err := find.Find(recorded, stripped)
	if err != nil {
		return fail(err)
	}
	item.File = name
	if len(others) > 0 {
		item.Note = "ambiguous, also matched " + strings.Join(others, ", ")
		m.log.Warn("ambiguous source file", zap.String("slug", post.Slug),
			zap.String("picked", name), zap.Strings("others", others))
	}

	data, err := os.ReadFile(filepath.Join(m.opts.SourceDir, name))
	if err != nil {
		return fail(fmt.Errorf("read file: %w", err))
	}

	if m.opts.DryRun {
		item.Outcome = OutcomeSuccess
		item.Note = strings.TrimPrefix(item.Note+"; dry-run", "; ")
		return item
	}

	uploadCtx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()
	ref, err := m.store.Save(uploadCtx, media.Object{
		Key:         media.ImageDir + "/" + name,
		Data:        data,
		ContentType: media.DetectContentType(name, data),
		Overwrite:   true,
	})
	if err != nil {
		return fail(fmt.Errorf("upload: %w", err))
	}

	if err := m.db.WithContext(ctx).Model(&models.PostModel{}).
		Where("id = ?", post.ID).
		Update("image", ref).Error; err != nil {
		return fail(fmt.Errorf("update post: %w", err))
	}
	post.Image = ref
	item.NewRef = ref
	item.Outcome = OutcomeSuccess
	return item
}

func (m *Migrator) logItem(item ItemResult) {
	fields := []zap.Field{zap.String("slug", item.Slug), zap.String("image", item.Image)}
	switch item.Outcome {
	case OutcomeSuccess:
		m.log.Info("migrated", append(fields, zap.String("file", item.File), zap.String("url", item.NewRef))...)
	case OutcomeSkipped:
		m.log.Info("skipped", append(fields, zap.String("reason", item.Note))...)
	default:
		m.log.Error("migration failed", append(fields, zap.String("error", item.Error))...)
	}
}
