package post

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/storage/media"
	"github.com/embracingthegirlchild/site/internal/pkg/events"
	"github.com/embracingthegirlchild/site/internal/pkg/metrics"
	"github.com/embracingthegirlchild/site/internal/pkg/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	HomeSize = 3
	PageSize = 6

	publishTimeout = 2 * time.Second
)

var (
	ErrSlugTaken   = errors.New("post with this slug already exists")
	ErrNotAnImage  = errors.New("upload a valid image")
	ErrNoStorage   = errors.New("media storage is not configured")
	ErrEmptyUpload = errors.New("the submitted file is empty")
)

// Upload is an image file submitted with the post form.
type Upload struct {
	Filename string
	Data     []byte
}

// Input carries the editable fields of a post.
type Input struct {
	Title      string
	Slug       string
	Content    string
	Category   models.PostCategory
	Status     models.PostStatus
	PubLink    string
	Image      *Upload
	ClearImage bool
}

// Service handles post queries and mutations.
type Service struct {
	db      *gorm.DB
	store   media.Storage
	events  events.Publisher
	metrics *metrics.Registry
	log     *zap.Logger
}

func NewService(db *gorm.DB, store media.Storage, pub events.Publisher, reg *metrics.Registry, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, store: store, events: pub, metrics: reg, log: log}
}

// OwnedBy restricts a query to posts authored by userID. Every lookup that
// precedes a mutation goes through it.
func OwnedBy(userID string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", userID)
	}
}

// Newest orders posts newest first.
func Newest(tx *gorm.DB) *gorm.DB {
	return tx.Order("posts.created_at DESC").Order("posts.id DESC")
}

// Latest returns the n most recent posts.
func (s *Service) Latest(ctx context.Context, n int) ([]models.PostModel, error) {
	var posts []models.PostModel
	err := s.db.WithContext(ctx).Scopes(Newest).Limit(n).Find(&posts).Error
	return posts, err
}

// List returns one page of all posts. rawPage is the unparsed ?page= value.
func (s *Service) List(ctx context.Context, rawPage string, size int) (*pagination.Page[models.PostModel], error) {
	tx := s.db.WithContext(ctx).Model(&models.PostModel{}).Scopes(Newest)
	return pagination.Paginate[models.PostModel](tx, rawPage, size)
}

// WithImages returns posts that carry an image, newest first.
func (s *Service) WithImages(ctx context.Context, limit int) ([]models.PostModel, error) {
	var posts []models.PostModel
	tx := s.db.WithContext(ctx).Where("image IS NOT NULL AND image <> ''").Scopes(Newest)
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	return posts, tx.Find(&posts).Error
}

// GetBySlug returns (nil, nil) when no post has slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.PostModel, error) {
	var post models.PostModel
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetOwned looks slug up among userID's posts; another author's post is
// reported as not found.
func (s *Service) GetOwned(ctx context.Context, slug, userID string) (*models.PostModel, error) {
	var post models.PostModel
	err := s.db.WithContext(ctx).Scopes(OwnedBy(userID)).Where("slug = ?", slug).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// IncrementViews bumps the counter without touching updated_at.
func (s *Service) IncrementViews(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.PostModel{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// SlugTaken reports whether another post than exceptID already uses slug.
func (s *Service) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int64
	tx := s.db.WithContext(ctx).Model(&models.PostModel{}).Where("slug = ?", slug)
	if exceptID != "" {
		tx = tx.Where("id <> ?", exceptID)
	}
	if err := tx.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a post for authorID, storing the uploaded image first.
func (s *Service) Create(ctx context.Context, authorID string, in *Input) (*models.PostModel, error) {
	if in.Slug != "" {
		taken, err := s.SlugTaken(ctx, in.Slug, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugTaken
		}
	}

	post := &models.PostModel{
		Title:    strings.TrimSpace(in.Title),
		Slug:     in.Slug,
		Content:  in.Content,
		Category: in.Category,
		Status:   in.Status,
		PubLink:  strings.TrimSpace(in.PubLink),
		AuthorID: authorID,
	}
	if in.Image != nil {
		ref, err := s.StoreImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = ref
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.publish(ctx, events.PostCreated, post)
	return post, nil
}

// Update applies in to post, which the caller loaded through GetOwned.
func (s *Service) Update(ctx context.Context, post *models.PostModel, in *Input) error {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = post.Slug
	}
	if slug != post.Slug {
		taken, err := s.SlugTaken(ctx, slug, post.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlugTaken
		}
	}

	image := post.Image
	switch {
	case in.Image != nil:
		ref, err := s.StoreImage(ctx, in.Image)
		if err != nil {
			return err
		}
		image = ref
	case in.ClearImage:
		image = ""
	}

	title, pubLink := strings.TrimSpace(in.Title), strings.TrimSpace(in.PubLink)
	updates := map[string]interface{}{
		"title":    title,
		"slug":     slug,
		"content":  in.Content,
		"category": in.Category,
		"status":   in.Status,
		"pub_link": pubLink,
		"image":    image,
	}
	if err := s.db.WithContext(ctx).Model(post).Scopes(OwnedBy(post.AuthorID)).Updates(updates).Error; err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	post.Title, post.Slug, post.Content, post.PubLink, post.Image = title, slug, in.Content, pubLink, image
	post.Category, post.Status = in.Category, in.Status

	s.publish(ctx, events.PostUpdated, post)
	return nil
}

// Delete removes post and its comments together.
func (s *Service) Delete(ctx context.Context, post *models.PostModel) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.CommentModel{}).Error; err != nil {
			return err
		}
		res := tx.Scopes(OwnedBy(post.AuthorID)).Where("id = ?", post.ID).Delete(&models.PostModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.publish(ctx, events.PostDeleted, post)
	return nil
}

// StoreImage validates an upload as an image and saves it under
// post_images/.
func (s *Service) StoreImage(ctx context.Context, up *Upload) (string, error) {
	if s.store == nil {
		return "", ErrNoStorage
	}
	if len(up.Data) == 0 {
		return "", ErrEmptyUpload
	}
	sniffed := http.DetectContentType(up.Data)
	if !strings.HasPrefix(sniffed, "image/") {
		return "", ErrNotAnImage
	}
	return s.store.Save(ctx, media.Object{
		Key:         media.ImageKey(up.Filename),
		Data:        up.Data,
		ContentType: sniffed,
	})
}

// CommentCounts returns the number of comments per post ID.
func (s *Service) CommentCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		PostID string
		N      int64
	}
	err := s.db.WithContext(ctx).Model(&models.CommentModel{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.PostID] = r.N
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, kind string, post *models.PostModel) {
	s.metrics.PostEvent(kind)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := s.events.Publish(ctx, events.PostEvent{
		Type:     kind,
		PostID:   post.ID,
		Slug:     post.Slug,
		Title:    post.Title,
		Status:   string(post.Status),
		AuthorID: post.AuthorID,
	})
	if err != nil {
		s.log.Warn("publish post event failed", zap.String("type", kind), zap.String("slug", post.Slug), zap.Error(err))
	}
}
