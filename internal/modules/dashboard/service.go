package dashboard

import (
	"context"
	"net/url"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/content/post"
	"github.com/embracingthegirlchild/site/internal/pkg/pagination"
	"gorm.io/gorm"
)

const PageSize = 10

// Filters narrows the dashboard listing; empty fields match everything.
type Filters struct {
	Status   string
	Category string
}

// Query renders the filters as a query-string prefix for page links, e.g.
// "status=draft&".
func (f Filters) Query() string {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if len(v) == 0 {
		return ""
	}
	return v.Encode() + "&"
}

// Stats are computed over the filtered set, not the current page.
type Stats struct {
	TotalPosts    int64
	TotalViews    int64
	TotalComments int64
}

type Service struct {
	db    *gorm.DB
	posts *post.Service
}

func NewService(db *gorm.DB, posts *post.Service) *Service {
	return &Service{db: db, posts: posts}
}

func (s *Service) filtered(ctx context.Context, userID string, f Filters) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.PostModel{}).Scopes(post.OwnedBy(userID))
	if f.Status != "" {
		tx = tx.Where("posts.status = ?", f.Status)
	}
	if f.Category != "" {
		tx = tx.Where("posts.category = ?", f.Category)
	}
	return tx
}

// List returns one page of userID's posts with comment counts filled in.
func (s *Service) List(ctx context.Context, userID string, f Filters, rawPage string) (*pagination.Page[models.PostModel], error) {
	page, err := pagination.Paginate[models.PostModel](s.filtered(ctx, userID, f).Scopes(post.Newest), rawPage, PageSize)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(page.Items))
	for i := range page.Items {
		ids[i] = page.Items[i].ID
	}
	counts, err := s.posts.CommentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i].CommentCount = counts[page.Items[i].ID]
	}
	return page, nil
}

// Stats totals posts, views and comments for the filtered set.
func (s *Service) Stats(ctx context.Context, userID string, f Filters) (Stats, error) {
	var stats Stats
	err := s.filtered(ctx, userID, f).
		Select("COUNT(*) AS total_posts, COALESCE(SUM(posts.views), 0) AS total_views").
		Scan(&stats).Error
	if err != nil {
		return stats, err
	}
	ids := s.filtered(ctx, userID, f).Select("posts.id")
	err = s.db.WithContext(ctx).Model(&models.CommentModel{}).
		Where("post_id IN (?)", ids).
		Count(&stats.TotalComments).Error
	return stats, err
}
