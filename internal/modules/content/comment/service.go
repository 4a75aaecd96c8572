package comment

import (
	"context"
	"strings"

	"github.com/embracingthegirlchild/site/internal/models"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Create adds a comment to postID.
func (s *Service) Create(ctx context.Context, postID string, dto *CreateCommentDTO) (*models.CommentModel, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, errPostRequired
	}
	c := models.CommentModel{
		PostID: postID,
		Name:   strings.TrimSpace(dto.Name),
		Body:   strings.TrimSpace(dto.Body),
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForPost returns a post's comments, oldest first.
func (s *Service) ListForPost(ctx context.Context, postID string) ([]models.CommentModel, error) {
	var comments []models.CommentModel
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}
