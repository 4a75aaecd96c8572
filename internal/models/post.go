package models

import (
	"github.com/embracingthegirlchild/site/internal/pkg/slug"
	"gorm.io/gorm"
)

type PostCategory string

const (
	CategoryEducation PostCategory = "education"
	CategoryLegal     PostCategory = "legal"
	CategorySuccess   PostCategory = "success"
	CategoryAwareness PostCategory = "awareness"
	CategoryActivism  PostCategory = "activism"
	CategoryAdvocacy  PostCategory = "advocacy"
)

// Categories lists the categories in display order.
var Categories = []PostCategory{
	CategoryEducation, CategoryLegal, CategorySuccess,
	CategoryAwareness, CategoryActivism, CategoryAdvocacy,
}

var categoryLabels = map[PostCategory]string{
	CategoryEducation: "Education",
	CategoryLegal:     "Legal Rights",
	CategorySuccess:   "Success Stories",
	CategoryAwareness: "Awareness",
	CategoryActivism:  "Activism",
	CategoryAdvocacy:  "Advocacy",
}

func (c PostCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c PostCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

var Statuses = []PostStatus{StatusDraft, StatusPublished, StatusArchived}

func (s PostStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPublished:
		return "Published"
	case StatusArchived:
		return "Archived"
	}
	return string(s)
}

func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// PostModel is a blog post. Image holds either a path relative to the local
// media root (post_images/x.jpg) or an absolute URL on remote storage.
type PostModel struct {
	Base
	Title    string       `json:"title"    gorm:"size:200;not null"`
	Slug     string       `json:"slug"     gorm:"size:255;uniqueIndex;not null"`
	Content  string       `json:"content"  gorm:"type:text;not null"`
	Image    string       `json:"image"    gorm:"size:500"`
	Category PostCategory `json:"category" gorm:"size:20;index"`
	Status   PostStatus   `json:"status"   gorm:"size:10;default:draft;index;not null"`
	Views    uint         `json:"views"    gorm:"default:0;not null"`
	PubLink  string       `json:"pub_link" gorm:"size:500"`
	AuthorID string       `json:"author_id" gorm:"type:char(36);index;not null"`

	Author   *UserModel     `json:"author,omitempty"   gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Comments []CommentModel `json:"comments,omitempty" gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// CommentCount is filled in by list queries.
	CommentCount int64 `json:"comment_count" gorm:"-"`
}

func (PostModel) TableName() string { return "posts" }

// BeforeCreate assigns the id and, when none was supplied, a unique slug
// derived from the title. Updates never regenerate the slug.
func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if err := p.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Slug != "" {
		return nil
	}
	lookup := tx.Session(&gorm.Session{NewDB: true})
	assigned, err := slug.Unique(slug.Make(p.Title), func(candidate string) (bool, error) {
		var n int64
		err := lookup.Model(&PostModel{}).Where("slug = ?", candidate).Count(&n).Error
		return n > 0, err
	})
	if err != nil {
		return err
	}
	p.Slug = assigned
	return nil
}
