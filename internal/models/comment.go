package models

// CommentModel is a visitor comment on a post. Comments are never edited and
// disappear with their post.
type CommentModel struct {
	Base
	PostID string `json:"post_id" gorm:"type:char(36);index;not null"`
	Name   string `json:"name"    gorm:"size:80;not null"`
	Body   string `json:"body"    gorm:"type:text;not null"`
}

func (CommentModel) TableName() string { return "comments" }
