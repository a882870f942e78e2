package models

import "time"

// Comment belongs to a post and is removed together with it.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index"`
	AuthorID  uint      `json:"author_id" gorm:"index"`
	Author    User      `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentForm is the form payload for adding a comment to a post.
type CommentForm struct {
	Text string `form:"text" validate:"required,min=1,max=500"`
}
