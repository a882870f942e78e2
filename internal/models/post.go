package models

import "time"

// Post is a published entry. GroupID is nullable: deleting a group detaches
// its posts instead of deleting them.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text"`
	AuthorID  uint      `json:"author_id" gorm:"index"`
	Author    User      `json:"author"`
	GroupID   *uint     `json:"group_id,omitempty" gorm:"index"`
	Group     *Group    `json:"group,omitempty"`
	Image     string    `json:"image,omitempty"` // stored filename under the media root
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	Comments  []Comment `json:"comments,omitempty"`
}

// PostForm is the form payload for creating and editing a post. The image
// arrives as a separate multipart file part.
type PostForm struct {
	Text    string `form:"text" validate:"required,min=1"`
	GroupID string `form:"group_id"` // optional; empty means no group
}
