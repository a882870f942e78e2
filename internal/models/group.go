package models

// Group is a topical community that posts can be published into.
type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"uniqueIndex"`
	Slug        string `json:"slug" gorm:"uniqueIndex"`
	Description string `json:"description"`
}

// GroupForm is the form payload for creating a group.
type GroupForm struct {
	Title       string `form:"title" validate:"required,min=1,max=200"`
	Slug        string `form:"slug" validate:"required,min=1,max=100,excludesall= /"`
	Description string `form:"description"`
}
