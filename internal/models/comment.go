package models

import "time"

// Comment is a reply left by an author under a post.
type Comment struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	Text    string    `json:"text" gorm:"type:text;not null"`
	Created time.Time `json:"created" gorm:"column:created;autoCreateTime"`

	PostID uint `json:"post_id" gorm:"not null;index"`
	Post   Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`

	AuthorID uint `json:"author_id" gorm:"not null;index"`
	Author   User `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (c *Comment) String() string {
	return truncate(c.Text, 10)
}
