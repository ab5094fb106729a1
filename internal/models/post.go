package models

import "time"

// Post is a text entry written by an author, optionally tagged to a group
// and carrying an image.
type Post struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	Text    string    `json:"text" gorm:"type:text;not null"`
	Created time.Time `json:"created" gorm:"column:created;autoCreateTime;index"`

	AuthorID uint `json:"author_id" gorm:"not null;index"`
	Author   User `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`

	GroupID *uint  `json:"group_id,omitempty" gorm:"index"`
	Group   *Group `json:"group,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`

	// Image is the storage key of the attached picture, empty when there is none.
	Image string `json:"image,omitempty" gorm:"size:255"`

	// The constraint lives here: gorm builds the comments FK from this side
	// and ignores the one on Comment.Post.
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (p *Post) String() string {
	return truncate(p.Text, 15)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
