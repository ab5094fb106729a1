package models

import "fmt"

// Follow is a directed edge: User follows Author.
type Follow struct {
	ID uint `json:"id" gorm:"primaryKey"`

	UserID uint `json:"user_id" gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	User   User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	AuthorID uint `json:"author_id" gorm:"not null;index;uniqueIndex:idx_follow_user_author"`
	Author   User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (f *Follow) String() string {
	return fmt.Sprintf("follow of %s to %s", f.User.Username, f.Author.Username)
}
