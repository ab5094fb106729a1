package repositories

import "gorm.io/gorm"

// Repositories bundles every repository the handlers depend on.
type Repositories struct {
	Users    UserRepository
	Groups   GroupRepository
	Posts    PostRepository
	Comments CommentRepository
	Follows  FollowRepository
}

// NewPostgres builds the PostgreSQL-backed repositories over one connection.
func NewPostgres(db *gorm.DB) Repositories {
	return Repositories{
		Users:    NewPostgresUserRepository(db),
		Groups:   NewPostgresGroupRepository(db),
		Posts:    NewPostgresPostRepository(db),
		Comments: NewPostgresCommentRepository(db),
		Follows:  NewPostgresFollowRepository(db),
	}
}
