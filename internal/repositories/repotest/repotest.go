// Package repotest provides in-memory implementations of the repository
// interfaces for handler and router tests. They follow the same
// contracts as the PostgreSQL repositories, cascades included.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
)

// Store holds every entity and hands out the per-entity repositories.
type Store struct {
	mu       sync.RWMutex
	nextID   uint
	users    map[uint]models.User
	groups   map[uint]models.Group
	posts    map[uint]models.Post
	comments map[uint]models.Comment
	follows  map[uint]models.Follow

	// Now stamps created times; tests may replace it.
	Now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[uint]models.User),
		groups:   make(map[uint]models.Group),
		posts:    make(map[uint]models.Post),
		comments: make(map[uint]models.Comment),
		follows:  make(map[uint]models.Follow),
		Now:      time.Now,
	}
}

// Repositories returns the bundle handlers are built from.
func (s *Store) Repositories() repositories.Repositories {
	return repositories.Repositories{
		Users:    (*userRepo)(s),
		Groups:   (*groupRepo)(s),
		Posts:    (*postRepo)(s),
		Comments: (*commentRepo)(s),
		Follows:  (*followRepo)(s),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// Posts returns every post, newest first.
func (s *Store) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPosts(repositories.PostFilter{})
}

// Comments returns every comment in insertion order.
func (s *Store) Comments() []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Follows returns every follow edge.
func (s *Store) Follows() []models.Follow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Follow, 0, len(s.follows))
	for _, f := range s.follows {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// hydrate fills the Author and Group references of p. Caller holds mu.
func (s *Store) hydrate(p models.Post) models.Post {
	p.Author = s.users[p.AuthorID]
	p.Group = nil
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			p.Group = &g
		}
	}
	return p
}

// filterPosts returns hydrated posts matching f, newest first. Caller holds mu.
func (s *Store) filterPosts(f repositories.PostFilter) []models.Post {
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		if f.GroupID != nil && (p.GroupID == nil || *p.GroupID != *f.GroupID) {
			continue
		}
		if f.FollowerID != nil && !s.following(*f.FollowerID, p.AuthorID) {
			continue
		}
		out = append(out, s.hydrate(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) following(userID, authorID uint) bool {
	for _, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return true
		}
	}
	return false
}

// deletePost removes a post and its comments. Caller holds mu.
func (s *Store) deletePost(id uint) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

type userRepo Store

func (r *userRepo) CreateUser(_ context.Context, user *models.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	user.ID = s.id()
	user.CreatedAt = s.Now()
	s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *userRepo) DeleteUser(_ context.Context, id uint) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, id)
	for pid, p := range s.posts {
		if p.AuthorID == id {
			s.deletePost(pid)
		}
	}
	for cid, c := range s.comments {
		if c.AuthorID == id {
			delete(s.comments, cid)
		}
	}
	for fid, f := range s.follows {
		if f.UserID == id || f.AuthorID == id {
			delete(s.follows, fid)
		}
	}
	return nil
}

type groupRepo Store

func (r *groupRepo) CreateGroup(_ context.Context, group *models.Group) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Slug == group.Slug {
			return repositories.ErrDuplicate
		}
	}
	group.ID = s.id()
	s.groups[group.ID] = *group
	return nil
}

func (r *groupRepo) GetGroupByID(_ context.Context, id uint) (*models.Group, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &g, nil
}

func (r *groupRepo) GetGroupBySlug(_ context.Context, slug string) (*models.Group, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Slug == slug {
			return &g, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *groupRepo) GetGroups(_ context.Context) ([]models.Group, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *groupRepo) DeleteGroup(_ context.Context, id uint) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.groups, id)
	for pid, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
			s.posts[pid] = p
		}
	}
	return nil
}

type postRepo Store

func (r *postRepo) CreatePost(_ context.Context, post *models.Post) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = s.id()
	post.Created = s.Now()
	stored := *post
	stored.Author = models.User{}
	stored.Group = nil
	s.posts[post.ID] = stored
	return nil
}

func (r *postRepo) GetPostByID(_ context.Context, id uint) (*models.Post, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p = s.hydrate(p)
	return &p, nil
}

func (r *postRepo) ListPosts(_ context.Context, filter repositories.PostFilter, offset, limit int) ([]models.Post, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.filterPosts(filter)
	if offset >= len(all) {
		return []models.Post{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *postRepo) CountPosts(_ context.Context, filter repositories.PostFilter) (int64, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filterPosts(filter))), nil
}

func (r *postRepo) UpdatePost(_ context.Context, post *models.Post) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.posts[post.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Text = post.Text
	stored.GroupID = post.GroupID
	stored.Image = post.Image
	s.posts[post.ID] = stored
	return nil
}

func (r *postRepo) DeletePost(_ context.Context, id uint) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	s.deletePost(id)
	return nil
}

type commentRepo Store

func (r *commentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = s.id()
	comment.Created = s.Now()
	stored := *comment
	stored.Post = models.Post{}
	stored.Author = models.User{}
	s.comments[comment.ID] = stored
	return nil
}

func (r *commentRepo) GetCommentsByPostID(_ context.Context, postID uint) ([]models.Comment, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			c.Author = s.users[c.AuthorID]
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *commentRepo) CountComments(_ context.Context) (int64, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.comments)), nil
}

type followRepo Store

func (r *followRepo) CreateFollow(_ context.Context, follow *models.Follow) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.following(follow.UserID, follow.AuthorID) {
		return repositories.ErrDuplicate
	}
	follow.ID = s.id()
	stored := *follow
	stored.User = models.User{}
	stored.Author = models.User{}
	s.follows[follow.ID] = stored
	return nil
}

func (r *followRepo) GetFollow(_ context.Context, userID, authorID uint) (*models.Follow, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return &f, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *followRepo) DeleteFollow(_ context.Context, id uint) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.follows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.follows, id)
	return nil
}

func (r *followRepo) IsFollowing(_ context.Context, userID, authorID uint) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.following(userID, authorID), nil
}

func (r *followRepo) CountFollows(_ context.Context) (int64, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.follows)), nil
}
