// Package posttest provides in-memory post repositories sharing one store, for tests.
package posttest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"yatube-backend/internal/domains/post/model"
	"yatube-backend/internal/domains/post/repository"
	"yatube-backend/internal/domains/user/usertest"
)

// Store mimics the Postgres schema: joins, cascades and the follow constraints.
type Store struct {
	Users *usertest.Repository

	mu       sync.RWMutex
	now      func() time.Time
	groups   map[int64]*model.Group
	posts    map[int64]*model.Post
	comments []*model.Comment
	follows  []*model.Follow
	images   map[int64]*model.PostImage
	nextID   int64
}

func NewStore() *Store {
	return &Store{
		Users:  usertest.NewRepository(),
		now:    time.Now,
		groups: make(map[int64]*model.Group),
		posts:  make(map[int64]*model.Post),
		images: make(map[int64]*model.PostImage),
	}
}

// SetClock replaces the time source used for pub dates and image timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Posts() repository.PostRepository       { return postRepo{s} }
func (s *Store) Groups() repository.GroupRepository     { return groupRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return commentRepo{s} }
func (s *Store) Follows() repository.FollowRepository   { return followRepo{s} }
func (s *Store) Images() repository.ImageRepository     { return imageRepo{s} }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddGroup stores a group and returns it.
func (s *Store) AddGroup(title, slug string) *model.Group {
	g := &model.Group{Title: title, Slug: slug}
	if err := s.Groups().Create(context.Background(), g); err != nil {
		panic(err)
	}
	return g
}

// AddPost stores a post by authorID, optionally in a group.
func (s *Store) AddPost(authorID uuid.UUID, text string, group *model.Group) *model.Post {
	p := &model.Post{AuthorID: authorID, Text: text}
	if group != nil {
		p.GroupID = &group.ID
	}
	if err := s.Posts().Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

// PostCount reports how many posts are stored.
func (s *Store) PostCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// CommentCount reports how many comments are stored.
func (s *Store) CommentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}

// FollowCount reports how many follow edges are stored.
func (s *Store) FollowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.follows)
}

// hydrate fills the joined author, group and thumbnail like selectPosts does.
func (s *Store) hydrate(p *model.Post) *model.Post {
	cp := *p
	if p.GroupID != nil {
		gid := *p.GroupID
		cp.GroupID = &gid
		if g, ok := s.groups[gid]; ok {
			gc := *g
			cp.Group = &gc
		}
	}
	cp.Author = s.author(p.AuthorID)
	if img, ok := s.images[p.ID]; ok && img.Status == model.ImageStatusReady && img.OriginalKey == p.Image && img.ThumbnailKey != nil {
		cp.Thumbnail = *img.ThumbnailKey
	}
	return &cp
}

// userExists stands in for the users foreign keys.
func (s *Store) userExists(id uuid.UUID) bool {
	_, err := s.Users.FindByID(context.Background(), id)
	return err == nil
}

func (s *Store) author(id uuid.UUID) model.PostAuthor {
	a := model.PostAuthor{ID: id}
	if u, err := s.Users.FindByID(context.Background(), id); err == nil {
		a.Username = u.Username
		a.FullName = u.FullName
	}
	return a
}

type postRepo struct{ s *Store }

func (r postRepo) Create(_ context.Context, post *model.Post) error {
	if !r.s.userExists(post.AuthorID) {
		return model.ErrViewerNotFound
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post.ID = r.s.id()
	post.PubDate = r.s.now()
	stored := *post
	stored.Author, stored.Group, stored.Thumbnail = model.PostAuthor{}, nil, ""
	r.s.posts[post.ID] = &stored
	return nil
}

func (r postRepo) GetByID(_ context.Context, id int64) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	return r.s.hydrate(p), nil
}

func (r postRepo) Update(_ context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[post.ID]
	if !ok {
		return model.ErrPostNotFound
	}
	p.Text = post.Text
	p.Image = post.Image
	p.GroupID = nil
	if post.GroupID != nil {
		gid := *post.GroupID
		p.GroupID = &gid
	}
	return nil
}

func (r postRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return model.ErrPostNotFound
	}
	delete(r.s.posts, id)
	delete(r.s.images, id)
	kept := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.PostID != id {
			kept = append(kept, c)
		}
	}
	r.s.comments = kept
	return nil
}

func (r postRepo) List(_ context.Context, filter repository.PostFilter, limit, offset int) ([]*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.match(filter)
	if offset >= len(matched) {
		return []*model.Post{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*model.Post, 0, end-offset)
	for _, p := range matched[offset:end] {
		out = append(out, r.s.hydrate(p))
	}
	return out, nil
}

func (r postRepo) Count(_ context.Context, filter repository.PostFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.match(filter)), nil
}

// match returns the filtered posts ordered by id descending.
func (r postRepo) match(filter repository.PostFilter) []*model.Post {
	authors := make(map[uuid.UUID]bool, len(filter.AuthorIDs))
	for _, id := range filter.AuthorIDs {
		authors[id] = true
	}

	var out []*model.Post
	for _, p := range r.s.posts {
		if filter.GroupID != nil && (p.GroupID == nil || *p.GroupID != *filter.GroupID) {
			continue
		}
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.ByAuthors && !authors[p.AuthorID] {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

type groupRepo struct{ s *Store }

func (r groupRepo) Create(_ context.Context, group *model.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, g := range r.s.groups {
		if g.Slug == group.Slug {
			return model.ErrGroupSlugTaken
		}
	}
	group.ID = r.s.id()
	stored := *group
	r.s.groups[group.ID] = &stored
	return nil
}

func (r groupRepo) GetByID(_ context.Context, id int64) (*model.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if g, ok := r.s.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, model.ErrGroupNotFound
}

func (r groupRepo) GetBySlug(_ context.Context, slug string) (*model.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, g := range r.s.groups {
		if g.Slug == slug {
			cp := *g
			return &cp, nil
		}
	}
	return nil, model.ErrGroupNotFound
}

func (r groupRepo) List(_ context.Context) ([]*model.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.Group, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete clears posts.group_id like ON DELETE SET NULL.
func (r groupRepo) Delete(_ context.Context, slug string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, g := range r.s.groups {
		if g.Slug != slug {
			continue
		}
		delete(r.s.groups, id)
		for _, p := range r.s.posts {
			if p.GroupID != nil && *p.GroupID == id {
				p.GroupID = nil
			}
		}
		return nil
	}
	return model.ErrGroupNotFound
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *model.Comment) error {
	if !r.s.userExists(comment.AuthorID) {
		return model.ErrViewerNotFound
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[comment.PostID]; !ok {
		return model.ErrPostNotFound
	}
	comment.ID = r.s.id()
	comment.Created = r.s.now()
	stored := *comment
	r.s.comments = append(r.s.comments, &stored)
	return nil
}

func (r commentRepo) ListByPost(_ context.Context, postID int64) ([]*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			cp := *c
			cp.Author = r.s.author(c.AuthorID)
			out = append(out, &cp)
		}
	}
	return out, nil
}

type followRepo struct{ s *Store }

func (r followRepo) Create(_ context.Context, follow *model.Follow) error {
	if !r.s.userExists(follow.UserID) {
		return model.ErrViewerNotFound
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if follow.UserID == follow.AuthorID {
		return model.ErrSelfFollow
	}
	for _, f := range r.s.follows {
		if f.UserID == follow.UserID && f.AuthorID == follow.AuthorID {
			return model.ErrAlreadyFollowing
		}
	}
	follow.ID = r.s.id()
	stored := *follow
	r.s.follows = append(r.s.follows, &stored)
	return nil
}

func (r followRepo) Exists(_ context.Context, userID, authorID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, f := range r.s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r followRepo) Delete(_ context.Context, userID, authorID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	kept := r.s.follows[:0]
	for _, f := range r.s.follows {
		if f.UserID == userID && f.AuthorID == authorID {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	r.s.follows = kept
	return removed, nil
}

func (r followRepo) ListAuthorIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []uuid.UUID
	for _, f := range r.s.follows {
		if f.UserID == userID {
			ids = append(ids, f.AuthorID)
		}
	}
	return ids, nil
}

type imageRepo struct{ s *Store }

func (r imageRepo) Upsert(_ context.Context, image *model.PostImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if image.Status == "" {
		image.Status = model.ImageStatusProcessing
	}
	image.ThumbnailKey = nil
	image.UpdatedAt = r.s.now()
	stored := *image
	r.s.images[image.PostID] = &stored
	return nil
}

func (r imageRepo) GetByPost(_ context.Context, postID int64) (*model.PostImage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if img, ok := r.s.images[postID]; ok {
		cp := *img
		return &cp, nil
	}
	return nil, model.ErrImageNotFound
}

func (r imageRepo) MarkReady(_ context.Context, postID int64, originalKey, thumbnailKey string) error {
	return r.set(postID, originalKey, model.ImageStatusReady, &thumbnailKey)
}

func (r imageRepo) MarkFailed(_ context.Context, postID int64, originalKey string) error {
	return r.set(postID, originalKey, model.ImageStatusFailed, nil)
}

func (r imageRepo) set(postID int64, originalKey string, status model.ImageStatus, thumb *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	img, ok := r.s.images[postID]
	if !ok || img.OriginalKey != originalKey {
		return model.ErrImageNotFound
	}
	img.Status = status
	img.ThumbnailKey = thumb
	img.UpdatedAt = r.s.now()
	return nil
}

func (r imageRepo) ListStale(_ context.Context, olderThan time.Time, limit int) ([]*model.PostImage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.PostImage
	for _, img := range r.s.images {
		if img.Status == model.ImageStatusProcessing && img.UpdatedAt.Before(olderThan) {
			cp := *img
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r imageRepo) Touch(_ context.Context, postIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range postIDs {
		if img, ok := r.s.images[id]; ok {
			img.UpdatedAt = r.s.now()
		}
	}
	return nil
}
