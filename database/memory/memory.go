// Package memory is an in-process database.Store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"jogakzip/database"
	"jogakzip/models"

	"gorm.io/datatypes"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	groups   map[uint]*models.Group
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	lastID   uint
	now      func() time.Time
}

var _ database.Store = (*MemoryStorage)(nil)

func New() *MemoryStorage {
	return &MemoryStorage{
		groups:   make(map[uint]*models.Group),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		now:      time.Now,
	}
}

func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) nextID() uint {
	s.lastID++
	return s.lastID
}

func (s *MemoryStorage) stamp(createdAt, updatedAt *time.Time) {
	now := s.now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}

func (s *MemoryStorage) CreateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group.ID = s.nextID()
	s.stamp(&group.CreatedAt, &group.UpdatedAt)
	stored := *group
	stored.Posts = nil
	s.groups[group.ID] = &stored
	return nil
}

func (s *MemoryStorage) FindGroup(ctx context.Context, id uint) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *group
	return &cp, nil
}

func (s *MemoryStorage) ListGroups(ctx context.Context, opts database.ListOptions) ([]models.Group, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []models.Group
	for _, group := range s.groups {
		if opts.PublicOnly && !group.IsPublic {
			continue
		}
		if !containsFold(group.Name, opts.Keyword) {
			continue
		}
		groups = append(groups, *group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		switch opts.SortBy {
		case database.SortMostPosted:
			if a.PostCount != b.PostCount {
				return a.PostCount > b.PostCount
			}
		case database.SortMostLiked:
			if a.LikesCount != b.LikesCount {
				return a.LikesCount > b.LikesCount
			}
		case database.SortMostBadge:
			if a.BadgeCount != b.BadgeCount {
				return a.BadgeCount > b.BadgeCount
			}
		}
		return newerFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})

	return paginate(groups, opts), int64(len(groups)), nil
}

func (s *MemoryStorage) UpdateGroup(ctx context.Context, id uint, changes []database.Assignment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[id]
	if !ok {
		return 0, nil
	}
	next := *group
	for _, change := range changes {
		if err := applyGroup(&next, change); err != nil {
			return 0, err
		}
	}
	*group = next
	return 1, nil
}

func (s *MemoryStorage) DeleteGroup(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return database.ErrNotFound
	}
	for _, post := range s.posts {
		if post.GroupID == id {
			return database.ErrHasDependents
		}
	}
	delete(s.groups, id)
	return nil
}

func (s *MemoryStorage) IncrementGroupLikes(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[id]
	if !ok {
		return database.ErrNotFound
	}
	group.LikesCount++
	return nil
}

func (s *MemoryStorage) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[post.GroupID]
	if !ok {
		return database.ErrParentNotFound
	}
	group.PostCount++

	post.ID = s.nextID()
	s.stamp(&post.CreatedAt, &post.UpdatedAt)
	stored := *post
	stored.Group = nil
	stored.Comments = nil
	stored.Tags = append(datatypes.JSONSlice[string](nil), post.Tags...)
	s.posts[post.ID] = &stored
	return nil
}

func (s *MemoryStorage) FindPost(ctx context.Context, id uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return copyPost(post), nil
}

func (s *MemoryStorage) ListPosts(ctx context.Context, groupID uint, opts database.ListOptions) ([]models.Post, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var posts []models.Post
	for _, post := range s.posts {
		if post.GroupID != groupID {
			continue
		}
		if opts.PublicOnly && !post.IsPublic {
			continue
		}
		if !containsFold(post.Title, opts.Keyword) {
			continue
		}
		posts = append(posts, *copyPost(post))
	}

	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		switch opts.SortBy {
		case database.SortMostCommented:
			if a.CommentCount != b.CommentCount {
				return a.CommentCount > b.CommentCount
			}
		case database.SortMostLiked:
			if a.LikesCount != b.LikesCount {
				return a.LikesCount > b.LikesCount
			}
		}
		return newerFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})

	return paginate(posts, opts), int64(len(posts)), nil
}

func (s *MemoryStorage) UpdatePost(ctx context.Context, id uint, changes []database.Assignment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return 0, nil
	}
	next := *copyPost(post)
	for _, change := range changes {
		if err := applyPost(&next, change); err != nil {
			return 0, err
		}
	}
	*post = next
	return 1, nil
}

func (s *MemoryStorage) DeletePost(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return database.ErrNotFound
	}
	for commentID, comment := range s.comments {
		if comment.PostID == id {
			delete(s.comments, commentID)
		}
	}
	delete(s.posts, id)
	if group, ok := s.groups[post.GroupID]; ok && group.PostCount > 0 {
		group.PostCount--
	}
	return nil
}

func (s *MemoryStorage) IncrementPostLikes(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return database.ErrNotFound
	}
	post.LikesCount++
	return nil
}

func (s *MemoryStorage) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[comment.PostID]
	if !ok {
		return database.ErrParentNotFound
	}
	post.CommentCount++

	comment.ID = s.nextID()
	s.stamp(&comment.CreatedAt, &comment.UpdatedAt)
	stored := *comment
	stored.Post = nil
	s.comments[comment.ID] = &stored
	return nil
}

func (s *MemoryStorage) FindComment(ctx context.Context, id uint) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *comment
	return &cp, nil
}

func (s *MemoryStorage) ListComments(ctx context.Context, postID uint, opts database.ListOptions) ([]models.Comment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var comments []models.Comment
	for _, comment := range s.comments {
		if comment.PostID == postID {
			comments = append(comments, *comment)
		}
	}

	sort.SliceStable(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		return !newerFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})

	return paginate(comments, opts), int64(len(comments)), nil
}

func (s *MemoryStorage) UpdateComment(ctx context.Context, id uint, changes []database.Assignment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return 0, nil
	}
	next := *comment
	for _, change := range changes {
		if err := applyComment(&next, change); err != nil {
			return 0, err
		}
	}
	*comment = next
	return 1, nil
}

func (s *MemoryStorage) DeleteComment(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return database.ErrNotFound
	}
	delete(s.comments, id)
	if post, ok := s.posts[comment.PostID]; ok && post.CommentCount > 0 {
		post.CommentCount--
	}
	return nil
}

func applyGroup(group *models.Group, change database.Assignment) error {
	var ok bool
	switch change.Column {
	case "name":
		group.Name, ok = change.Value.(string)
	case "image_url":
		group.ImageURL, ok = change.Value.(string)
	case "description":
		group.Description, ok = change.Value.(string)
	case "is_public":
		group.IsPublic, ok = change.Value.(bool)
	case "updated_at":
		group.UpdatedAt, ok = change.Value.(time.Time)
	default:
		return fmt.Errorf("%w: groups.%s", database.ErrUnknownColumn, change.Column)
	}
	if !ok {
		return fmt.Errorf("groups.%s: unexpected value type %T", change.Column, change.Value)
	}
	return nil
}

func applyPost(post *models.Post, change database.Assignment) error {
	var ok bool
	switch change.Column {
	case "nickname":
		post.Nickname, ok = change.Value.(string)
	case "title":
		post.Title, ok = change.Value.(string)
	case "content":
		post.Content, ok = change.Value.(string)
	case "image_url":
		post.ImageURL, ok = change.Value.(string)
	case "tags":
		var tags datatypes.JSONSlice[string]
		tags, ok = change.Value.(datatypes.JSONSlice[string])
		post.Tags = append(datatypes.JSONSlice[string](nil), tags...)
	case "location":
		post.Location, ok = change.Value.(string)
	case "moment":
		post.Moment, ok = change.Value.(time.Time)
	case "is_public":
		post.IsPublic, ok = change.Value.(bool)
	case "updated_at":
		post.UpdatedAt, ok = change.Value.(time.Time)
	default:
		return fmt.Errorf("%w: posts.%s", database.ErrUnknownColumn, change.Column)
	}
	if !ok {
		return fmt.Errorf("posts.%s: unexpected value type %T", change.Column, change.Value)
	}
	return nil
}

func applyComment(comment *models.Comment, change database.Assignment) error {
	var ok bool
	switch change.Column {
	case "nickname":
		comment.Nickname, ok = change.Value.(string)
	case "content":
		comment.Content, ok = change.Value.(string)
	case "updated_at":
		comment.UpdatedAt, ok = change.Value.(time.Time)
	default:
		return fmt.Errorf("%w: comments.%s", database.ErrUnknownColumn, change.Column)
	}
	if !ok {
		return fmt.Errorf("comments.%s: unexpected value type %T", change.Column, change.Value)
	}
	return nil
}

func copyPost(post *models.Post) *models.Post {
	cp := *post
	if post.Tags != nil {
		cp.Tags = append(datatypes.JSONSlice[string](nil), post.Tags...)
	}
	return &cp
}

func containsFold(value, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(keyword))
}

func newerFirst(aTime time.Time, aID uint, bTime time.Time, bID uint) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aID > bID
}

func paginate[T any](items []T, opts database.ListOptions) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	if opts.Offset > 0 {
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
