package database

import (
	"context"
	"errors"

	"jogakzip/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrParentNotFound = errors.New("parent record not found")
	ErrHasDependents  = errors.New("record has dependent rows")
	ErrUnknownColumn  = errors.New("unknown column")
)

const (
	SortLatest        = "latest"
	SortOldest        = "oldest"
	SortMostPosted    = "mostPosted"
	SortMostLiked     = "mostLiked"
	SortMostBadge     = "mostBadge"
	SortMostCommented = "mostCommented"
)

// Assignment is one "column = value" pair of an UPDATE statement.
type Assignment struct {
	Column string
	Value  interface{}
}

type ListOptions struct {
	Keyword    string
	SortBy     string
	PublicOnly bool
	Offset     int
	Limit      int
}

type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	FindGroup(ctx context.Context, id uint) (*models.Group, error)
	ListGroups(ctx context.Context, opts ListOptions) ([]models.Group, int64, error)
	UpdateGroup(ctx context.Context, id uint, changes []Assignment) (int64, error)
	// DeleteGroup fails with ErrHasDependents while posts reference the group.
	DeleteGroup(ctx context.Context, id uint) error
	IncrementGroupLikes(ctx context.Context, id uint) error
}

type PostStore interface {
	// CreatePost fails with ErrParentNotFound for an unknown group and
	// increments the group's post count in the same transaction.
	CreatePost(ctx context.Context, post *models.Post) error
	FindPost(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, groupID uint, opts ListOptions) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, id uint, changes []Assignment) (int64, error)
	// DeletePost removes the post together with its comments.
	DeletePost(ctx context.Context, id uint) error
	IncrementPostLikes(ctx context.Context, id uint) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	FindComment(ctx context.Context, id uint) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint, opts ListOptions) ([]models.Comment, int64, error)
	UpdateComment(ctx context.Context, id uint, changes []Assignment) (int64, error)
	DeleteComment(ctx context.Context, id uint) error
}

type Store interface {
	GroupStore
	PostStore
	CommentStore
	Close() error
}
