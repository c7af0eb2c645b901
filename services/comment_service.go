package services

import (
	"context"
	"errors"
	"time"

	"jogakzip/database"
	"jogakzip/models"
	"jogakzip/utils"
)

type CommentService struct {
	store  database.Store
	events EventPublisher
	now    func() time.Time
}

func NewCommentService(store database.Store, events EventPublisher) *CommentService {
	return &CommentService{
		store:  store,
		events: publisherOrNoop(events),
		now:    utcNow,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, postID uint, req *models.CreateCommentRequest) (*models.Comment, error) {
	if err := validateID(postID, "postId"); err != nil {
		return nil, err
	}
	nickname, err := requireText(req.Nickname, "nickname")
	if err != nil {
		return nil, err
	}
	content, err := requireText(req.Content, "content")
	if err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	post, group, err := s.loadParent(ctx, "comment.create", postID)
	if err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		Nickname: nickname,
		Content:  content,
		Password: hashed,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, storeError("comment.create", "comment", err)
	}

	if CommentReadable(post, group) {
		s.events.Publish(ctx, models.Event{Type: models.EventCommentCreated, GroupID: post.GroupID, Data: comment.ToResponse()})
	}
	return comment, nil
}

// ListComments returns comments oldest first, or an empty page when the
// parent post is not readable.
func (s *CommentService) ListComments(ctx context.Context, postID uint, query *models.CommentListQuery) (models.PageResponse[models.CommentResponse], error) {
	if err := validateID(postID, "postId"); err != nil {
		return models.PageResponse[models.CommentResponse]{}, err
	}
	page, pageSize, offset := pageWindow(query.Page, query.PageSize)

	post, group, err := s.loadParent(ctx, "comment.list", postID)
	if err != nil {
		return models.PageResponse[models.CommentResponse]{}, err
	}
	if !CommentReadable(post, group) {
		return models.NewPageResponse[models.CommentResponse](nil, 0, page, pageSize), nil
	}

	comments, total, err := s.store.ListComments(ctx, postID, database.ListOptions{
		SortBy: database.SortOldest,
		Offset: offset,
		Limit:  pageSize,
	})
	if err != nil {
		return models.PageResponse[models.CommentResponse]{}, storeError("comment.list", "comment", err)
	}

	responses := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, comments[i].ToResponse())
	}
	return models.NewPageResponse(responses, total, page, pageSize), nil
}

func (s *CommentService) GetComment(ctx context.Context, id uint, password string) (*models.Comment, error) {
	comment, post, group, err := s.load(ctx, "comment.get", id)
	if err != nil {
		return nil, err
	}
	if CommentReadable(post, group) {
		return comment, nil
	}
	if password == "" {
		return nil, utils.NewAuthorizationRequiredError("comment belongs to a private post; password required")
	}
	if err := verifySecret(password, comment.Password); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) VerifyCommentPassword(ctx context.Context, id uint, password string) error {
	_, _, _, err := s.authorize(ctx, "comment.verify_password", id, password)
	return err
}

func (s *CommentService) UpdateComment(ctx context.Context, id uint, req *models.UpdateCommentRequest) (*models.Comment, error) {
	comment, post, group, err := s.authorize(ctx, "comment.update", id, req.Password)
	if err != nil {
		return nil, err
	}

	nickname, err := requireOptionalText(req.Nickname, "nickname")
	if err != nil {
		return nil, err
	}
	content, err := requireOptionalText(req.Content, "content")
	if err != nil {
		return nil, err
	}

	now := s.now()
	changes, err := BuildMutation(now,
		Field("nickname", nickname, &comment.Nickname),
		Field("content", content, &comment.Content),
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpdateComment(ctx, id, changes); err != nil {
		return nil, storeError("comment.update", "comment", err)
	}
	comment.UpdatedAt = now

	if CommentReadable(post, group) {
		s.events.Publish(ctx, models.Event{Type: models.EventCommentUpdated, GroupID: post.GroupID, Data: comment.ToResponse()})
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, id uint, password string) error {
	comment, post, group, err := s.authorize(ctx, "comment.delete", id, password)
	if err != nil {
		return err
	}

	if err := s.store.DeleteComment(ctx, id); err != nil && !errors.Is(err, database.ErrNotFound) {
		return storeError("comment.delete", "comment", err)
	}

	if CommentReadable(post, group) {
		s.events.Publish(ctx, models.Event{Type: models.EventCommentDeleted, GroupID: post.GroupID, Data: comment.ToResponse()})
	}
	return nil
}

func (s *CommentService) loadParent(ctx context.Context, op string, postID uint) (*models.Post, *models.Group, error) {
	post, err := s.store.FindPost(ctx, postID)
	if err != nil {
		return nil, nil, storeError(op, "post", err)
	}
	group, err := s.store.FindGroup(ctx, post.GroupID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, nil, storeError(op, "group", err)
	}
	return post, group, nil
}

// load returns the comment with its parent chain. A missing post leaves the
// comment unreadable without a password.
func (s *CommentService) load(ctx context.Context, op string, id uint) (*models.Comment, *models.Post, *models.Group, error) {
	if err := validateID(id, "commentId"); err != nil {
		return nil, nil, nil, err
	}

	comment, err := s.store.FindComment(ctx, id)
	if err != nil {
		return nil, nil, nil, storeError(op, "comment", err)
	}

	post, group, err := s.loadParent(ctx, op, comment.PostID)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return comment, nil, nil, nil
		}
		return nil, nil, nil, err
	}
	return comment, post, group, nil
}

func (s *CommentService) authorize(ctx context.Context, op string, id uint, password string) (*models.Comment, *models.Post, *models.Group, error) {
	if err := validateID(id, "commentId"); err != nil {
		return nil, nil, nil, err
	}
	if err := requirePassword(password); err != nil {
		return nil, nil, nil, err
	}

	comment, post, group, err := s.load(ctx, op, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := verifySecret(password, comment.Password); err != nil {
		return nil, nil, nil, err
	}
	return comment, post, group, nil
}
