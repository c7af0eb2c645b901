package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"jogakzip/database"
	"jogakzip/models"
	"jogakzip/utils"

	"gorm.io/datatypes"
)

type PostService struct {
	store  database.Store
	events EventPublisher
	now    func() time.Time
}

func NewPostService(store database.Store, events EventPublisher) *PostService {
	return &PostService{
		store:  store,
		events: publisherOrNoop(events),
		now:    utcNow,
	}
}

func (s *PostService) CreatePost(ctx context.Context, groupID uint, req *models.CreatePostRequest) (*models.Post, error) {
	if err := validateID(groupID, "groupId"); err != nil {
		return nil, err
	}
	nickname, err := requireText(req.Nickname, "nickname")
	if err != nil {
		return nil, err
	}
	title, err := requireText(req.Title, "title")
	if err != nil {
		return nil, err
	}
	content, err := requireText(req.Content, "content")
	if err != nil {
		return nil, err
	}
	if req.Moment.IsZero() {
		return nil, utils.NewValidationError("moment is required")
	}
	if req.IsPublic == nil {
		return nil, utils.NewValidationError("isPublic is required")
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	group, err := s.store.FindGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("post.create", "group", err)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		GroupID:  groupID,
		Nickname: nickname,
		Title:    title,
		Content:  content,
		ImageURL: strings.TrimSpace(req.ImageURL),
		Tags:     datatypes.JSONSlice[string](normalizeTags(req.Tags)),
		Location: strings.TrimSpace(req.Location),
		Moment:   req.Moment,
		IsPublic: *req.IsPublic,
		Password: hashed,
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, storeError("post.create", "post", err)
	}

	if PostReadable(post, group) {
		s.events.Publish(ctx, models.Event{Type: models.EventPostCreated, GroupID: groupID, Data: post.ToResponse()})
	}
	return post, nil
}

// ListPosts returns the readable posts of a group, newest first by default.
// Posts of a private group are never listed.
func (s *PostService) ListPosts(ctx context.Context, groupID uint, query *models.PostListQuery) (models.PageResponse[models.PostResponse], error) {
	if err := validateID(groupID, "groupId"); err != nil {
		return models.PageResponse[models.PostResponse]{}, err
	}
	page, pageSize, offset := pageWindow(query.Page, query.PageSize)

	group, err := s.store.FindGroup(ctx, groupID)
	if err != nil {
		return models.PageResponse[models.PostResponse]{}, storeError("post.list", "group", err)
	}
	if !GroupReadable(group) {
		return models.NewPageResponse[models.PostResponse](nil, 0, page, pageSize), nil
	}

	posts, total, err := s.store.ListPosts(ctx, groupID, database.ListOptions{
		Keyword:    strings.TrimSpace(query.Keyword),
		SortBy:     postSortKey(query.SortBy),
		PublicOnly: true,
		Offset:     offset,
		Limit:      pageSize,
	})
	if err != nil {
		return models.PageResponse[models.PostResponse]{}, storeError("post.list", "post", err)
	}

	responses := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, posts[i].ToResponse())
	}
	return models.NewPageResponse(responses, total, page, pageSize), nil
}

func (s *PostService) GetPost(ctx context.Context, id uint, password string) (*models.Post, error) {
	post, group, err := s.load(ctx, "post.get", id)
	if err != nil {
		return nil, err
	}
	if PostReadable(post, group) {
		return post, nil
	}
	if password == "" {
		return nil, utils.NewAuthorizationRequiredError("post is private; password required")
	}
	if err := verifySecret(password, post.Password); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) VerifyPostPassword(ctx context.Context, id uint, password string) error {
	_, _, err := s.authorize(ctx, "post.verify_password", id, password)
	return err
}

func (s *PostService) UpdatePost(ctx context.Context, id uint, req *models.UpdatePostRequest) (*models.Post, error) {
	post, group, err := s.authorize(ctx, "post.update", id, req.Password)
	if err != nil {
		return nil, err
	}

	nickname, err := requireOptionalText(req.Nickname, "nickname")
	if err != nil {
		return nil, err
	}
	title, err := requireOptionalText(req.Title, "title")
	if err != nil {
		return nil, err
	}
	content, err := requireOptionalText(req.Content, "content")
	if err != nil {
		return nil, err
	}
	if req.Moment != nil && req.Moment.IsZero() {
		return nil, utils.NewValidationError("moment must not be empty")
	}
	var tags *datatypes.JSONSlice[string]
	if req.Tags != nil {
		normalized := datatypes.JSONSlice[string](normalizeTags(*req.Tags))
		tags = &normalized
	}

	now := s.now()
	changes, err := BuildMutation(now,
		Field("nickname", nickname, &post.Nickname),
		Field("title", title, &post.Title),
		Field("content", content, &post.Content),
		Field("image_url", req.ImageURL, &post.ImageURL),
		Field("tags", tags, &post.Tags),
		Field("location", req.Location, &post.Location),
		Field("moment", req.Moment, &post.Moment),
		Field("is_public", req.IsPublic, &post.IsPublic),
	)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpdatePost(ctx, id, changes); err != nil {
		return nil, storeError("post.update", "post", err)
	}
	post.UpdatedAt = now

	if PostReadable(post, group) {
		s.events.Publish(ctx, models.Event{Type: models.EventPostUpdated, GroupID: post.GroupID, Data: post.ToResponse()})
	}
	return post, nil
}

// DeletePost removes the post and its comments.
func (s *PostService) DeletePost(ctx context.Context, id uint, password string) error {
	post, group, err := s.authorize(ctx, "post.delete", id, password)
	if err != nil {
		return err
	}

	if err := s.store.DeletePost(ctx, id); err != nil && !errors.Is(err, database.ErrNotFound) {
		return storeError("post.delete", "post", err)
	}

	if PostReadable(post, group) {
		s.events.Publish(ctx, models.Event{Type: models.EventPostDeleted, GroupID: post.GroupID, Data: models.VisibilityResponse{ID: post.ID, IsPublic: true}})
	}
	return nil
}

func (s *PostService) LikePost(ctx context.Context, id uint) (*models.Post, error) {
	if err := validateID(id, "postId"); err != nil {
		return nil, err
	}

	if err := s.store.IncrementPostLikes(ctx, id); err != nil {
		return nil, storeError("post.like", "post", err)
	}

	post, group, err := s.load(ctx, "post.like", id)
	if err != nil {
		return nil, err
	}

	if PostReadable(post, group) {
		s.events.Publish(ctx, models.Event{Type: models.EventPostLiked, GroupID: post.GroupID, Data: post.ToResponse()})
	}
	return post, nil
}

// GetPostVisibility reports the effective flag: the post and its group must
// both be public.
func (s *PostService) GetPostVisibility(ctx context.Context, id uint) (models.VisibilityResponse, error) {
	post, group, err := s.load(ctx, "post.is_public", id)
	if err != nil {
		return models.VisibilityResponse{}, err
	}
	return models.VisibilityResponse{ID: post.ID, IsPublic: PostReadable(post, group)}, nil
}

func (s *PostService) load(ctx context.Context, op string, id uint) (*models.Post, *models.Group, error) {
	if err := validateID(id, "postId"); err != nil {
		return nil, nil, err
	}

	post, err := s.store.FindPost(ctx, id)
	if err != nil {
		return nil, nil, storeError(op, "post", err)
	}

	group, err := s.store.FindGroup(ctx, post.GroupID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, nil, storeError(op, "group", err)
	}
	return post, group, nil
}

func (s *PostService) authorize(ctx context.Context, op string, id uint, password string) (*models.Post, *models.Group, error) {
	if err := validateID(id, "postId"); err != nil {
		return nil, nil, err
	}
	if err := requirePassword(password); err != nil {
		return nil, nil, err
	}

	post, group, err := s.load(ctx, op, id)
	if err != nil {
		return nil, nil, err
	}
	if err := verifySecret(password, post.Password); err != nil {
		return nil, nil, err
	}
	return post, group, nil
}

func postSortKey(sortBy string) string {
	switch sortBy {
	case database.SortMostCommented, database.SortMostLiked:
		return sortBy
	default:
		return database.SortLatest
	}
}
