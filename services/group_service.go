package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"jogakzip/database"
	"jogakzip/models"
	"jogakzip/utils"
)

type GroupService struct {
	store  database.Store
	events EventPublisher
	now    func() time.Time
}

func NewGroupService(store database.Store, events EventPublisher) *GroupService {
	return &GroupService{
		store:  store,
		events: publisherOrNoop(events),
		now:    utcNow,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, req *models.CreateGroupRequest) (*models.Group, error) {
	name, err := requireText(req.Name, "groupName")
	if err != nil {
		return nil, err
	}
	if req.IsPublic == nil {
		return nil, utils.NewValidationError("isPublic is required")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Description: req.Description,
		IsPublic:    *req.IsPublic,
		Password:    hashed,
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, storeError("group.create", "group", err)
	}
	return group, nil
}

// ListGroups only ever returns public groups. Asking for private ones
// yields an empty page.
func (s *GroupService) ListGroups(ctx context.Context, query *models.GroupListQuery) (models.PageResponse[models.GroupResponse], error) {
	page, pageSize, offset := pageWindow(query.Page, query.PageSize)
	if query.IsPublic != nil && !*query.IsPublic {
		return models.NewPageResponse[models.GroupResponse](nil, 0, page, pageSize), nil
	}

	groups, total, err := s.store.ListGroups(ctx, database.ListOptions{
		Keyword:    strings.TrimSpace(query.Keyword),
		SortBy:     groupSortKey(query.SortBy),
		PublicOnly: true,
		Offset:     offset,
		Limit:      pageSize,
	})
	if err != nil {
		return models.PageResponse[models.GroupResponse]{}, storeError("group.list", "group", err)
	}

	responses := make([]models.GroupResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, groups[i].ToResponse())
	}
	return models.NewPageResponse(responses, total, page, pageSize), nil
}

// GetGroup returns a public group directly. A private group is returned only
// when password matches its credential.
func (s *GroupService) GetGroup(ctx context.Context, id uint, password string) (*models.Group, error) {
	if err := validateID(id, "groupId"); err != nil {
		return nil, err
	}

	group, err := s.store.FindGroup(ctx, id)
	if err != nil {
		return nil, storeError("group.get", "group", err)
	}
	if GroupReadable(group) {
		return group, nil
	}
	if password == "" {
		return nil, utils.NewAuthorizationRequiredError("group is private; password required")
	}
	if err := verifySecret(password, group.Password); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) VerifyGroupPassword(ctx context.Context, id uint, password string) error {
	_, err := s.authorize(ctx, "group.verify_password", id, password)
	return err
}

func (s *GroupService) UpdateGroup(ctx context.Context, id uint, req *models.UpdateGroupRequest) (*models.Group, error) {
	group, err := s.authorize(ctx, "group.update", id, req.Password)
	if err != nil {
		return nil, err
	}

	name, err := requireOptionalText(req.Name, "groupName")
	if err != nil {
		return nil, err
	}

	now := s.now()
	changes, err := BuildMutation(now,
		Field("name", name, &group.Name),
		Field("image_url", req.ImageURL, &group.ImageURL),
		Field("description", req.Description, &group.Description),
		Field("is_public", req.IsPublic, &group.IsPublic),
	)
	if err != nil {
		return nil, err
	}

	// Zero rows means a concurrent delete won; the verified update is a no-op.
	if _, err := s.store.UpdateGroup(ctx, id, changes); err != nil {
		return nil, storeError("group.update", "group", err)
	}
	group.UpdatedAt = now

	if GroupReadable(group) {
		s.events.Publish(ctx, models.Event{Type: models.EventGroupUpdated, GroupID: group.ID, Data: group.ToResponse()})
	}
	return group, nil
}

func (s *GroupService) DeleteGroup(ctx context.Context, id uint, password string) error {
	group, err := s.authorize(ctx, "group.delete", id, password)
	if err != nil {
		return err
	}

	if err := s.store.DeleteGroup(ctx, id); err != nil && !errors.Is(err, database.ErrNotFound) {
		return storeError("group.delete", "group", err)
	}

	if GroupReadable(group) {
		s.events.Publish(ctx, models.Event{Type: models.EventGroupDeleted, GroupID: group.ID, Data: models.VisibilityResponse{ID: group.ID, IsPublic: true}})
	}
	return nil
}

// LikeGroup adds exactly one like per call.
func (s *GroupService) LikeGroup(ctx context.Context, id uint) (*models.Group, error) {
	if err := validateID(id, "groupId"); err != nil {
		return nil, err
	}

	if err := s.store.IncrementGroupLikes(ctx, id); err != nil {
		return nil, storeError("group.like", "group", err)
	}

	group, err := s.store.FindGroup(ctx, id)
	if err != nil {
		return nil, storeError("group.like", "group", err)
	}

	if GroupReadable(group) {
		s.events.Publish(ctx, models.Event{Type: models.EventGroupLiked, GroupID: group.ID, Data: group.ToResponse()})
	}
	return group, nil
}

func (s *GroupService) GetGroupVisibility(ctx context.Context, id uint) (models.VisibilityResponse, error) {
	if err := validateID(id, "groupId"); err != nil {
		return models.VisibilityResponse{}, err
	}

	group, err := s.store.FindGroup(ctx, id)
	if err != nil {
		return models.VisibilityResponse{}, storeError("group.is_public", "group", err)
	}
	return models.VisibilityResponse{ID: group.ID, IsPublic: group.IsPublic}, nil
}

func (s *GroupService) authorize(ctx context.Context, op string, id uint, password string) (*models.Group, error) {
	if err := validateID(id, "groupId"); err != nil {
		return nil, err
	}
	if err := requirePassword(password); err != nil {
		return nil, err
	}

	group, err := s.store.FindGroup(ctx, id)
	if err != nil {
		return nil, storeError(op, "group", err)
	}
	if err := verifySecret(password, group.Password); err != nil {
		return nil, err
	}
	return group, nil
}

func groupSortKey(sortBy string) string {
	switch sortBy {
	case database.SortMostPosted, database.SortMostLiked, database.SortMostBadge:
		return sortBy
	default:
		return database.SortLatest
	}
}
