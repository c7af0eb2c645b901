package services

import (
	"context"
	"sync"
	"testing"

	"jogakzip/models"
	"jogakzip/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, err := env.groups.CreateGroup(ctx, &models.CreateGroupRequest{
		Name:        "  Hiking club ",
		Password:    "group-pw",
		IsPublic:    boolPtr(true),
		ImageURL:    "http://img/1.png",
		Description: "weekend walks",
	})
	require.NoError(t, err)

	assert.NotZero(t, group.ID)
	assert.Equal(t, "Hiking club", group.Name)
	assert.NotEqual(t, "group-pw", group.Password)
	assert.True(t, utils.CheckPassword("group-pw", group.Password))
	assert.Zero(t, group.LikesCount)
	assert.Zero(t, group.PostCount)
}

func TestCreateGroupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateGroupRequest
	}{
		{"short password", models.CreateGroupRequest{Name: "g", Password: "12345", IsPublic: boolPtr(true)}},
		{"blank name", models.CreateGroupRequest{Name: "   ", Password: "group-pw", IsPublic: boolPtr(true)}},
		{"missing visibility", models.CreateGroupRequest{Name: "g", Password: "group-pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.CreateGroup(ctx, &tt.req)
			assert.True(t, utils.IsKind(err, utils.KindValidation))
		})
	}
}

func TestListGroupsOnlyPublic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createGroup(t, "Public hiking", true)
	env.createGroup(t, "Private hiking", false)
	env.createGroup(t, "Public cooking", true)

	page, err := env.groups.ListGroups(ctx, &models.GroupListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItemCount)
	for _, group := range page.Data {
		assert.True(t, group.IsPublic)
	}

	page, err = env.groups.ListGroups(ctx, &models.GroupListQuery{Keyword: "HIKING"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Public hiking", page.Data[0].Name)

	page, err = env.groups.ListGroups(ctx, &models.GroupListQuery{IsPublic: boolPtr(false)})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Zero(t, page.TotalItemCount)
}

func TestListGroupsSortAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createGroup(t, "first", true)
	second := env.createGroup(t, "second", true)
	third := env.createGroup(t, "third", true)

	_, err := env.groups.LikeGroup(ctx, first.ID)
	require.NoError(t, err)

	page, err := env.groups.ListGroups(ctx, &models.GroupListQuery{SortBy: "mostLiked"})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, first.ID, page.Data[0].ID)

	page, err = env.groups.ListGroups(ctx, &models.GroupListQuery{SortBy: "unknown", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, int64(3), page.TotalItemCount)
	require.Len(t, page.Data, 1)
	assert.Equal(t, first.ID, page.Data[0].ID)

	page, err = env.groups.ListGroups(ctx, &models.GroupListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{page.Data[0].ID, page.Data[1].ID, page.Data[2].ID})
}

func TestListGroupsHugePageIsClamped(t *testing.T) {
	env := newTestEnv(t)
	env.createGroup(t, "only", true)

	page, err := env.groups.ListGroups(context.Background(), &models.GroupListQuery{Page: 461168601842738792, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, maxPage, page.CurrentPage)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(1), page.TotalItemCount)
}

func TestGetPrivateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "secret club", false)

	_, err := env.groups.GetGroup(ctx, group.ID, "")
	assert.True(t, utils.IsKind(err, utils.KindAuthorizationRequired))

	_, err = env.groups.GetGroup(ctx, group.ID, "wrong-pw")
	assert.True(t, utils.IsKind(err, utils.KindAuthorization))

	got, err := env.groups.GetGroup(ctx, group.ID, "group-pw")
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.ID)

	_, err = env.groups.GetGroup(ctx, 999, "")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestVerifyGroupPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "club", true)

	assert.NoError(t, env.groups.VerifyGroupPassword(ctx, group.ID, "group-pw"))
	assert.True(t, utils.IsKind(env.groups.VerifyGroupPassword(ctx, group.ID, "nope-nope"), utils.KindAuthorization))
	assert.True(t, utils.IsKind(env.groups.VerifyGroupPassword(ctx, group.ID, ""), utils.KindValidation))
	assert.True(t, utils.IsKind(env.groups.VerifyGroupPassword(ctx, 404, "group-pw"), utils.KindNotFound))
}

func TestUpdateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "club", true)

	updated, err := env.groups.UpdateGroup(ctx, group.ID, &models.UpdateGroupRequest{
		Password:    "group-pw",
		Description: strPtr(""),
		IsPublic:    boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)
	assert.Equal(t, "club", updated.Name)

	stored, err := env.store.FindGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPublic)
	assert.Equal(t, group.Password, stored.Password)
	assert.True(t, !stored.UpdatedAt.Before(group.UpdatedAt))
}

func TestUpdateGroupWrongPasswordLeavesGroupUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "club", true)

	_, err := env.groups.UpdateGroup(ctx, group.ID, &models.UpdateGroupRequest{
		Password: "wrong-pw",
		Name:     strPtr("renamed"),
	})
	assert.True(t, utils.IsKind(err, utils.KindAuthorization))

	_, err = env.groups.UpdateGroup(ctx, group.ID, &models.UpdateGroupRequest{
		Password: "wrong-pw",
		Name:     strPtr(""),
	})
	assert.True(t, utils.IsKind(err, utils.KindAuthorization))

	stored, err := env.store.FindGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "club", stored.Name)
	assert.Equal(t, group.UpdatedAt, stored.UpdatedAt)
}

func TestUpdateGroupWithoutChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "club", true)

	_, err := env.groups.UpdateGroup(ctx, group.ID, &models.UpdateGroupRequest{Password: "group-pw"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = env.groups.UpdateGroup(ctx, group.ID, &models.UpdateGroupRequest{Password: "group-pw", Name: strPtr("  ")})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestDeleteGroupWithPostsConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "club", true)
	post := env.createPost(t, group.ID, "day one", true)

	err := env.groups.DeleteGroup(ctx, group.ID, "group-pw")
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.EqualError(t, err, "group has dependent posts")

	_, err = env.store.FindGroup(ctx, group.ID)
	require.NoError(t, err)

	require.NoError(t, env.posts.DeletePost(ctx, post.ID, "post-pw"))
	require.NoError(t, env.groups.DeleteGroup(ctx, group.ID, "group-pw"))

	_, err = env.groups.GetGroup(ctx, group.ID, "")
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestDeleteGroupWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "club", true)

	err := env.groups.DeleteGroup(ctx, group.ID, "wrong-pw")
	assert.True(t, utils.IsKind(err, utils.KindAuthorization))

	_, err = env.store.FindGroup(ctx, group.ID)
	assert.NoError(t, err)
}

func TestConcurrentGroupLikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "club", true)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.groups.LikeGroup(ctx, group.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := env.store.FindGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.LikesCount)

	_, err = env.groups.LikeGroup(ctx, 999)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestGroupVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createGroup(t, "club", false)

	visibility, err := env.groups.GetGroupVisibility(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityResponse{ID: group.ID, IsPublic: false}, visibility)
}

func TestGroupEventsOnlyForPublicGroups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	public := env.createGroup(t, "public", true)
	private := env.createGroup(t, "private", false)

	_, err := env.groups.LikeGroup(ctx, public.ID)
	require.NoError(t, err)
	_, err = env.groups.LikeGroup(ctx, private.ID)
	require.NoError(t, err)

	liked := env.events.published(models.EventGroupLiked)
	require.Len(t, liked, 1)
	assert.Equal(t, public.ID, liked[0].GroupID)
}
