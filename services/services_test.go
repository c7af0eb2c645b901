package services

import (
	"context"
	"testing"
	"time"

	"jogakzip/database/memory"
	"jogakzip/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event models.Event) {
	m.Called(ctx, event)
}

func (m *mockPublisher) published(eventType string) []models.Event {
	var events []models.Event
	for _, call := range m.Calls {
		if event, ok := call.Arguments.Get(1).(models.Event); ok && event.Type == eventType {
			events = append(events, event)
		}
	}
	return events
}

type testEnv struct {
	store    *memory.MemoryStorage
	events   *mockPublisher
	groups   *GroupService
	posts    *PostService
	comments *CommentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	events := &mockPublisher{}
	events.On("Publish", mock.Anything, mock.Anything).Maybe()

	return &testEnv{
		store:    store,
		events:   events,
		groups:   NewGroupService(store, events),
		posts:    NewPostService(store, events),
		comments: NewCommentService(store, events),
	}
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func (e *testEnv) createGroup(t *testing.T, name string, isPublic bool) *models.Group {
	t.Helper()

	group, err := e.groups.CreateGroup(context.Background(), &models.CreateGroupRequest{
		Name:     name,
		Password: "group-pw",
		IsPublic: boolPtr(isPublic),
	})
	require.NoError(t, err)
	return group
}

func (e *testEnv) createPost(t *testing.T, groupID uint, title string, isPublic bool) *models.Post {
	t.Helper()

	post, err := e.posts.CreatePost(context.Background(), groupID, &models.CreatePostRequest{
		Nickname: "nick",
		Title:    title,
		Content:  "content of " + title,
		Moment:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		IsPublic: boolPtr(isPublic),
		Password: "post-pw",
		Tags:     []string{"trip", " trip ", "sea"},
	})
	require.NoError(t, err)
	return post
}

func (e *testEnv) createComment(t *testing.T, postID uint, content string) *models.Comment {
	t.Helper()

	comment, err := e.comments.CreateComment(context.Background(), postID, &models.CreateCommentRequest{
		Nickname: "reader",
		Content:  content,
		Password: "comment-pw",
	})
	require.NoError(t, err)
	return comment
}
