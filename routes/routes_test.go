package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"jogakzip/controllers"
	"jogakzip/database/memory"
	"jogakzip/docs"
	"jogakzip/handlers"
	"jogakzip/middleware"
	"jogakzip/models"
	"jogakzip/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router    *gin.Engine
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	hubService := services.NewHubService()
	groupService := services.NewGroupService(store, hubService)
	postService := services.NewPostService(store, hubService)
	commentService := services.NewCommentService(store, hubService)
	uploadDir := t.TempDir()

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	SetupRoutes(r,
		controllers.NewGroupController(groupService),
		controllers.NewPostController(postService),
		controllers.NewCommentController(commentService),
		controllers.NewImageController(uploadDir, "http://localhost:8080/", 1<<20),
		handlers.NewWebSocketHandler(hubService, groupService, []string{"*"}),
	)

	return &testServer{router: r, uploadDir: uploadDir}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) createGroup(t *testing.T, isPublic bool) models.GroupResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/groups", gin.H{
		"groupName": "Trip",
		"password":  "secret1",
		"isPublic":  isPublic,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var group models.GroupResponse
	decode(t, w, &group)
	return group
}

func postBody(password string, isPublic bool) gin.H {
	return gin.H{
		"nickname": "nick",
		"title":    "Sunset",
		"content":  "We watched the sun go down.",
		"moment":   "2024-03-01T18:30:00Z",
		"isPublic": isPublic,
		"password": password,
		"tags":     []string{"sea"},
		"location": "Busan",
	}
}

func (s *testServer) createPost(t *testing.T, groupID uint, isPublic bool) models.PostResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, groupPath(groupID)+"/posts", postBody("abcdef", isPublic), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post models.PostResponse
	decode(t, w, &post)
	return post
}

func groupPath(id uint) string { return "/api/groups/" + itoa(id) }

func postPath(id uint) string { return "/api/posts/" + itoa(id) }

func commentPath(id uint) string { return "/api/comments/" + itoa(id) }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func TestGroupPostLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/groups", gin.H{"groupName": "Trip", "password": "secret1", "isPublic": true}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "secret1")
	var group models.GroupResponse
	decode(t, w, &group)
	require.NotZero(t, group.ID)

	w = s.do(t, http.MethodPost, groupPath(group.ID)+"/posts", postBody("abc", true), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	post := s.createPost(t, group.ID, true)
	assert.Equal(t, []string{"sea"}, post.Tags)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := s.do(t, http.MethodPost, postPath(post.ID)+"/like", nil, nil)
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()

	w = s.do(t, http.MethodGet, postPath(post.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.PostResponse
	decode(t, w, &detail)
	assert.Equal(t, post.LikeCount+2, detail.LikeCount)

	w = s.do(t, http.MethodDelete, postPath(post.ID), gin.H{"password": "wrong-pw"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, groupPath(group.ID)+"/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page controllers.PostPage
	decode(t, w, &page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, post.ID, page.Data[0].ID)

	w = s.do(t, http.MethodDelete, postPath(post.ID), gin.H{"password": "abcdef"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, postPath(post.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupEndpoints(t *testing.T) {
	s := newTestServer(t)
	group := s.createGroup(t, true)
	s.createPost(t, group.ID, true)

	w := s.do(t, http.MethodGet, "/api/groups?sortBy=mostPosted&page=1&pageSize=10", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page controllers.GroupPage
	decode(t, w, &page)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, int64(1), page.TotalItemCount)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(1), page.Data[0].PostCount)

	w = s.do(t, http.MethodGet, "/api/groups?pageSize=1000", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/groups?page=461168601842738792&pageSize=20", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, groupPath(group.ID)+"/verify-password", gin.H{"password": "secret1"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, groupPath(group.ID)+"/verify-password", gin.H{"password": "nope-nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, groupPath(group.ID), gin.H{"password": "nope-nope", "groupName": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPut, groupPath(group.ID), gin.H{"password": "nope-nope", "groupName": ""}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPut, groupPath(group.ID), gin.H{"password": "secret1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, groupPath(group.ID), gin.H{"password": "nope-nope"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodDelete, groupPath(group.ID), gin.H{"password": "secret1"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"group has dependent posts"}`, w.Body.String())

	w = s.do(t, http.MethodPost, groupPath(group.ID)+"/like", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var like controllers.LikeResponse
	decode(t, w, &like)
	assert.Equal(t, int64(1), like.LikeCount)

	w = s.do(t, http.MethodGet, "/api/groups/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/groups/12345", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrivateGroupHidesPublicPost(t *testing.T) {
	s := newTestServer(t)
	group := s.createGroup(t, false)
	post := s.createPost(t, group.ID, true)

	w := s.do(t, http.MethodGet, "/api/groups", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var groups controllers.GroupPage
	decode(t, w, &groups)
	assert.Empty(t, groups.Data)

	w = s.do(t, http.MethodGet, groupPath(group.ID), nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodGet, groupPath(group.ID), nil, http.Header{controllers.PasswordHeader: {"secret1"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, groupPath(group.ID)+"/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts controllers.PostPage
	decode(t, w, &posts)
	assert.Empty(t, posts.Data)

	w = s.do(t, http.MethodGet, postPath(post.ID), nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, postPath(post.ID)+"/is-public", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":`+itoa(post.ID)+`,"isPublic":false}`, w.Body.String())

	w = s.do(t, http.MethodGet, groupPath(group.ID)+"/ws", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPostUpdate(t *testing.T) {
	s := newTestServer(t)
	group := s.createGroup(t, true)
	post := s.createPost(t, group.ID, true)

	w := s.do(t, http.MethodPut, postPath(post.ID), gin.H{"password": "wrong-pw", "title": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, postPath(post.ID), gin.H{"password": "abcdef", "isPublic": false}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.PostResponse
	decode(t, w, &updated)
	assert.False(t, updated.IsPublic)
	assert.Equal(t, post.Title, updated.Title)

	w = s.do(t, http.MethodPost, postPath(post.ID)+"/verify-password", gin.H{"password": "wrong-pw"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodPost, postPath(post.ID)+"/verify-password", gin.H{"password": "abcdef"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommentEndpoints(t *testing.T) {
	s := newTestServer(t)
	group := s.createGroup(t, true)
	post := s.createPost(t, group.ID, true)

	w := s.do(t, http.MethodPost, postPath(post.ID)+"/comments", gin.H{"nickname": "reader", "content": "first", "password": "comment1"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var comment models.CommentResponse
	decode(t, w, &comment)

	w = s.do(t, http.MethodPost, postPath(post.ID)+"/comments", gin.H{"nickname": "reader", "content": "second", "password": "comment2"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, postPath(post.ID)+"/comments", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page controllers.CommentPage
	decode(t, w, &page)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "first", page.Data[0].Content)

	w = s.do(t, http.MethodGet, commentPath(comment.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, commentPath(comment.ID), gin.H{"password": "comment1", "content": "edited"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "edited")

	w = s.do(t, http.MethodPost, commentPath(comment.ID)+"/verify-password", gin.H{"password": "comment2"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodDelete, commentPath(comment.ID), gin.H{"password": "comment2"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodDelete, commentPath(comment.ID), gin.H{"password": "comment1"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, postPath(post.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.PostResponse
	decode(t, w, &detail)
	assert.Equal(t, int64(1), detail.CommentCount)
}

func TestValidationMessages(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/groups", gin.H{"groupName": "Trip", "password": "123"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body controllers.ErrorResponse
	decode(t, w, &body)
	assert.Contains(t, body.Message, "password must be at least 6 characters")
	assert.Contains(t, body.Message, "isPublic is required")
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)

	upload := func(name string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("image", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/image", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := upload("photo.PNG")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp controllers.ImageResponse
	decode(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.ImageURL, "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(resp.ImageURL, ".png"))

	_, err := os.Stat(filepath.Join(s.uploadDir, filepath.Base(resp.ImageURL)))
	assert.NoError(t, err)

	w = upload("notes.txt")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGroupFeed(t *testing.T) {
	s := newTestServer(t)
	group := s.createGroup(t, true)

	server := httptest.NewServer(s.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + groupPath(group.ID) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.WSMessage{Type: "client_connect"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var ack models.WSMessage
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "client_connected", ack.Type)

	post := s.createPost(t, group.ID, true)

	var event models.WSMessage
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventPostCreated, event.Type)
	assert.Equal(t, models.GroupTopic(group.ID), event.Topic)

	data, ok := event.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(post.ID), data["id"])
}

func TestAPIDocsCoverEveryRoute(t *testing.T) {
	s := newTestServer(t)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	for _, route := range s.router.Routes() {
		if !strings.HasPrefix(route.Path, "/api/") {
			continue
		}
		segments := strings.Split(strings.TrimPrefix(route.Path, "/api"), "/")
		for i, segment := range segments {
			if strings.HasPrefix(segment, ":") {
				segments[i] = "{" + segment[1:] + "}"
			}
		}
		path := strings.Join(segments, "/")

		_, ok := doc.Paths[path][strings.ToLower(route.Method)]
		assert.True(t, ok, "%s %s is not documented", route.Method, path)
	}
}
