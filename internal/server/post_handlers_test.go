package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"chelagram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func newPostApp(s *Server, userID uint) *fiber.App {
	app := newTestApp()
	posts := app.Group("/api/posts", asUser(userID))
	posts.Post("/", s.CreatePost)
	posts.Get("/", s.GetFeed)
	posts.Get("/user/:username", s.GetUserPosts)
	posts.Patch("/:postId", s.UpdatePost)
	posts.Delete("/:postId", s.DeletePost)
	return app
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestCreatePost(t *testing.T) {
	t.Run("uploads image and creates post", func(t *testing.T) {
		s, m := newTestServer()
		app := newPostApp(s, 1)

		m.posts.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
			return p.AuthorID == 1 && p.Caption == "sunset" && p.ImageURL != ""
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Post).ID = 9
		})
		m.posts.On("GetByID", mock.Anything, uint(9), uint(1)).
			Return(&models.Post{ID: 9, AuthorID: 1, Caption: "sunset"}, nil)

		body, contentType := multipartBody(t, map[string]string{"caption": " sunset "}, "image", "photo.png", pngBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		m.posts.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		s, _ := newTestServer()
		app := newPostApp(s, 1)

		body, contentType := multipartBody(t, map[string]string{"caption": "no photo"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects non-image payload", func(t *testing.T) {
		s, _ := newTestServer()
		app := newPostApp(s, 1)

		body, contentType := multipartBody(t, nil, "image", "note.txt", []byte("plain text, not an image"))
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetFeed(t *testing.T) {
	s, m := newTestServer()
	app := newPostApp(s, 3)

	feed := []*models.Post{
		{ID: 2, AuthorID: 3, IsPinned: true},
		{ID: 5, AuthorID: 4},
	}
	m.posts.On("GetFeed", mock.Anything, uint(3), 20, 0).Return(feed, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []models.Post
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 2)
	assert.True(t, out[0].IsPinned)
	m.posts.AssertExpectations(t)
}

func TestGetFeedPaginationClamped(t *testing.T) {
	s, m := newTestServer()
	app := newPostApp(s, 3)

	m.posts.On("GetFeed", mock.Anything, uint(3), maxPaginationLimit, 40).
		Return([]*models.Post{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/?limit=5000&offset=40", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m.posts.AssertExpectations(t)
}

func TestUpdatePost(t *testing.T) {
	t.Run("author edits caption", func(t *testing.T) {
		s, m := newTestServer()
		app := newPostApp(s, 1)

		m.posts.On("GetByID", mock.Anything, uint(9), uint(1)).
			Return(&models.Post{ID: 9, AuthorID: 1, Caption: "old"}, nil).Once()
		m.posts.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
			return p.ID == 9 && p.Caption == "new caption"
		})).Return(nil)
		m.posts.On("GetByID", mock.Anything, uint(9), uint(1)).
			Return(&models.Post{ID: 9, AuthorID: 1, Caption: "new caption"}, nil)

		payload, _ := json.Marshal(map[string]any{"caption": "new caption"})
		req := httptest.NewRequest(http.MethodPatch, "/api/posts/9", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.posts.AssertExpectations(t)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		s, m := newTestServer()
		app := newPostApp(s, 2)

		m.posts.On("GetByID", mock.Anything, uint(9), uint(2)).
			Return(&models.Post{ID: 9, AuthorID: 1}, nil)

		payload, _ := json.Marshal(map[string]any{"caption": "hijack"})
		req := httptest.NewRequest(http.MethodPatch, "/api/posts/9", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		m.posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("invalid id", func(t *testing.T) {
		s, _ := newTestServer()
		app := newPostApp(s, 1)

		req := httptest.NewRequest(http.MethodPatch, "/api/posts/abc", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeletePost(t *testing.T) {
	t.Run("author deletes", func(t *testing.T) {
		s, m := newTestServer()
		app := newPostApp(s, 1)

		m.posts.On("GetByID", mock.Anything, uint(9), uint(1)).
			Return(&models.Post{ID: 9, AuthorID: 1}, nil)
		m.posts.On("Delete", mock.Anything, uint(9)).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/posts/9", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		m.posts.AssertExpectations(t)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		s, m := newTestServer()
		app := newPostApp(s, 5)

		m.posts.On("GetByID", mock.Anything, uint(9), uint(5)).
			Return(&models.Post{ID: 9, AuthorID: 1}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/posts/9", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		m.posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestGetUserPosts(t *testing.T) {
	t.Run("known author", func(t *testing.T) {
		s, m := newTestServer()
		app := newPostApp(s, 2)

		m.users.On("GetByUsername", mock.Anything, "chela").
			Return(&models.User{ID: 7, Username: "chela"}, nil)
		m.posts.On("GetByAuthorUsername", mock.Anything, "chela", 20, 0, uint(2)).
			Return([]*models.Post{{ID: 1, AuthorID: 7}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/posts/user/chela", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		m.posts.AssertExpectations(t)
	})

	t.Run("unknown author", func(t *testing.T) {
		s, m := newTestServer()
		app := newPostApp(s, 2)

		m.users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/posts/user/ghost", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		m.posts.AssertNotCalled(t, "GetByAuthorUsername",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
