package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/items", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		name     string
		query    string
		expected Pagination
	}{
		{"defaults", "", Pagination{Limit: 20, Offset: 0}},
		{"explicit values", "?limit=5&offset=30", Pagination{Limit: 5, Offset: 30}},
		{"limit clamped to max", "?limit=9999", Pagination{Limit: maxPaginationLimit, Offset: 0}},
		{"garbage falls back", "?limit=abc&offset=-3", Pagination{Limit: 20, Offset: 0}},
		{"zero limit falls back", "?limit=0", Pagination{Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseID(t *testing.T) {
	app := newTestApp()
	app.Get("/things/:thingId", func(c *fiber.Ctx) error {
		id, err := parseID(c, "thingId")
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})

	t.Run("valid id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/42", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	for _, raw := range []string{"abc", "0", "-1"} {
		t.Run("invalid id "+raw, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/"+raw, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "post ID", humanizeParam("postId"))
	assert.Equal(t, "conversation ID", humanizeParam("conversationId"))
	assert.Equal(t, "username", humanizeParam("username"))
}
