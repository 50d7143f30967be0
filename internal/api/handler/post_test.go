package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dropwishes/api/internal/core"
)

func TestPostCreate_MissingTitle(t *testing.T) {
	h := NewPost(nil, nil)
	rec := httptest.NewRecorder()
	r := asUser(newRequest(http.MethodPost, "/api/blog/posts", map[string]any{
		"body": "content without a title",
	}), testUser())

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
}

func TestPostCreate_InvalidJSON(t *testing.T) {
	h := NewPost(nil, nil)
	rec := httptest.NewRecorder()
	r := asUser(newRequestRaw(http.MethodPost, "/api/blog/posts", "{bad"), testUser())

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostList_EmptyIsOK(t *testing.T) {
	db := new(handlerMockDB)
	db.On("Query", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "FROM posts")
	}), mock.Anything).Return(emptyRows{}, nil)

	h := NewPost(core.NewPostService(db, core.NewTagService(db)), nil)
	rec := httptest.NewRecorder()

	h.List(rec, newRequest(http.MethodGet, "/api/blog/posts", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	db.AssertExpectations(t)
}

func TestPostGet_MissingID(t *testing.T) {
	h := NewPost(nil, nil)
	rec := httptest.NewRecorder()

	h.Get(rec, newRequest(http.MethodGet, "/api/blog/posts/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTagUpdate_MissingName(t *testing.T) {
	h := NewTag(nil)
	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPut, "/api/blog/tags/"+validID, map[string]any{}), "id", validID)

	h.Update(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
