package media

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHandlerUpload(t *testing.T) {
	store := newMemStore()
	r := NewResolver(store)
	r.newID = func() string { return "up" }
	h := NewHandler(r)

	body, ct := multipartBody(t, "file", pngImage(t, 40, 20))
	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.example/images/news/up.jpg", resp["url"])
}

func TestHandlerUploadErrors(t *testing.T) {
	h := NewHandler(NewResolver(newMemStore(), WithStrictOptimize()))

	body, ct := multipartBody(t, "other", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body, ct = multipartBody(t, "file", []byte("not an image"))
	req = httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", ct)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandlerListAndDelete(t *testing.T) {
	store := newMemStore()
	store.objects["news/a.jpg"] = Object{Key: "news/a.jpg", Size: 3}
	h := NewHandler(NewResolver(store))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/media", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var files []File
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "a.jpg", files[0].Name)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/media?name=a.jpg", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/media?name=", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
