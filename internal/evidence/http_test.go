package evidence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, store objectStore, records recordStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, newTestService(store, records))
	return router
}

func multipartBody(t *testing.T, reportID string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for filename, contentType := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + filename))
		require.NoError(t, err)
	}
	if reportID != "" {
		require.NoError(t, writer.WriteField("reportId", reportID))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadEndpointPartialSuccess(t *testing.T) {
	store := newFakeObjectStore()
	router := newTestRouter(t, store, newFakeRecordStore())

	body, contentType := multipartBody(t, "report-9", map[string]string{
		"shot.png":  "image/png",
		"notes.txt": "text/plain",
		"virus.exe": "application/x-msdownload",
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var result BatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "virus.exe", result.Errors[0].Filename)
	for _, entry := range result.Files {
		assert.NotEmpty(t, entry.URL)
		assert.NotEmpty(t, entry.Key)
	}
}

func TestUploadEndpointAllRejected(t *testing.T) {
	router := newTestRouter(t, newFakeObjectStore(), newFakeRecordStore())

	body, contentType := multipartBody(t, "", map[string]string{
		"virus.exe": "application/x-msdownload",
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var result BatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Empty(t, result.Files)
}

func TestUploadEndpointNoFiles(t *testing.T) {
	router := newTestRouter(t, newFakeObjectStore(), newFakeRecordStore())

	body, contentType := multipartBody(t, "report-9", nil)

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no files provided")
}

func TestPresignEndpoint(t *testing.T) {
	router := newTestRouter(t, newFakeObjectStore(), newFakeRecordStore())

	req := httptest.NewRequest(http.MethodGet, "/upload?filename=clip.mp4&contentType=video/mp4", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var auth PutAuthorization
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &auth))
	assert.NotEmpty(t, auth.UploadURL)
	assert.Contains(t, auth.Key, "evidence/")
	assert.Equal(t, "video/mp4", auth.Fields["Content-Type"])
}

func TestPresignEndpointRejectsInvalid(t *testing.T) {
	router := newTestRouter(t, newFakeObjectStore(), newFakeRecordStore())

	req := httptest.NewRequest(http.MethodGet, "/upload?filename=virus.exe&contentType=application/x-msdownload", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not allowed")
}

func TestPresignEndpointRequiresParameters(t *testing.T) {
	router := newTestRouter(t, newFakeObjectStore(), newFakeRecordStore())

	req := httptest.NewRequest(http.MethodGet, "/upload?filename=clip.mp4", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
