package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"placement/internal/auth"
	"placement/internal/config"
	"placement/internal/contact"
	"placement/internal/document"
	httpx "placement/internal/http"
	"placement/internal/memstore"
	"placement/internal/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	token   string
	db      *memstore.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := memstore.New()
	jwtSvc := auth.NewJWT("test-secret")
	token, err := jwtSvc.Sign(1)
	require.NoError(t, err)

	h := httpx.NewRouter(config.Config{}, nil, jwtSvc, httpx.Services{
		Contacts:  &contact.Service{Store: db.Contacts()},
		Messages:  &message.Service{Store: db.Messages()},
		Documents: &document.Service{Store: db.Documents(), Log: zap.NewNop()},
	})
	return &testServer{handler: h, token: token, db: db}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, rd)
	r.Header.Set("Authorization", "Bearer "+ts.token)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestUnauthorizedEnvelope(t *testing.T) {
	ts := newTestServer(t)

	r := httptest.NewRequest("GET", "/contacts", nil)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 401, body["status"])
	assert.Equal(t, "Unauthorized", body["error"])
	assert.Equal(t, "/contacts", body["path"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestContactLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/contacts", map[string]any{
		"name":    "Grace",
		"surname": "Hopper",
		"emails":  []string{"grace@example.com"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	id := uint64(created["id"].(float64))
	require.NotZero(t, id)

	w = ts.do(t, "GET", fmt.Sprintf("/contacts/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "Grace", got["name"])
	assert.Len(t, got["emails"], 1)

	w = ts.do(t, "PUT", fmt.Sprintf("/contacts/%d/category", id), map[string]any{"category": "CUSTOMER"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CUSTOMER", decode(t, w)["category"])

	w = ts.do(t, "DELETE", fmt.Sprintf("/contacts/%d", id), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, "GET", fmt.Sprintf("/contacts/%d", id), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 404, body["status"])
	assert.Equal(t, "Not Found", body["error"])
}

func TestContactValidationReturns400(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/contacts", map[string]any{"name": "", "surname": "Hopper"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 400, body["status"])
	assert.Contains(t, body["message"], "name")
}

func TestMessageWrongStateReturns422(t *testing.T) {
	ts := newTestServer(t)

	sender, err := (&contact.Service{Store: ts.db.Contacts()}).Create(context.Background(), contact.CreateInput{
		Name:    "Ada",
		Surname: "Lovelace",
	})
	require.NoError(t, err)

	w := ts.do(t, "POST", "/messages", map[string]any{
		"sender_id": sender.ID,
		"channel":   "EMAIL",
		"date":      time.Now().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.Equal(t, "RECEIVED", created["state"])
	id := uint64(created["id"].(float64))

	// RECEIVED -> DONE skips READ and must be rejected.
	w = ts.do(t, "POST", fmt.Sprintf("/messages/%d", id), map[string]any{"new_state": "DONE"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 422, body["status"])
	assert.Contains(t, body["message"], "RECEIVED -> DONE")

	w = ts.do(t, "POST", fmt.Sprintf("/messages/%d", id), map[string]any{"new_state": "READ"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "GET", fmt.Sprintf("/messages/%d/history", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "READ", history[0]["state"])
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)}
	hdr["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocumentUploadAndDownload(t *testing.T) {
	ts := newTestServer(t)

	buf, ctype := multipartUpload(t, "cv.pdf", "application/pdf", []byte("%PDF"))
	r := httptest.NewRequest("POST", "/documents", buf)
	r.Header.Set("Authorization", "Bearer "+ts.token)
	r.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.EqualValues(t, 4, created["size"])
	id := uint64(created["id"].(float64))

	w = ts.do(t, "GET", fmt.Sprintf("/documents/%d/data", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), "cv.pdf"))
	assert.Equal(t, "%PDF", w.Body.String())

	// Same name again conflicts.
	buf, ctype = multipartUpload(t, "cv.pdf", "application/pdf", []byte("other"))
	r = httptest.NewRequest("POST", "/documents", buf)
	r.Header.Set("Authorization", "Bearer "+ts.token)
	r.Header.Set("Content-Type", ctype)
	w = httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 409, body["status"])
}
