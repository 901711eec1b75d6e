package webhook_controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickstay/booking/models/user_models"
)

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(_ []byte, _ http.Header) error {
	return f.err
}

type fakeUserStore struct {
	users map[string]*user_models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*user_models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *user_models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u *user_models.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return user_models.ErrUserNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func newWebhookRouter(wc *WebhookController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/clerk", wc.Handle)
	return r
}

func postEvent(r *gin.Engine, event any, withHeaders bool) *httptest.ResponseRecorder {
	body, _ := json.Marshal(event)
	req, _ := http.NewRequest("POST", "/api/clerk", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if withHeaders {
		req.Header.Set("svix-id", "msg_123")
		req.Header.Set("svix-timestamp", "1700000000")
		req.Header.Set("svix-signature", "v1,deadbeef")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createdEvent(id string) map[string]any {
	return map[string]any{
		"type": "user.created",
		"data": map[string]any{
			"id": id,
			"email_addresses": []map[string]any{
				{"email_address": "jane@example.com"},
			},
			"first_name": "Jane",
			"last_name":  "Doe",
			"image_url":  "https://img.example.com/jane.png",
		},
	}
}

func TestWebhookUserLifecycle(t *testing.T) {
	store := newFakeUserStore()
	wc := &WebhookController{Verifier: &fakeVerifier{}, Users: store}
	r := newWebhookRouter(wc)

	w := postEvent(r, createdEvent("user_1"), true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.users, 1)
	u := store.users["user_1"]
	require.NotNil(t, u)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane Doe", u.Username)
	assert.Equal(t, "https://img.example.com/jane.png", u.Image)

	// Update changes the synced fields.
	update := createdEvent("user_1")
	update["type"] = "user.updated"
	update["data"].(map[string]any)["first_name"] = "Janet"
	w = postEvent(r, update, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Janet Doe", store.users["user_1"].Username)

	// Delete removes the row.
	w = postEvent(r, map[string]any{
		"type": "user.deleted",
		"data": map[string]any{"id": "user_1"},
	}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.users)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store := newFakeUserStore()
	wc := &WebhookController{Verifier: &fakeVerifier{err: errors.New("signature mismatch")}, Users: store}
	r := newWebhookRouter(wc)

	w := postEvent(r, createdEvent("user_1"), true)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, store.users, "unverified payloads must cause zero mutations")
}

func TestWebhookRejectsMissingHeaders(t *testing.T) {
	store := newFakeUserStore()
	wc := &WebhookController{Verifier: &fakeVerifier{}, Users: store}
	r := newWebhookRouter(wc)

	w := postEvent(r, createdEvent("user_1"), false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.users)
}

func TestWebhookIgnoresUnknownEventType(t *testing.T) {
	store := newFakeUserStore()
	wc := &WebhookController{Verifier: &fakeVerifier{}, Users: store}
	r := newWebhookRouter(wc)

	w := postEvent(r, map[string]any{
		"type": "session.created",
		"data": map[string]any{"id": "sess_1"},
	}, true)

	assert.Equal(t, http.StatusOK, w.Code, "unknown types are a no-op, not an error")
	assert.Empty(t, store.users)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	store := newFakeUserStore()
	wc := &WebhookController{Verifier: &fakeVerifier{}, Users: store}
	r := newWebhookRouter(wc)

	tests := []struct {
		name  string
		event any
	}{
		{"missing type", map[string]any{"data": map[string]any{"id": "user_1"}}},
		{"missing data", map[string]any{"type": "user.created"}},
		{"missing id", map[string]any{"type": "user.created", "data": map[string]any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postEvent(r, tt.event, true)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, store.users)
		})
	}
}
