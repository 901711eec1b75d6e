package webhook_controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/quickstay/booking/logger"
	"github.com/quickstay/booking/models/user_models"
)

// Verifier checks a webhook payload against its signature headers. It is
// an interface so tests can substitute a fake instead of computing real
// Svix signatures.
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

// UserStore is the mutation surface the webhook applies events to.
type UserStore interface {
	Create(ctx context.Context, u *user_models.User) error
	Update(ctx context.Context, u *user_models.User) error
	Delete(ctx context.Context, id string) error
}

// WebhookController syncs identity-provider user events into the users
// table. It is the only writer of that table.
type WebhookController struct {
	Verifier Verifier
	Users    UserStore
}

// NewWebhookController wires the Svix verifier from CLERK_WEBHOOK_SECRET
// and the production user model.
func NewWebhookController(db *pgxpool.Pool) (*WebhookController, error) {
	secret := os.Getenv("CLERK_WEBHOOK_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("CLERK_WEBHOOK_SECRET not set")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("init svix verifier: %w", err)
	}
	return &WebhookController{
		Verifier: wh,
		Users:    user_models.NewUserModel(db),
	}, nil
}

type clerkEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type clerkUserData struct {
	ID             string `json:"id"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

// Handle processes POST /api/clerk. Unverified or malformed payloads are
// rejected before any mutation; unknown event types are a logged no-op.
func (wc *WebhookController) Handle(c *gin.Context) {
	for _, h := range []string{"svix-id", "svix-timestamp", "svix-signature"} {
		if c.GetHeader(h) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required Svix headers"})
			return
		}
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.ErrorLogger.Errorf("Webhook: failed to read body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payload"})
		return
	}

	if err := wc.Verifier.Verify(payload, c.Request.Header); err != nil {
		logger.ErrorLogger.Errorf("Webhook signature verification failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid webhook signature"})
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.Type == "" || len(event.Data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid webhook payload"})
		return
	}

	ctx := c.Request.Context()

	switch event.Type {
	case "user.created", "user.updated":
		var data clerkUserData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid webhook payload"})
			return
		}
		user := toUser(data)
		if event.Type == "user.created" {
			err = wc.Users.Create(ctx, user)
		} else {
			err = wc.Users.Update(ctx, user)
		}
		if err != nil {
			logger.ErrorLogger.Errorf("Webhook: failed to apply %s for %s: %v", event.Type, data.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process webhook"})
			return
		}

	case "user.deleted":
		var data clerkUserData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid webhook payload"})
			return
		}
		if err := wc.Users.Delete(ctx, data.ID); err != nil {
			logger.ErrorLogger.Errorf("Webhook: failed to delete user %s: %v", data.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to process webhook"})
			return
		}

	default:
		logger.InfoLogger.Infof("Unhandled webhook event type: %s", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook received and processed"})
}

func toUser(data clerkUserData) *user_models.User {
	email := ""
	if len(data.EmailAddresses) > 0 {
		email = data.EmailAddresses[0].EmailAddress
	}
	return &user_models.User{
		ID:       data.ID,
		Email:    email,
		Username: strings.TrimSpace(data.FirstName + " " + data.LastName),
		Image:    data.ImageURL,
	}
}
