package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/db"
)

// Notifier delivers push notifications to vendors, drivers and customers.
// Delivery is best effort; the scheduling core never fails on a push error.
type Notifier interface {
	Push(ctx context.Context, profileID primitive.ObjectID, title, body string, data map[string]string) error
}

// ExpoNotifier sends notifications through the Expo push API. The recipient's
// push token is resolved with a single account lookup keyed by profile id; the
// account's role tag replaces the old probe-three-collections pattern.
type ExpoNotifier struct {
	accounts db.AccountCollection
	endpoint string
	client   *http.Client
}

// NewExpoNotifier creates an Expo-backed notifier.
func NewExpoNotifier(accounts db.AccountCollection) *ExpoNotifier {
	return &ExpoNotifier{
		accounts: accounts,
		endpoint: "https://exp.host/--/api/v2/push/send",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewExpoNotifierWithEndpoint creates a notifier against a custom endpoint.
func NewExpoNotifierWithEndpoint(accounts db.AccountCollection, endpoint string, client *http.Client) *ExpoNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ExpoNotifier{accounts: accounts, endpoint: endpoint, client: client}
}

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

// Push resolves the profile's push token and posts the message to Expo.
func (n *ExpoNotifier) Push(ctx context.Context, profileID primitive.ObjectID, title, body string, data map[string]string) error {
	account, err := n.accounts.FindAccountByProfileID(ctx, profileID)
	if err != nil {
		return fmt.Errorf("resolve push token: %w", err)
	}
	if account.ExpoPushToken == "" {
		log.WithFields(log.Fields{"profile_id": profileID.Hex(), "role": account.Role}).
			Debug("No push token registered, skipping notification")
		return nil
	}

	payload, err := json.Marshal(expoMessage{
		To:    account.ExpoPushToken,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expo push returned status code %d", resp.StatusCode)
	}
	return nil
}
