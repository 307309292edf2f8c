package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// NewsletterService syncs subscribers to the third-party mailing-list
// provider. Sync is best-effort: a missing configuration or a provider
// outage is logged and never fails the request that triggered it.
type NewsletterService struct {
	apiURL string
	apiKey string
	listID string
	client *http.Client
}

// NewNewsletterService creates a new NewsletterService.
func NewNewsletterService(apiURL, apiKey, listID string) *NewsletterService {
	return &NewsletterService{
		apiURL: apiURL,
		apiKey: apiKey,
		listID: listID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type listMemberPayload struct {
	EmailAddress string `json:"email_address"`
	Status       string `json:"status"`
}

// Subscribe registers the email with the provider's list.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) error {
	return s.setStatus(ctx, email, "subscribed")
}

// Unsubscribe marks the email unsubscribed at the provider.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	return s.setStatus(ctx, email, "unsubscribed")
}

func (s *NewsletterService) setStatus(ctx context.Context, email, status string) error {
	if s.apiURL == "" || s.apiKey == "" || s.listID == "" {
		log.Println("[Newsletter] Provider not configured, skipping sync")
		return nil
	}

	payload := listMemberPayload{EmailAddress: email, Status: status}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/lists/%s/members", s.apiURL, s.listID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Newsletter] Sync for %s failed: %v", email, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[Newsletter] Provider returned status %d for %s", resp.StatusCode, email)
		return fmt.Errorf("newsletter provider returned status %d", resp.StatusCode)
	}

	return nil
}
