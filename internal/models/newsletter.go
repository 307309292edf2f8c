package models

import "time"

// NewsletterSubscriber mirrors the mailing-list state kept at the provider.
// Provider sync is best-effort; sync columns record the last attempt.
type NewsletterSubscriber struct {
	BaseModel
	Email          string     `gorm:"uniqueIndex" json:"email"`
	Subscribed     bool       `gorm:"default:true" json:"subscribed"`
	ProviderSyncAt *time.Time `json:"provider_sync_at"`
	ProviderError  string     `json:"provider_error,omitempty"`
}
