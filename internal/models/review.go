package models

import "github.com/google/uuid"

// Review moderation statuses.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review is a product rating with an optional comment. A user may review a
// product at most once.
type Review struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_review_user_product" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	ProductID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_review_user_product" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Status    string    `gorm:"default:pending" json:"status"`
}
