// Package events publishes onboarding lifecycle events. Terminal wizard
// transitions are written to a Postgres outbox table and relayed to Kafka by
// a background loop; without a database or brokers configured, events are
// logged and dropped.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event types recorded by the wizard.
const (
	TypeProfileCreated   = "seller.profile_created"
	TypePaymentConfirmed = "seller.payment_confirmed"
	TypePaymentFailed    = "seller.payment_failed"
)

// Recorder accepts an onboarding event for eventual delivery.
type Recorder interface {
	Record(ctx context.Context, eventType, sellerID string, payload any) error
}

// ProfileCreated is emitted when the marketplace backend confirms a new
// seller profile.
type ProfileCreated struct {
	SellerID  string    `json:"seller_id"`
	Tier      string    `json:"tier"`
	StoreName string    `json:"store_name"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentConfirmed is emitted when a professional subscription charge is
// verified after the checkout redirect.
type PaymentConfirmed struct {
	SellerID    string          `json:"seller_id"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

// PaymentFailed is emitted when verification rejects a charge.
type PaymentFailed struct {
	SellerID  string    `json:"seller_id"`
	Reference string    `json:"reference"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}
