/**
 * @description
 * This file defines the event payloads published to the message broker.
 * The email worker consuming the notifications exchange renders and sends
 * the actual messages; these structs are the wire contract.
 */
package domain

import "time"

// ReminderEvent is published when a renewal reminder fires for a
// subscription. Label identifies the reminder step, e.g. "7 days before
// reminder".
type ReminderEvent struct {
	EventID          string    `json:"event_id"`
	To               string    `json:"to"`
	UserName         string    `json:"user_name"`
	Label            string    `json:"label"`
	DaysBefore       int       `json:"days_before"`
	SubscriptionID   string    `json:"subscription_id"`
	SubscriptionName string    `json:"subscription_name"`
	Price            float64   `json:"price"`
	Currency         Currency  `json:"currency"`
	Frequency        Frequency `json:"frequency"`
	PaymentMethod    string    `json:"payment_method"`
	RenewalDate      time.Time `json:"renewal_date"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ActivationEvent is published when a new account needs its activation
// email. ActivationURL embeds the signed activation token.
type ActivationEvent struct {
	EventID       string    `json:"event_id"`
	To            string    `json:"to"`
	UserName      string    `json:"user_name"`
	ActivationURL string    `json:"activation_url"`
	ExpiresAt     time.Time `json:"expires_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}
