// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// VerificationMailEvent is published when a sign-up needs its verification
// email sent. The consumer renders and delivers the message; the API request
// only waits for the publish.
type VerificationMailEvent struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	Audience    string `json:"audience"` // "dashboard" | "store"
	RequestedAt string `json:"requested_at"`
}
