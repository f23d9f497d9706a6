package types

import "time"

// Registration is a visitor's expressed interest in the service, keyed by email.
type Registration struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone"`
	PickupPoint string    `json:"pickup_point"`
	DropPoint   string    `json:"drop_point"`
	Message     *string   `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegistrationCreate is the request body of POST /api/register.
// Fields are validated by the registration service, not by binding tags,
// so that every rule yields the same client-facing message.
type RegistrationCreate struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone,omitempty"`
	PickupPoint string  `json:"pickup_point"`
	DropPoint   string  `json:"drop_point"`
	Message     *string `json:"message,omitempty"`
}

// RegistrationSummary is the projection returned after a successful registration.
type RegistrationSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
