package landingclient

import (
	"context"
	"strings"
	"sync"

	"github.com/cabpool/cabpool-backend/types"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

const (
	MsgRegistrationIncomplete = "Please fill in your name and email"
	MsgFeedbackIncomplete     = "Please fill in your name and comment"
	MsgNetworkError           = "Could not reach the server. Please try again."
)

// formState is the status shared by both forms.
type formState struct {
	mu      sync.Mutex
	status  Status
	message string
}

func (s *formState) set(status Status, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.message = message
}

// Status returns the current status and the message shown with it.
func (s *formState) Status() (Status, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == "" {
		return StatusIdle, ""
	}
	return s.status, s.message
}

// Reset returns the form to idle, as the page does a few seconds after a result.
func (s *formState) Reset() {
	s.set(StatusIdle, "")
}

// RegisterForm holds the registration form fields.
type RegisterForm struct {
	formState

	Name        string
	Email       string
	Phone       string
	PickupPoint string
	DropPoint   string
	Message     string
}

// Submit sends the form. Name and email are checked locally first; a failed check
// sets StatusError and returns nil without calling the API. On success the fields
// are cleared, on failure they are kept along with the API's message.
func (f *RegisterForm) Submit(ctx context.Context, client ClientInterface) error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" {
		f.set(StatusError, MsgRegistrationIncomplete)
		return nil
	}

	f.set(StatusSubmitting, "")
	_, err := client.Register(ctx, types.RegistrationCreate{
		Name:        f.Name,
		Email:       f.Email,
		Phone:       optional(f.Phone),
		PickupPoint: f.PickupPoint,
		DropPoint:   f.DropPoint,
		Message:     optional(f.Message),
	})
	if err != nil {
		f.set(StatusError, ErrorMessage(err))
		return err
	}

	f.Name, f.Email, f.Phone, f.PickupPoint, f.DropPoint, f.Message = "", "", "", "", "", ""
	f.set(StatusSuccess, "")
	return nil
}

// FeedbackForm holds the feedback form fields.
type FeedbackForm struct {
	formState

	Name    string
	Comment string
}

func (f *FeedbackForm) Submit(ctx context.Context, client ClientInterface) error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Comment) == "" {
		f.set(StatusError, MsgFeedbackIncomplete)
		return nil
	}

	f.set(StatusSubmitting, "")
	_, err := client.SubmitFeedback(ctx, types.FeedbackCreate{Name: f.Name, Comment: f.Comment})
	if err != nil {
		f.set(StatusError, ErrorMessage(err))
		return err
	}

	f.Name, f.Comment = "", ""
	f.set(StatusSuccess, "")
	return nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
