package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contact-form-backend/pkg/jmapclient"

	"git.sr.ht/~rockorager/go-jmap"
)

// Messages returned to the caller.
const (
	MsgMissingFields    = "Missing required fields: email, name, and message are required"
	MsgInvalidEmail     = "Invalid email format"
	MsgSubmitFailed     = "Failed to submit contact form. Please try again later."
	MsgThankYou         = "Thank you for your message! I'll get back to you soon."
	MsgForbidden        = "Forbidden"
	MsgMethodNotAllowed = "Method not allowed"
	MsgTooManyRequests  = "Too many requests. Please try again later."
)

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Email   string `json:"email" binding:"required,contact_email"`
	Name    string `json:"name" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// MailConfig carries the credentials and addresses needed to send mail.
type MailConfig struct {
	Token         string // JMAP bearer token
	LoginEmail    string // account login, also selects the sending identity
	PersonalEmail string // recipient of every submission
	FromEmail     string // From address of outgoing mail
}

// ErrMailNotConfigured is returned when any MailConfig value is empty.
var ErrMailNotConfigured = errors.New("mail service is not configured")

// Validate reports every missing value.
func (m MailConfig) Validate() error {
	var missing []string
	if m.Token == "" {
		missing = append(missing, "JMAP_TOKEN")
	}
	if m.LoginEmail == "" {
		missing = append(missing, "LOGIN_EMAIL")
	}
	if m.PersonalEmail == "" {
		missing = append(missing, "PERSONAL_EMAIL")
	}
	if m.FromEmail == "" {
		missing = append(missing, "CONTACT_FORM_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMailNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// Stage identifies the step of the send pipeline that failed.
type Stage string

const (
	StageConfig   Stage = "config"
	StageSession  Stage = "session"
	StageMailbox  Stage = "mailbox"
	StageIdentity Stage = "identity"
	StageSubmit   Stage = "submit"
	StageDecode   Stage = "decode"
)

// StageError is the failure result of the send pipeline. Callers see one
// generic failure; the stage is only for diagnostics.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// MailGateway is the remote mail API used to deliver a submission.
type MailGateway interface {
	Session(ctx context.Context) (*jmapclient.Session, error)
	DraftsMailboxID(ctx context.Context, session *jmapclient.Session) (jmap.ID, error)
	IdentityID(ctx context.Context, session *jmapclient.Session, address string) (jmap.ID, error)
	Send(ctx context.Context, session *jmapclient.Session, tx jmapclient.SendTransaction) error
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// SendContactMessage delivers a validated submission. Any failure is a *StageError.
	SendContactMessage(ctx context.Context, req *ContactRequest) error
}
