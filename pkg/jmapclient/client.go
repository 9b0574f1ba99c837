package jmapclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"git.sr.ht/~rockorager/go-jmap"
	"git.sr.ht/~rockorager/go-jmap/mail/identity"
	"git.sr.ht/~rockorager/go-jmap/mail/mailbox"
	"golang.org/x/oauth2"
)

// DefaultSessionURL is Fastmail's session discovery endpoint.
const DefaultSessionURL = "https://api.fastmail.com/.well-known/jmap"

// DraftsMailboxName is the mailbox new messages are placed in before
// submission.
const DraftsMailboxName = "Drafts"

// Capabilities declared by the batches this package sends.
const (
	CapabilityCore       jmap.URI = "urn:ietf:params:jmap:core"
	CapabilityMail       jmap.URI = "urn:ietf:params:jmap:mail"
	CapabilitySubmission jmap.URI = "urn:ietf:params:jmap:submission"
)

var (
	ErrNoAccount       = errors.New("jmapclient: session has no mail account")
	ErrNoDraftsMailbox = errors.New("jmapclient: drafts mailbox not found")
	ErrNoIdentity      = errors.New("jmapclient: no identity matches the login address")
)

// Client opens JMAP sessions with a bearer token. Every call is attempted
// exactly once.
type Client struct {
	sessionURL string
	token      string
	timeout    time.Duration
	transport  http.RoundTripper
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each outbound call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTransport sets the round tripper requests are sent through before
// the bearer token is applied.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// NewClient creates a client for the server whose session resource lives
// at sessionURL.
func NewClient(sessionURL, token string, opts ...Option) *Client {
	c := &Client{
		sessionURL: sessionURL,
		token:      token,
		timeout:    10 * time.Second,
		transport:  http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is one discovered session resource. Calls made through it are
// bound to the context it was opened with.
type Session struct {
	client    *jmap.Client
	AccountID jmap.ID
}

// Session fetches a fresh session resource and resolves the primary mail
// account.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	jc := &jmap.Client{
		SessionEndpoint: c.sessionURL,
		HttpClient: &http.Client{
			Timeout: c.timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}),
				Base:   &contextTransport{ctx: ctx, base: c.transport},
			},
		},
	}
	if err := jc.Authenticate(); err != nil {
		return nil, fmt.Errorf("jmapclient: session: %w", err)
	}
	if jc.Session == nil {
		return nil, errors.New("jmapclient: session: empty session resource")
	}

	accountID := jc.Session.PrimaryAccounts[CapabilityMail]
	if accountID == "" {
		return nil, ErrNoAccount
	}
	return &Session{client: jc, AccountID: accountID}, nil
}

// DraftsMailboxID returns the id of the first mailbox named "Drafts".
func (c *Client) DraftsMailboxID(ctx context.Context, s *Session) (jmap.ID, error) {
	req := &jmap.Request{}
	req.Invoke(&mailbox.Query{
		Account: s.AccountID,
		Filter:  &mailbox.FilterCondition{Name: DraftsMailboxName},
	})
	req.Using = []jmap.URI{CapabilityCore, CapabilityMail}

	args, err := s.call(ctx, req, "Mailbox/query", 0)
	if err != nil {
		return "", err
	}
	result, ok := args.(*mailbox.QueryResponse)
	if !ok {
		return "", unexpectedResponse("Mailbox/query", args)
	}
	if len(result.IDs) == 0 {
		return "", ErrNoDraftsMailbox
	}
	return result.IDs[0], nil
}

// IdentityID returns the id of the first identity whose email equals
// address exactly.
func (c *Client) IdentityID(ctx context.Context, s *Session, address string) (jmap.ID, error) {
	req := &jmap.Request{}
	req.Invoke(&identity.Get{Account: s.AccountID})
	req.Using = []jmap.URI{CapabilityCore, CapabilityMail, CapabilitySubmission}

	args, err := s.call(ctx, req, "Identity/get", 0)
	if err != nil {
		return "", err
	}
	result, ok := args.(*identity.GetResponse)
	if !ok {
		return "", unexpectedResponse("Identity/get", args)
	}
	for _, ident := range result.List {
		if ident != nil && ident.Email == address {
			return ident.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoIdentity, address)
}

// Send issues the create-and-submit batch. It fails on a non-OK status
// and when either call reports an object it did not create.
func (c *Client) Send(ctx context.Context, s *Session, tx SendTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := s.client.Do(tx.Request())
	if err != nil {
		return fmt.Errorf("jmapclient: send: %w", err)
	}
	return checkSendResponse(resp)
}

// call posts req and returns the arguments of the response at index.
func (s *Session) call(ctx context.Context, req *jmap.Request, method string, index int) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jmapclient: %s: %w", method, err)
	}
	return responseArgs(resp, method, index)
}

func responseArgs(resp *jmap.Response, method string, index int) (any, error) {
	if resp == nil || index >= len(resp.Responses) || resp.Responses[index] == nil {
		return nil, fmt.Errorf("jmapclient: %s: missing method response %d", method, index)
	}
	inv := resp.Responses[index]
	if inv.Name == "error" {
		if err, ok := inv.Args.(error); ok {
			return nil, &MethodError{Method: method, Err: err}
		}
		return nil, &MethodError{Method: method, Err: fmt.Errorf("%v", inv.Args)}
	}
	return inv.Args, nil
}

// MethodError wraps an "error" response returned in place of a method
// result.
type MethodError struct {
	Method string
	Err    error
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("jmapclient: %s: method error: %v", e.Method, e.Err)
}

func (e *MethodError) Unwrap() error { return e.Err }

func unexpectedResponse(method string, args any) error {
	return fmt.Errorf("jmapclient: %s: unexpected response %T", method, args)
}

// contextTransport attaches the session context to every request.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
