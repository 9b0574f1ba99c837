package usecase_test

import (
	"context"
	"errors"
	"testing"

	"contact-form-backend/internal/domain"
	"contact-form-backend/internal/usecase"
	"contact-form-backend/pkg/jmapclient"

	"git.sr.ht/~rockorager/go-jmap"
	"git.sr.ht/~rockorager/go-jmap/mail"
	"git.sr.ht/~rockorager/go-jmap/mail/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Gateway
type MockMailGateway struct {
	mock.Mock
}

func (m *MockMailGateway) Session(ctx context.Context) (*jmapclient.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jmapclient.Session), args.Error(1)
}

func (m *MockMailGateway) DraftsMailboxID(ctx context.Context, session *jmapclient.Session) (jmap.ID, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(jmap.ID), args.Error(1)
}

func (m *MockMailGateway) IdentityID(ctx context.Context, session *jmapclient.Session, address string) (jmap.ID, error) {
	args := m.Called(ctx, session, address)
	return args.Get(0).(jmap.ID), args.Error(1)
}

func (m *MockMailGateway) Send(ctx context.Context, session *jmapclient.Session, tx jmapclient.SendTransaction) error {
	return m.Called(ctx, session, tx).Error(0)
}

var (
	testMailCfg = domain.MailConfig{
		Token:         "token",
		LoginEmail:    "login@example.com",
		PersonalEmail: "me@example.com",
		FromEmail:     "form@example.com",
	}
	testSession = &jmapclient.Session{AccountID: "u1"}
	testRequest = &domain.ContactRequest{Name: "Jane", Email: "jane@example.com", Message: "hi"}
)

func TestSendContactMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Should compose draft and submit it", func(t *testing.T) {
		gw := new(MockMailGateway)
		gw.On("Session", ctx).Return(testSession, nil)
		gw.On("DraftsMailboxID", mock.Anything, testSession).Return(jmap.ID("M1"), nil)
		gw.On("IdentityID", mock.Anything, testSession, "login@example.com").Return(jmap.ID("I1"), nil)

		var sent jmapclient.SendTransaction
		gw.On("Send", ctx, testSession, mock.AnythingOfType("jmapclient.SendTransaction")).Return(nil).Run(func(args mock.Arguments) {
			sent = args.Get(2).(jmapclient.SendTransaction)
		})

		uc := usecase.NewContactUsecase(testMailCfg, gw, "www.example.com/contact/")
		require.NoError(t, uc.SendContactMessage(ctx, testRequest))
		gw.AssertExpectations(t)

		assert.Equal(t, jmap.ID("u1"), sent.AccountID)
		assert.Equal(t, jmap.ID("I1"), sent.IdentityID)

		draft := sent.Draft
		require.NotNil(t, draft)
		assert.Equal(t, []*mail.Address{{Email: "form@example.com"}}, draft.From)
		assert.Equal(t, []*mail.Address{{Email: "me@example.com"}}, draft.To)
		assert.Equal(t, []*mail.Address{{Email: "jane@example.com", Name: "Jane"}}, draft.ReplyTo)
		assert.Equal(t, "Contact Form: Jane", draft.Subject)
		assert.Equal(t, map[string]bool{"$draft": true}, draft.Keywords)
		assert.Equal(t, map[jmap.ID]bool{"M1": true}, draft.MailboxIDs)
		assert.Equal(t, []*email.BodyPart{{PartID: "body", Type: "text/plain", Charset: "utf-8"}}, draft.TextBody)
		assert.Equal(t, &email.BodyValue{
			Value: "Contact form submission from www.example.com/contact/:\n\nName: Jane\nEmail: jane@example.com\n\nMessage:\nhi\n",
		}, draft.BodyValues["body"])
	})

	t.Run("Should keep subject on one line", func(t *testing.T) {
		gw := new(MockMailGateway)
		gw.On("Session", ctx).Return(testSession, nil)
		gw.On("DraftsMailboxID", mock.Anything, testSession).Return(jmap.ID("M1"), nil)
		gw.On("IdentityID", mock.Anything, testSession, mock.Anything).Return(jmap.ID("I1"), nil)
		gw.On("Send", ctx, testSession, mock.MatchedBy(func(tx jmapclient.SendTransaction) bool {
			return tx.Draft.Subject == "Contact Form: Jane Bcc: x@y.z"
		})).Return(nil)

		uc := usecase.NewContactUsecase(testMailCfg, gw, "site")
		req := &domain.ContactRequest{Name: "Jane\r\nBcc: x@y.z", Email: "jane@example.com", Message: "hi"}
		assert.NoError(t, uc.SendContactMessage(ctx, req))
		gw.AssertExpectations(t)
	})

	t.Run("Should fail before any call when config is incomplete", func(t *testing.T) {
		gw := new(MockMailGateway)
		cfg := testMailCfg
		cfg.FromEmail = ""

		err := usecase.NewContactUsecase(cfg, gw, "site").SendContactMessage(ctx, testRequest)
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StageConfig, stageErr.Stage)
		assert.ErrorIs(t, err, domain.ErrMailNotConfigured)
		assert.Contains(t, err.Error(), "CONTACT_FORM_EMAIL")
		gw.AssertNotCalled(t, "Session", mock.Anything)
	})

	t.Run("Should tag session failure", func(t *testing.T) {
		gw := new(MockMailGateway)
		gw.On("Session", ctx).Return(nil, errors.New("unauthorized"))

		err := usecase.NewContactUsecase(testMailCfg, gw, "site").SendContactMessage(ctx, testRequest)
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StageSession, stageErr.Stage)
		gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should tag identity failure and not send", func(t *testing.T) {
		gw := new(MockMailGateway)
		gw.On("Session", ctx).Return(testSession, nil)
		gw.On("DraftsMailboxID", mock.Anything, testSession).Return(jmap.ID("M1"), nil)
		gw.On("IdentityID", mock.Anything, testSession, "login@example.com").Return(jmap.ID(""), jmapclient.ErrNoIdentity)

		err := usecase.NewContactUsecase(testMailCfg, gw, "site").SendContactMessage(ctx, testRequest)
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StageIdentity, stageErr.Stage)
		assert.ErrorIs(t, err, jmapclient.ErrNoIdentity)
		gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should tag mailbox failure", func(t *testing.T) {
		gw := new(MockMailGateway)
		gw.On("Session", ctx).Return(testSession, nil)
		gw.On("DraftsMailboxID", mock.Anything, testSession).Return(jmap.ID(""), jmapclient.ErrNoDraftsMailbox)
		gw.On("IdentityID", mock.Anything, testSession, mock.Anything).Return(jmap.ID("I1"), nil).Maybe()

		err := usecase.NewContactUsecase(testMailCfg, gw, "site").SendContactMessage(ctx, testRequest)
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StageMailbox, stageErr.Stage)
	})

	t.Run("Should tag submit failure", func(t *testing.T) {
		gw := new(MockMailGateway)
		gw.On("Session", ctx).Return(testSession, nil)
		gw.On("DraftsMailboxID", mock.Anything, testSession).Return(jmap.ID("M1"), nil)
		gw.On("IdentityID", mock.Anything, testSession, mock.Anything).Return(jmap.ID("I1"), nil)
		gw.On("Send", ctx, testSession, mock.Anything).Return(&jmapclient.NotCreatedError{Method: "Email/set"})

		err := usecase.NewContactUsecase(testMailCfg, gw, "site").SendContactMessage(ctx, testRequest)
		var stageErr *domain.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, domain.StageSubmit, stageErr.Stage)
	})
}
