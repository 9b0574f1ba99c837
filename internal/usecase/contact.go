package usecase

import (
	"context"

	"contact-form-backend/internal/domain"
	"contact-form-backend/pkg/jmapclient"
	"contact-form-backend/pkg/logger"

	"git.sr.ht/~rockorager/go-jmap"
	"golang.org/x/sync/errgroup"
)

type contactUsecase struct {
	mailCfg     domain.MailConfig
	gateway     domain.MailGateway
	sourceLabel string
}

// NewContactUsecase creates a new contact usecase. sourceLabel names the
// page the form lives on and is quoted in the message body.
func NewContactUsecase(mailCfg domain.MailConfig, gateway domain.MailGateway, sourceLabel string) domain.ContactUsecase {
	return &contactUsecase{
		mailCfg:     mailCfg,
		gateway:     gateway,
		sourceLabel: sourceLabel,
	}
}

// SendContactMessage resolves the session, the drafts mailbox and the
// sending identity, then creates and submits the message in one batch.
func (uc *contactUsecase) SendContactMessage(ctx context.Context, req *domain.ContactRequest) error {
	if err := uc.mailCfg.Validate(); err != nil {
		return &domain.StageError{Stage: domain.StageConfig, Err: err}
	}

	session, err := uc.gateway.Session(ctx)
	if err != nil {
		return &domain.StageError{Stage: domain.StageSession, Err: err}
	}

	var draftMailboxID, identityID jmap.ID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := uc.gateway.DraftsMailboxID(gctx, session)
		if err != nil {
			return &domain.StageError{Stage: domain.StageMailbox, Err: err}
		}
		draftMailboxID = id
		return nil
	})
	g.Go(func() error {
		id, err := uc.gateway.IdentityID(gctx, session, uc.mailCfg.LoginEmail)
		if err != nil {
			return &domain.StageError{Stage: domain.StageIdentity, Err: err}
		}
		identityID = id
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	tx := jmapclient.SendTransaction{
		AccountID:  session.AccountID,
		Draft:      composeDraft(req, uc.mailCfg, draftMailboxID, uc.sourceLabel),
		IdentityID: identityID,
	}
	if err := uc.gateway.Send(ctx, session, tx); err != nil {
		return &domain.StageError{Stage: domain.StageSubmit, Err: err}
	}

	logger.Log.InfoContext(ctx, "Contact form message sent",
		"mailbox_id", draftMailboxID,
		"identity_id", identityID,
	)
	return nil
}
