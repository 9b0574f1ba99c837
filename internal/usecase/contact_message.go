package usecase

import (
	"fmt"
	"strings"

	"contact-form-backend/internal/domain"
	"contact-form-backend/pkg/jmapclient"

	"git.sr.ht/~rockorager/go-jmap"
	"git.sr.ht/~rockorager/go-jmap/mail"
	"git.sr.ht/~rockorager/go-jmap/mail/email"
)

const bodyPartID = "body"

var subjectReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// composeDraft builds the draft email for a submission. Replies go
// straight to the submitter.
func composeDraft(req *domain.ContactRequest, mailCfg domain.MailConfig, draftMailboxID jmap.ID, sourceLabel string) *email.Email {
	body := fmt.Sprintf("Contact form submission from %s:\n\nName: %s\nEmail: %s\n\nMessage:\n%s\n",
		sourceLabel, req.Name, req.Email, req.Message)

	return &email.Email{
		From:       []*mail.Address{{Email: mailCfg.FromEmail}},
		To:         []*mail.Address{{Email: mailCfg.PersonalEmail}},
		ReplyTo:    []*mail.Address{{Email: req.Email, Name: req.Name}},
		Subject:    "Contact Form: " + subjectReplacer.Replace(req.Name),
		Keywords:   map[string]bool{jmapclient.KeywordDraft: true},
		MailboxIDs: map[jmap.ID]bool{draftMailboxID: true},
		BodyValues: map[string]*email.BodyValue{
			bodyPartID: {Value: body},
		},
		TextBody: []*email.BodyPart{{PartID: bodyPartID, Type: "text/plain", Charset: "utf-8"}},
	}
}
