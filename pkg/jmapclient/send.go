package jmapclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"git.sr.ht/~rockorager/go-jmap"
	"git.sr.ht/~rockorager/go-jmap/mail/email"
	"git.sr.ht/~rockorager/go-jmap/mail/emailsubmission"
)

// Creation ids used by the send batch.
const (
	DraftCreationID      jmap.ID = "draft"
	SubmissionCreationID jmap.ID = "sendIt"
)

// KeywordDraft marks an email as a draft.
const KeywordDraft = "$draft"

// Ref returns the back-reference to an object created earlier in the same
// batch.
func Ref(creationID jmap.ID) jmap.ID {
	return "#" + creationID
}

// SendTransaction creates a draft and submits it in a single request.
// The submission points at the draft through Ref(DraftCreationID), and the
// draft is destroyed once the submission succeeds.
type SendTransaction struct {
	AccountID  jmap.ID
	Draft      *email.Email
	IdentityID jmap.ID
}

// Request returns the ordered two-call batch for the transaction.
func (t SendTransaction) Request() *jmap.Request {
	req := &jmap.Request{}
	req.Invoke(&email.Set{
		Account: t.AccountID,
		Create:  map[jmap.ID]*email.Email{DraftCreationID: t.Draft},
	})
	req.Invoke(&emailsubmission.Set{
		Account: t.AccountID,
		Create: map[jmap.ID]*emailsubmission.EmailSubmission{
			SubmissionCreationID: {EmailID: Ref(DraftCreationID), IdentityID: t.IdentityID},
		},
		OnSuccessDestroyEmail: []jmap.ID{Ref(SubmissionCreationID)},
	})
	req.Using = []jmap.URI{CapabilityCore, CapabilityMail, CapabilitySubmission}
	return req
}

// NotCreatedError reports objects the server refused to create in a send
// batch.
type NotCreatedError struct {
	Method     string
	NotCreated map[jmap.ID]*jmap.SetError
}

func (e *NotCreatedError) Error() string {
	ids := make([]string, 0, len(e.NotCreated))
	for id, se := range e.NotCreated {
		kind := "unknown"
		if se != nil {
			kind = se.Type
		}
		ids = append(ids, fmt.Sprintf("%s=%s", id, kind))
	}
	sort.Strings(ids)
	return fmt.Sprintf("jmapclient: %s did not create %s", e.Method, strings.Join(ids, ", "))
}

// checkSendResponse inspects both results of a send batch and fails if
// either one reports an object in its notCreated set.
func checkSendResponse(resp *jmap.Response) error {
	args, err := responseArgs(resp, "Email/set", 0)
	if err != nil {
		return err
	}
	emailSet, ok := args.(*email.SetResponse)
	if !ok {
		return unexpectedResponse("Email/set", args)
	}

	args, err = responseArgs(resp, "EmailSubmission/set", 1)
	if err != nil {
		return err
	}
	submissionSet, ok := args.(*emailsubmission.SetResponse)
	if !ok {
		return unexpectedResponse("EmailSubmission/set", args)
	}

	var errs []error
	if len(emailSet.NotCreated) > 0 {
		errs = append(errs, &NotCreatedError{Method: "Email/set", NotCreated: emailSet.NotCreated})
	}
	if len(submissionSet.NotCreated) > 0 {
		errs = append(errs, &NotCreatedError{Method: "EmailSubmission/set", NotCreated: submissionSet.NotCreated})
	}
	return errors.Join(errs...)
}
