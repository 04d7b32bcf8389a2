package invite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	mbLog "github.com/pdbogen/slackin/common/log"
	"github.com/pdbogen/slackin/model/user"
	"github.com/pdbogen/slackin/ui/slack"
)

var log = mbLog.Log

// Inviter is the invite side of the Slack client.
type Inviter interface {
	InviteByEmail(ctx context.Context, email string) error
}

var _ Inviter = (*slack.Client)(nil)

type Form struct {
	Email string `validate:"required,email,max=254"`
}

// Result is what the page needs to re-render the invite form.
type Result struct {
	Form    Form
	Success bool
	Errors  []string
}

type Service struct {
	inviter       Inviter
	loginRequired bool
	validate      *validator.Validate
}

func New(inviter Inviter, loginRequired bool) (*Service, error) {
	if inviter == nil {
		return nil, errors.New("inviter must be non-nil")
	}
	return &Service{inviter: inviter, loginRequired: loginRequired, validate: validator.New()}, nil
}

// Initial is the form shown before any submission, prefilled with the viewer's email.
func (s *Service) Initial(viewer *user.User) Form {
	if viewer.Authenticated() {
		return Form{Email: viewer.Email}
	}
	return Form{}
}

// Submit validates form and asks Slack for an invite. Failures are reported in Result.Errors with Slack's
// message passed through unchanged.
func (s *Service) Submit(ctx context.Context, form Form, viewer *user.User) Result {
	form.Email = strings.TrimSpace(form.Email)
	res := Result{Form: form}

	if err := s.validate.Struct(form); err != nil {
		res.Errors = s.messages(err)
		return res
	}

	if s.loginRequired {
		if !viewer.Authenticated() {
			res.Errors = []string{"Please log in to request an invite."}
			return res
		}
		if !strings.EqualFold(form.Email, viewer.Email) {
			res.Errors = []string{fmt.Sprintf("Please use the email address of your account, %s.", viewer.Email)}
			return res
		}
	}

	if err := s.inviter.InviteByEmail(ctx, form.Email); err != nil {
		var slackErr *slack.Error
		if errors.As(err, &slackErr) {
			res.Errors = []string{slackErr.Error()}
		} else {
			log.Errorf("inviting %s: %s", form.Email, err)
			res.Errors = []string{"The invite could not be sent. Please try again later."}
		}
		return res
	}

	log.Infof("invite sent to %s (viewer %s)", form.Email, viewer)
	res.Success = true
	return res
}

func (s *Service) messages(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		log.Errorf("validating invite form: %s", err)
		return []string{"The form could not be checked. Please try again."}
	}

	ret := []string{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			ret = append(ret, "Please enter your email address.")
		default:
			ret = append(ret, "Enter a valid email address.")
		}
	}
	return ret
}
