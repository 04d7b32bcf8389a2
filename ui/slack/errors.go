package slack

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdbogen/slackin/hub"
)

// Kind identifies the family of a Slack API failure.
type Kind int

const (
	Unknown Kind = iota
	NotAuthenticated
	InvalidToken
	InactiveToken
	RateLimited
	MissingScope
	AlreadyInvited
	AlreadyInTeam
	PaidTeamsOnly
)

var kindNames = map[Kind]string{
	Unknown:          "Unknown",
	NotAuthenticated: "NotAuthenticated",
	InvalidToken:     "InvalidToken",
	InactiveToken:    "InactiveToken",
	RateLimited:      "RateLimited",
	MissingScope:     "MissingScope",
	AlreadyInvited:   "AlreadyInvited",
	AlreadyInTeam:    "AlreadyInTeam",
	PaidTeamsOnly:    "PaidTeamsOnly",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Error is a classified Slack API failure. Its message is safe to show to the person who triggered it.
type Error struct {
	Kind Kind
	// Code is the raw Slack error code, e.g. "invalid_auth".
	Code string
	// Email is the subject of an invite error, when the request carried one.
	Email string
	// RetryAfter is Slack's suggested wait for RateLimited; nil when Slack gave none.
	RetryAfter *time.Duration
	// Err is the transport failure behind an Unknown error, if any.
	Err error
}

// Sentinels for errors.Is; they match any Error of the same Kind.
var (
	ErrNotAuthenticated = &Error{Kind: NotAuthenticated}
	ErrInvalidToken     = &Error{Kind: InvalidToken}
	ErrInactiveToken    = &Error{Kind: InactiveToken}
	ErrRateLimited      = &Error{Kind: RateLimited}
	ErrMissingScope     = &Error{Kind: MissingScope}
	ErrAlreadyInvited   = &Error{Kind: AlreadyInvited}
	ErrAlreadyInTeam    = &Error{Kind: AlreadyInTeam}
	ErrPaidTeamsOnly    = &Error{Kind: PaidTeamsOnly}
	ErrUnknown          = &Error{Kind: Unknown}
)

func (e *Error) Error() string {
	switch e.Kind {
	case NotAuthenticated:
		return "Missing Slack token. Please contact an administrator."
	case InvalidToken:
		return "Invalid Slack token. Please contact an administrator."
	case InactiveToken:
		return "Slack token is inactive. Please contact an administrator."
	case RateLimited:
		if e.RetryAfter != nil {
			return fmt.Sprintf("Slack API rate limit reached; retry after %s.", *e.RetryAfter)
		}
		return "Slack API rate limit reached."
	case MissingScope:
		return "Slack token is for a non-admin user. Please contact an administrator."
	case AlreadyInvited:
		if e.Email != "" {
			return fmt.Sprintf("%s has already been invited.", e.Email)
		}
		return "That email address has already been invited."
	case AlreadyInTeam:
		if e.Email != "" {
			return fmt.Sprintf("%s is already in this team.", e.Email)
		}
		return "That email address is already in this team."
	case PaidTeamsOnly:
		return "Ultra-restricted invites are only available for paid accounts. Please contact an administrator."
	default:
		return fmt.Sprintf("Unknown error: %s", e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Classifier maps Slack error codes to Errors, announcing duplicate invites on Events.
type Classifier struct {
	Events hub.Publisher
}

// Classify returns nil for an empty code and an *Error for anything else; unrecognized codes are Unknown.
// params are the parameters of the failed request and header the headers of its response.
func (c *Classifier) Classify(code string, params url.Values, header http.Header) error {
	if code == "" {
		return nil
	}

	switch code {
	case "not_authed":
		return &Error{Kind: NotAuthenticated, Code: code}
	case "invalid_auth":
		return &Error{Kind: InvalidToken, Code: code}
	case "account_inactive":
		return &Error{Kind: InactiveToken, Code: code}
	case "ratelimited":
		return &Error{Kind: RateLimited, Code: code, RetryAfter: retryAfter(header)}
	case "missing_scope":
		return &Error{Kind: MissingScope, Code: code}
	case "already_invited":
		return c.duplicate(AlreadyInvited, EventAlreadyInvited, code, params)
	case "already_in_team":
		return c.duplicate(AlreadyInTeam, EventAlreadyInTeam, code, params)
	case "paid_teams_only":
		return &Error{Kind: PaidTeamsOnly, Code: code}
	default:
		return &Error{Kind: Unknown, Code: code}
	}
}

func (c *Classifier) duplicate(kind Kind, event hub.EventType, code string, params url.Values) error {
	email := params.Get("email")
	if email != "" && c.Events != nil {
		c.Events.Publish(&hub.Event{Type: event, Payload: InviteEvent{Email: email}})
	}
	return &Error{Kind: kind, Code: code, Email: email}
}

// retryAfter reads Retry-After as delta-seconds or, failing that, an HTTP date.
func retryAfter(header http.Header) *time.Duration {
	v := strings.TrimSpace(header.Get("Retry-After"))
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return nil
		}
		d := time.Duration(secs) * time.Second
		return &d
	}
	if at, err := http.ParseTime(v); err == nil {
		d := time.Until(at)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}
