package slack

import (
	"context"
	"net/url"

	"github.com/pdbogen/slackin/hub"
	"github.com/slack-go/slack"
)

const (
	EventInviteSent     hub.EventType = "invite:sent"
	EventAlreadyInvited hub.EventType = "invite:already_invited"
	EventAlreadyInTeam  hub.EventType = "invite:already_in_team"
)

// InviteEvent is the payload of every invite:* event.
type InviteEvent struct {
	Email string
}

// InviteByEmail asks Slack to invite email to the team. invite:sent is published only on success.
func (c *Client) InviteByEmail(ctx context.Context, email string) error {
	params := url.Values{"email": {email}}
	err := c.call(ctx, "users.admin.invite", params, func(ctx context.Context, api *slack.Client) error {
		return api.InviteToTeamContext(ctx, c.cfg.Subdomain, "", "", email)
	})
	if err != nil {
		return err
	}

	c.events.Publish(&hub.Event{Type: EventInviteSent, Payload: InviteEvent{Email: email}})
	return nil
}
