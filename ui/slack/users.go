package slack

import (
	"context"

	"github.com/pdbogen/slackin/model/member"
	"github.com/slack-go/slack"
)

const usersPageSize = 200

// GetMembers lists every member with presence. Unlike slack-go's GetUsersContext it does not sleep on a rate
// limit; throttling is returned to the caller as ErrRateLimited.
func (c *Client) GetMembers(ctx context.Context) ([]member.Member, error) {
	var users []slack.User
	err := c.call(ctx, "users.list", nil, func(ctx context.Context, api *slack.Client) (err error) {
		p := api.GetUsersPaginated(slack.GetUsersOptionPresence(true), slack.GetUsersOptionLimit(usersPageSize))
		for err == nil {
			p, err = p.Next(ctx)
			if err == nil {
				users = append(users, p.Users...)
			}
		}
		return p.Failure(err)
	})
	if err != nil {
		return nil, err
	}

	members := make([]member.Member, 0, len(users))
	for _, u := range users {
		members = append(members, member.Member{
			Id:        u.ID,
			IsBot:     u.IsBot,
			IsDeleted: u.Deleted,
			Presence:  member.ParsePresence(u.Presence),
		})
	}
	return members, nil
}
