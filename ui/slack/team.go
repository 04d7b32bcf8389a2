package slack

import (
	"context"

	"github.com/pdbogen/slackin/model/team"
	"github.com/slack-go/slack"
)

// iconSize is the team.info icon variant shown on the page.
const iconSize = "image_132"

func (c *Client) GetTeam(ctx context.Context) (team.Snapshot, error) {
	var info *slack.TeamInfo
	err := c.call(ctx, "team.info", nil, func(ctx context.Context, api *slack.Client) (err error) {
		info, err = api.GetTeamInfoContext(ctx)
		return err
	})
	if err != nil {
		return team.Snapshot{}, err
	}

	icon, _ := info.Icon[iconSize].(string)
	return team.Snapshot{Name: info.Name, IconURL: icon}, nil
}
