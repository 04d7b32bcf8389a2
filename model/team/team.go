package team

// A Snapshot is the team's display identity as read from one team.info call.
type Snapshot struct {
	Name    string `json:"team_name"`
	IconURL string `json:"team_image"`
}

// Placeholder stands in for the team when Slack throttled the read; it carries a name but no icon.
func Placeholder(name string) Snapshot {
	return Snapshot{Name: name}
}
