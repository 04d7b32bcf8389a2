package member

// SlackbotId is the fixed id of the built-in Slackbot account.
const SlackbotId = "USLACKBOT"

type Presence string

const (
	Active  Presence = "active"
	Away    Presence = "away"
	Unknown Presence = "unknown"
)

// ParsePresence maps the users.list presence field; a missing or unrecognized value is Unknown.
func ParsePresence(s string) Presence {
	switch p := Presence(s); p {
	case Active, Away:
		return p
	default:
		return Unknown
	}
}

type Member struct {
	Id        string
	IsBot     bool
	IsDeleted bool
	Presence  Presence
}

// IsReal reports whether m is a person: not Slackbot, not a bot, not deleted.
func (m Member) IsReal() bool {
	return !(m.Id == SlackbotId || m.IsBot || m.IsDeleted)
}

// IsOnline reports whether m is real and active. Unknown presence is not online.
func (m Member) IsOnline() bool {
	return m.IsReal() && m.Presence == Active
}

// Real filters members down to the real ones, preserving order.
func Real(members []Member) []Member {
	ret := make([]Member, 0, len(members))
	for _, m := range members {
		if m.IsReal() {
			ret = append(ret, m)
		}
	}
	return ret
}
