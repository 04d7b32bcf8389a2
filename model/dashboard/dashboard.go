package dashboard

import (
	"time"

	"github.com/pdbogen/slackin/model/member"
	"github.com/pdbogen/slackin/model/team"
)

// Unknown is the count reported while Slack is throttling users.list.
const Unknown = -1

type Membership struct {
	UsersOnline int             `json:"users_online"`
	UsersTotal  int             `json:"users_total"`
	Members     []member.Member `json:"-"`
}

// Count builds a Membership from a raw users.list result.
func Count(members []member.Member) Membership {
	people := member.Real(members)
	online := 0
	for _, m := range people {
		if m.IsOnline() {
			online++
		}
	}
	return Membership{UsersOnline: online, UsersTotal: len(people), Members: people}
}

// UnknownMembership is the placeholder used when users.list was throttled.
func UnknownMembership() Membership {
	return Membership{UsersOnline: Unknown, UsersTotal: Unknown}
}

func (m Membership) Known() bool {
	return m.UsersOnline != Unknown && m.UsersTotal != Unknown
}

// A Snapshot is what the widget shows. It is built whole on every refresh and must not be modified once
// handed out, since every concurrent request shares the same value.
type Snapshot struct {
	Team       team.Snapshot
	Membership Membership
	Throttled  bool
	FetchedAt  time.Time
}

// View is the flat JSON shape served to embedding pages and the live feed.
type View struct {
	team.Snapshot
	Membership
	Throttled bool `json:"throttled"`
}

func (s *Snapshot) View() View {
	return View{Snapshot: s.Team, Membership: s.Membership, Throttled: s.Throttled}
}
