package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/pdbogen/slackin/model/member"
	"github.com/pdbogen/slackin/model/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	members := []member.Member{
		{Id: "U1", Presence: member.Active},
		{Id: "U2", Presence: member.Active},
		{Id: "U3", Presence: member.Away},
		{Id: "U4", Presence: member.Unknown},
		{Id: "U5", Presence: member.Away},
		{Id: member.SlackbotId, Presence: member.Active},
		{Id: "B1", IsBot: true, Presence: member.Active},
		{Id: "U6", IsDeleted: true},
	}

	m := Count(members)
	assert.Equal(t, 2, m.UsersOnline)
	assert.Equal(t, 5, m.UsersTotal)
	assert.Len(t, m.Members, 5)
	assert.True(t, m.Known())
}

func TestUnknownMembership(t *testing.T) {
	m := UnknownMembership()
	assert.Equal(t, -1, m.UsersOnline)
	assert.Equal(t, -1, m.UsersTotal)
	assert.Nil(t, m.Members)
	assert.False(t, m.Known())
}

func TestViewJSON(t *testing.T) {
	s := &Snapshot{
		Team:       team.Snapshot{Name: "Acme", IconURL: "u1"},
		Membership: Membership{UsersOnline: 2, UsersTotal: 5, Members: []member.Member{{Id: "U1"}}},
	}
	out, err := json.Marshal(s.View())
	require.NoError(t, err)
	assert.JSONEq(t, `{"team_name":"Acme","team_image":"u1","users_online":2,"users_total":5,"throttled":false}`, string(out))
}
