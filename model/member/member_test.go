package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReal(t *testing.T) {
	type test struct {
		in     Member
		real   bool
		online bool
	}

	tests := []test{
		{Member{Id: "U1", Presence: Active}, true, true},
		{Member{Id: "U1", Presence: Away}, true, false},
		{Member{Id: "U1", Presence: Unknown}, true, false},
		{Member{Id: "U1"}, true, false},
		{Member{Id: SlackbotId, Presence: Active}, false, false},
		{Member{Id: "B1", IsBot: true, Presence: Active}, false, false},
		{Member{Id: "U2", IsDeleted: true, Presence: Active}, false, false},
		{Member{Id: "U3", IsBot: true, IsDeleted: true}, false, false},
	}

	for testN, test := range tests {
		assert.Equal(t, test.real, test.in.IsReal(), "test %d: IsReal(%+v)", testN, test.in)
		assert.Equal(t, test.online, test.in.IsOnline(), "test %d: IsOnline(%+v)", testN, test.in)
		if test.in.IsOnline() {
			assert.True(t, test.in.IsReal(), "test %d: online implies real", testN)
		}
	}
}

func TestParsePresence(t *testing.T) {
	for in, exp := range map[string]Presence{
		"active":  Active,
		"away":    Away,
		"":        Unknown,
		"ACTIVE":  Unknown,
		"dnd":     Unknown,
		"unknown": Unknown,
	} {
		assert.Equal(t, exp, ParsePresence(in), "ParsePresence(%q)", in)
	}
}

func TestReal(t *testing.T) {
	in := []Member{{Id: "U1"}, {Id: SlackbotId}, {Id: "U2", IsBot: true}, {Id: "U3"}}
	assert.Equal(t, []Member{{Id: "U1"}, {Id: "U3"}}, Real(in))
	assert.Empty(t, Real(nil))
}
