package invite

import (
	"context"
	"errors"
	"testing"

	"github.com/pdbogen/slackin/model/user"
	"github.com/pdbogen/slackin/ui/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type inviter struct {
	mock.Mock
}

func (i *inviter) InviteByEmail(ctx context.Context, email string) error {
	return i.Called(email).Error(0)
}

func newService(t *testing.T, loginRequired bool) (*Service, *inviter) {
	t.Helper()
	inv := &inviter{}
	s, err := New(inv, loginRequired)
	require.NoError(t, err)
	return s, inv
}

func TestSubmitSuccess(t *testing.T) {
	s, inv := newService(t, false)
	inv.On("InviteByEmail", "a@b.com").Return(nil).Once()

	res := s.Submit(context.Background(), Form{Email: "  a@b.com "}, nil)
	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "a@b.com", res.Form.Email)
	inv.AssertExpectations(t)
}

func TestSubmitInvalidEmail(t *testing.T) {
	type test struct {
		in  string
		msg string
	}

	tests := []test{
		{"", "Please enter your email address."},
		{"   ", "Please enter your email address."},
		{"not-an-email", "Enter a valid email address."},
		{"a@", "Enter a valid email address."},
	}

	for testN, test := range tests {
		s, inv := newService(t, false)
		res := s.Submit(context.Background(), Form{Email: test.in}, nil)
		assert.False(t, res.Success, "test %d", testN)
		assert.Equal(t, []string{test.msg}, res.Errors, "test %d", testN)
		inv.AssertNotCalled(t, "InviteByEmail", mock.Anything)
	}
}

func TestSubmitAlreadyInvited(t *testing.T) {
	s, inv := newService(t, false)
	inv.On("InviteByEmail", "a@b.com").
		Return(&slack.Error{Kind: slack.AlreadyInvited, Code: "already_invited", Email: "a@b.com"})

	var res Result
	require.NotPanics(t, func() {
		res = s.Submit(context.Background(), Form{Email: "a@b.com"}, nil)
	})
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "a@b.com has already been invited.", res.Errors[0])
}

func TestSubmitSurfacesSlackErrorsVerbatim(t *testing.T) {
	for _, e := range []*slack.Error{
		{Kind: slack.AlreadyInTeam, Code: "already_in_team", Email: "a@b.com"},
		{Kind: slack.PaidTeamsOnly, Code: "paid_teams_only"},
		{Kind: slack.MissingScope, Code: "missing_scope"},
		{Kind: slack.Unknown, Code: "user_disabled"},
	} {
		s, inv := newService(t, false)
		inv.On("InviteByEmail", "a@b.com").Return(e)
		res := s.Submit(context.Background(), Form{Email: "a@b.com"}, nil)
		assert.Equal(t, []string{e.Error()}, res.Errors, e.Code)
	}
}

func TestSubmitForeignError(t *testing.T) {
	s, inv := newService(t, false)
	inv.On("InviteByEmail", "a@b.com").Return(errors.New("boom"))
	res := s.Submit(context.Background(), Form{Email: "a@b.com"}, nil)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"The invite could not be sent. Please try again later."}, res.Errors)
}

func TestSubmitLoginRequired(t *testing.T) {
	viewer := &user.User{Email: "Me@Example.com"}

	s, inv := newService(t, true)
	res := s.Submit(context.Background(), Form{Email: "else@example.com"}, viewer)
	assert.Equal(t, []string{"Please use the email address of your account, Me@Example.com."}, res.Errors)

	res = s.Submit(context.Background(), Form{Email: "me@example.com"}, nil)
	assert.Equal(t, []string{"Please log in to request an invite."}, res.Errors)
	inv.AssertNotCalled(t, "InviteByEmail", mock.Anything)

	inv.On("InviteByEmail", "me@example.com").Return(nil)
	res = s.Submit(context.Background(), Form{Email: "me@example.com"}, viewer)
	assert.True(t, res.Success)
}

func TestInitial(t *testing.T) {
	s, _ := newService(t, false)
	assert.Equal(t, Form{}, s.Initial(nil))
	assert.Equal(t, Form{Email: "me@example.com"}, s.Initial(&user.User{Email: "me@example.com"}))
}
