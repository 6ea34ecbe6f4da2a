package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFriendshipStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    FriendshipStatus
		wantErr bool
	}{
		{"PENDING", FriendshipPending, false},
		{"Pending", FriendshipPending, false},
		{"accepted", FriendshipAccepted, false},
		{" rejected ", FriendshipRejected, false},
		{"blocked", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFriendshipStatus(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("a", "b"), PairKey("b", "a"))
	assert.Equal(t, "a:b", PairKey("b", "a"))
}

func TestFriendshipBeforeSave(t *testing.T) {
	f := &Friendship{RequesterID: "u2", AddresseeID: "u1", Status: "accepted"}
	require.NoError(t, f.BeforeSave(nil))
	assert.Equal(t, "u1:u2", f.PairKey)
	assert.Equal(t, FriendshipAccepted, f.Status)

	f = &Friendship{RequesterID: "u1", AddresseeID: "u2"}
	require.NoError(t, f.BeforeSave(nil))
	assert.Equal(t, FriendshipPending, f.Status)

	f = &Friendship{RequesterID: "u1", AddresseeID: "u1"}
	assert.ErrorIs(t, f.BeforeSave(nil), ErrSelfFriend)

	f = &Friendship{RequesterID: "u1", AddresseeID: "u2", Status: "blocked"}
	assert.ErrorIs(t, f.BeforeSave(nil), ErrUnknownStatus)
}

func TestFriendshipOther(t *testing.T) {
	f := &Friendship{RequesterID: "a", AddresseeID: "b"}
	assert.Equal(t, "b", f.Other("a"))
	assert.Equal(t, "a", f.Other("b"))
	assert.True(t, f.Involves("a"))
	assert.False(t, f.Involves("c"))
}

func TestUserSummary(t *testing.T) {
	u := User{ID: "1", Name: "Ahmad", Role: RoleUser, Class: "XII IPA 1", Email: "a@b.c"}
	s := u.Summary()
	assert.Equal(t, UserSummary{ID: "1", Name: "Ahmad", Role: RoleUser, Class: "XII IPA 1"}, s)
	assert.NotNil(t, Summaries(nil))
	assert.True(t, ValidRole(RoleInstructor))
	assert.False(t, ValidRole("guru"))
}
