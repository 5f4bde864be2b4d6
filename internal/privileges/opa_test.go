package privileges

import (
	"context"
	"testing"

	userdomain "github.com/NaderBhrr/NodeBB/internal/users/domain"
)

// mockUsers implements UserLookup for tests.
type mockUsers struct {
	users map[int64]*userdomain.User
}

func (m *mockUsers) GetByUID(ctx context.Context, uid int64) (*userdomain.User, error) {
	return m.users[uid], nil
}

// mockModerators implements the moderator repository for tests.
type mockModerators struct {
	moderates map[int64]bool
}

func (m *mockModerators) IsModeratorOfAny(ctx context.Context, uid int64) (bool, error) {
	return m.moderates[uid], nil
}

func (m *mockModerators) ModeratedCategories(ctx context.Context, uid int64) ([]int64, error) {
	return nil, nil
}

func (m *mockModerators) AddModerator(ctx context.Context, uid, cid int64) error {
	m.moderates[uid] = true
	return nil
}

func newTestEvaluator() *OPAEvaluator {
	users := &mockUsers{users: map[int64]*userdomain.User{
		1: {UID: 1, Username: "admin", IsAdmin: true},
		2: {UID: 2, Username: "globalmod", IsGlobalMod: true},
		3: {UID: 3, Username: "regular"},
		4: {UID: 4, Username: "banned", Banned: true},
	}}
	mods := &mockModerators{moderates: map[int64]bool{2: true}}
	return NewOPAEvaluator(users, mods)
}

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := newTestEvaluator()
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_IsAdmin(t *testing.T) {
	e := newTestEvaluator()
	ctx := context.Background()

	admin, err := e.IsAdmin(ctx, 1)
	if err != nil {
		t.Fatalf("IsAdmin(1): %v", err)
	}
	if !admin {
		t.Error("IsAdmin(1) = false, want true")
	}

	admin, err = e.IsAdmin(ctx, 3)
	if err != nil {
		t.Fatalf("IsAdmin(3): %v", err)
	}
	if admin {
		t.Error("IsAdmin(3) = true, want false")
	}
}

func TestOPAEvaluator_CanEdit(t *testing.T) {
	e := newTestEvaluator()
	ctx := context.Background()

	cases := []struct {
		name   string
		caller int64
		target int64
		want   bool
	}{
		{"admin edits anyone", 1, 3, true},
		{"self edit", 3, 3, true},
		{"banned self edit denied", 4, 4, false},
		{"global mod edits regular", 2, 3, true},
		{"global mod cannot edit admin", 2, 1, false},
		{"regular cannot edit other", 3, 2, false},
		{"unknown caller denied", 99, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.CanEdit(ctx, tc.caller, tc.target)
			if err != nil {
				t.Fatalf("CanEdit(%d, %d): %v", tc.caller, tc.target, err)
			}
			if got != tc.want {
				t.Errorf("CanEdit(%d, %d) = %v, want %v", tc.caller, tc.target, got, tc.want)
			}
		})
	}
}

func TestOPAEvaluator_ModeratesAny(t *testing.T) {
	e := newTestEvaluator()
	ctx := context.Background()

	ok, err := e.ModeratesAny(ctx, 2)
	if err != nil {
		t.Fatalf("ModeratesAny(2): %v", err)
	}
	if !ok {
		t.Error("ModeratesAny(2) = false, want true")
	}

	ok, err = e.ModeratesAny(ctx, 3)
	if err != nil {
		t.Fatalf("ModeratesAny(3): %v", err)
	}
	if ok {
		t.Error("ModeratesAny(3) = true, want false")
	}
}
