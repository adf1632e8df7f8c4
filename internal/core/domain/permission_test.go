package domain

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		account *Account
		want    Tier
	}{
		{"nil account", nil, TierAnonymous},
		{"plain user", &Account{Role: RoleUser}, TierUser},
		{"moderator", &Account{Role: RoleModerator}, TierModerator},
		{"admin role", &Account{Role: RoleAdmin}, TierAdmin},
		{"staff flag outranks role", &Account{Role: RoleUser, IsStaff: true}, TierAdmin},
		{"superuser flag outranks role", &Account{Role: RoleUser, IsSuper: true}, TierAdmin},
		{"staff moderator", &Account{Role: RoleModerator, IsStaff: true}, TierAdmin},
		{"unknown role falls back to user", &Account{Role: Role("ghost")}, TierUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.account); got != tc.want {
				t.Fatalf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTierOrdering(t *testing.T) {
	if !(TierAnonymous < TierUser && TierUser < TierModerator && TierModerator < TierAdmin) {
		t.Fatalf("tier ordering broken: %d %d %d %d", TierAnonymous, TierUser, TierModerator, TierAdmin)
	}
}

func TestAuthorize_AdminActions(t *testing.T) {
	admin := Principal{Account: &Account{ID: "a1", Role: RoleAdmin}}
	moderator := Principal{Account: &Account{ID: "m1", Role: RoleModerator}}
	user := Principal{Account: &Account{ID: "u1", Role: RoleUser}}

	for _, action := range []Action{ActionManageAccounts, ActionWriteCatalog} {
		if err := Authorize(admin, action, ""); err != nil {
			t.Fatalf("admin denied action %v: %v", action, err)
		}
		if err := Authorize(moderator, action, ""); err != ErrForbidden {
			t.Fatalf("moderator on action %v: got %v, want ErrForbidden", action, err)
		}
		if err := Authorize(user, action, ""); err != ErrForbidden {
			t.Fatalf("user on action %v: got %v, want ErrForbidden", action, err)
		}
		if err := Authorize(Anonymous, action, ""); err != ErrUnauthenticated {
			t.Fatalf("anonymous on action %v: got %v, want ErrUnauthenticated", action, err)
		}
	}
}

func TestAuthorize_CreateContent(t *testing.T) {
	user := Principal{Account: &Account{ID: "u1", Role: RoleUser}}
	if err := Authorize(user, ActionCreateContent, ""); err != nil {
		t.Fatalf("user denied content creation: %v", err)
	}
	if err := Authorize(Anonymous, ActionCreateContent, ""); err != ErrUnauthenticated {
		t.Fatalf("anonymous: got %v, want ErrUnauthenticated", err)
	}
}

func TestAuthorize_ModifyContent_Ownership(t *testing.T) {
	owner := Principal{Account: &Account{ID: "u1", Role: RoleUser}}
	other := Principal{Account: &Account{ID: "u2", Role: RoleUser}}
	moderator := Principal{Account: &Account{ID: "m1", Role: RoleModerator}}

	if err := Authorize(owner, ActionModifyContent, "u1"); err != nil {
		t.Fatalf("owner denied edit of own content: %v", err)
	}
	if err := Authorize(other, ActionModifyContent, "u1"); err != ErrForbidden {
		t.Fatalf("non-owner user: got %v, want ErrForbidden", err)
	}
	if err := Authorize(moderator, ActionModifyContent, "u1"); err != nil {
		t.Fatalf("moderator denied edit of someone else's content: %v", err)
	}
	if err := Authorize(Anonymous, ActionModifyContent, "u1"); err != ErrUnauthenticated {
		t.Fatalf("anonymous: got %v, want ErrUnauthenticated", err)
	}
}

func TestPrincipalHelpers(t *testing.T) {
	if Anonymous.Tier() != TierAnonymous {
		t.Fatalf("anonymous tier: %v", Anonymous.Tier())
	}
	if Anonymous.ID() != "" {
		t.Fatalf("anonymous id: %q", Anonymous.ID())
	}
	p := Principal{Account: &Account{ID: "u1", Role: RoleModerator}}
	if p.Tier() != TierModerator || p.ID() != "u1" {
		t.Fatalf("principal helpers: tier=%v id=%q", p.Tier(), p.ID())
	}
}
