package domain

// Action is the closed set of gated operations. Reads on catalog, review and
// comment resources are open to everyone (Anonymous included) and never pass
// through the gate.
type Action int

const (
	// ActionManageAccounts covers admin account CRUD and role changes.
	ActionManageAccounts Action = iota
	// ActionWriteCatalog covers create/update/delete of categories, genres
	// and titles.
	ActionWriteCatalog
	// ActionCreateContent covers posting a new review or comment.
	ActionCreateContent
	// ActionModifyContent covers update/delete of an existing review or
	// comment; ownership is consulted.
	ActionModifyContent
)

// Authorize decides whether the principal may perform action. ownerID is the
// author of the target resource and is only consulted for ActionModifyContent.
//
// A denial is ErrUnauthenticated for anonymous callers and ErrForbidden for
// authenticated callers lacking the privilege, so the transport can answer
// 401 vs 403 correctly.
func Authorize(p Principal, action Action, ownerID string) error {
	tier := p.Tier()

	switch action {
	case ActionManageAccounts, ActionWriteCatalog:
		if tier >= TierAdmin {
			return nil
		}
	case ActionCreateContent:
		if tier >= TierUser {
			return nil
		}
	case ActionModifyContent:
		if tier >= TierModerator {
			return nil
		}
		if tier >= TierUser && ownerID != "" && p.ID() == ownerID {
			return nil
		}
	}

	if tier == TierAnonymous {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
