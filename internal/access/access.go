// Package access holds the authorization kernel: the scope resolver that turns
// a principal into a district read filter and the access guard that decides
// write/ownership actions. Both dispatch on the role variant in one place so
// role rules are not scattered across call sites.
package access

import (
	"context"

	"github.com/saksham-ndma/training-service/internal/models"
)

// Action is a guarded operation on a training session.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Decision is the typed result of an authorization check. Denials always
// carry a human-readable reason, kept distinct from not-found so callers can
// map to 403 vs 404.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// ReadScope is the district filter produced for a principal. All=true matches
// every district; otherwise only DistrictIDs match. An empty non-All scope
// matches nothing (fails closed).
type ReadScope struct {
	All         bool
	DistrictIDs []uint
}

// MatchesNothing reports whether the scope can never match a record.
func (s ReadScope) MatchesNothing() bool {
	return !s.All && len(s.DistrictIDs) == 0
}

// DistrictCatalog is the snapshot of the geo hierarchy the resolver consults.
// Implementations must treat it as eventually consistent; write decisions
// never rely on it.
type DistrictCatalog interface {
	GetByState(ctx context.Context, state string) ([]*models.District, error)
	GetByName(ctx context.Context, name string) (*models.District, error)
}

// ResolveReadScope turns a principal into a district filter for reads. Pure
// apart from the catalog lookup; it is re-resolved on every request because
// role and geography assignment can change between calls.
func ResolveReadScope(ctx context.Context, principal *models.User, catalog DistrictCatalog) (ReadScope, error) {
	switch principal.Role {
	case models.RoleNDMAAdmin:
		return ReadScope{All: true}, nil

	case models.RoleSDMAAdmin:
		state := models.NormalizeGeoName(principal.HomeState)
		if state == "" {
			return ReadScope{}, nil
		}
		districts, err := catalog.GetByState(ctx, state)
		if err != nil {
			return ReadScope{}, err
		}
		ids := make([]uint, 0, len(districts))
		for _, d := range districts {
			ids = append(ids, d.ID)
		}
		// Zero districts for the state leaves the scope empty: fails closed.
		return ReadScope{DistrictIDs: ids}, nil

	case models.RoleTrainer:
		return resolveHomeDistrictScope(ctx, principal, catalog, false)

	case models.RoleVolunteer, models.RolePartnerOrg:
		// District-restricted when assigned; otherwise unrestricted reads.
		// Read-only enforcement is the guard's concern, not scoping.
		return resolveHomeDistrictScope(ctx, principal, catalog, true)

	default:
		return ReadScope{}, nil
	}
}

func resolveHomeDistrictScope(ctx context.Context, principal *models.User, catalog DistrictCatalog, openWhenUnassigned bool) (ReadScope, error) {
	name := models.NormalizeGeoName(principal.HomeDistrictName)
	if name == "" {
		if openWhenUnassigned {
			return ReadScope{All: true}, nil
		}
		return ReadScope{}, nil
	}
	district, err := catalog.GetByName(ctx, name)
	if err != nil {
		return ReadScope{}, err
	}
	if district == nil {
		// Unresolvable assignment matches nothing.
		return ReadScope{}, nil
	}
	return ReadScope{DistrictIDs: []uint{district.ID}}, nil
}

// Authorize decides whether a principal may perform an action on an existing
// training session. The session's district carries the state used for
// SDMA-admin checks; callers resolve it before asking.
func Authorize(principal *models.User, action Action, session *models.TrainingSession, district *models.District) Decision {
	switch principal.Role {
	case models.RoleNDMAAdmin:
		return Allow()

	case models.RoleSDMAAdmin:
		if district == nil {
			return Deny("session district unknown")
		}
		if models.NormalizeGeoName(district.State) == models.NormalizeGeoName(principal.HomeState) {
			return Allow()
		}
		return Deny("wrong state")

	case models.RoleTrainer:
		if session.TrainerID == principal.ID {
			return Allow()
		}
		return Deny("not owner")

	case models.RoleVolunteer, models.RolePartnerOrg:
		if action == ActionRead {
			return Allow()
		}
		return Deny("read-only role")

	default:
		return Deny("unknown role")
	}
}

// AuthorizeCreate is the creation precondition: only trainers with a home
// district that resolves to a known District may create sessions. It runs
// before any session object is constructed.
func AuthorizeCreate(ctx context.Context, principal *models.User, catalog DistrictCatalog) (*models.District, Decision, error) {
	if principal.Role != models.RoleTrainer {
		return nil, Deny("only trainers may create sessions"), nil
	}
	name := models.NormalizeGeoName(principal.HomeDistrictName)
	if name == "" {
		return nil, Deny("trainer has no assigned district"), nil
	}
	district, err := catalog.GetByName(ctx, name)
	if err != nil {
		return nil, Decision{}, err
	}
	if district == nil {
		return nil, Deny("trainer has no assigned district"), nil
	}
	return district, Allow(), nil
}
