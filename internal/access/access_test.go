package access

import (
	"context"
	"testing"

	"github.com/saksham-ndma/training-service/internal/models"
)

// fakeCatalog is an in-memory DistrictCatalog for tests
type fakeCatalog struct {
	districts []*models.District
}

func (f *fakeCatalog) GetByState(ctx context.Context, state string) ([]*models.District, error) {
	var out []*models.District
	for _, d := range f.districts {
		if d.State == state {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetByName(ctx context.Context, name string) (*models.District, error) {
	for _, d := range f.districts {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{districts: []*models.District{
		{ID: 1, Name: "kamrup", State: "assam"},
		{ID: 2, Name: "cachar", State: "assam"},
		{ID: 3, Name: "patna", State: "bihar"},
	}}
}

func TestResolveReadScope(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()

	tests := []struct {
		name        string
		principal   *models.User
		wantAll     bool
		wantIDs     []uint
		wantNothing bool
	}{
		{
			name:      "national admin sees everything",
			principal: &models.User{ID: "u1", Role: models.RoleNDMAAdmin},
			wantAll:   true,
		},
		{
			name:      "state admin scoped to state districts",
			principal: &models.User{ID: "u2", Role: models.RoleSDMAAdmin, HomeState: "assam"},
			wantIDs:   []uint{1, 2},
		},
		{
			name:        "state admin with unknown state matches nothing",
			principal:   &models.User{ID: "u3", Role: models.RoleSDMAAdmin, HomeState: "kerala"},
			wantNothing: true,
		},
		{
			name:        "state admin without state matches nothing",
			principal:   &models.User{ID: "u4", Role: models.RoleSDMAAdmin},
			wantNothing: true,
		},
		{
			name:      "trainer scoped to home district",
			principal: &models.User{ID: "u5", Role: models.RoleTrainer, HomeDistrictName: "kamrup"},
			wantIDs:   []uint{1},
		},
		{
			name:        "trainer without district matches nothing",
			principal:   &models.User{ID: "u6", Role: models.RoleTrainer},
			wantNothing: true,
		},
		{
			name:      "volunteer with district is restricted to it",
			principal: &models.User{ID: "u7", Role: models.RoleVolunteer, HomeDistrictName: "patna"},
			wantIDs:   []uint{3},
		},
		{
			name:      "unassigned volunteer reads everything",
			principal: &models.User{ID: "u8", Role: models.RoleVolunteer},
			wantAll:   true,
		},
		{
			name:        "volunteer with unresolvable district matches nothing",
			principal:   &models.User{ID: "u9", Role: models.RoleVolunteer, HomeDistrictName: "nowhere"},
			wantNothing: true,
		},
		{
			name:      "unassigned partner org reads everything",
			principal: &models.User{ID: "u10", Role: models.RolePartnerOrg},
			wantAll:   true,
		},
		{
			name:        "unknown role matches nothing",
			principal:   &models.User{ID: "u11", Role: models.UserRole("intruder")},
			wantNothing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := ResolveReadScope(ctx, tt.principal, catalog)
			if err != nil {
				t.Fatalf("ResolveReadScope failed: %v", err)
			}
			if scope.All != tt.wantAll {
				t.Errorf("All = %v, want %v", scope.All, tt.wantAll)
			}
			if scope.MatchesNothing() != tt.wantNothing {
				t.Errorf("MatchesNothing = %v, want %v", scope.MatchesNothing(), tt.wantNothing)
			}
			if len(tt.wantIDs) > 0 {
				if len(scope.DistrictIDs) != len(tt.wantIDs) {
					t.Fatalf("DistrictIDs = %v, want %v", scope.DistrictIDs, tt.wantIDs)
				}
				for i, id := range tt.wantIDs {
					if scope.DistrictIDs[i] != id {
						t.Errorf("DistrictIDs[%d] = %d, want %d", i, scope.DistrictIDs[i], id)
					}
				}
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	session := &models.TrainingSession{ID: 10, TrainerID: "trainer-1", DistrictID: 1}
	assamDistrict := &models.District{ID: 1, Name: "kamrup", State: "assam"}

	tests := []struct {
		name       string
		principal  *models.User
		action     Action
		district   *models.District
		wantAllow  bool
		wantReason string
	}{
		{
			name:      "national admin may do anything",
			principal: &models.User{ID: "a1", Role: models.RoleNDMAAdmin},
			action:    ActionDelete,
			district:  assamDistrict,
			wantAllow: true,
		},
		{
			name:      "state admin in same state",
			principal: &models.User{ID: "a2", Role: models.RoleSDMAAdmin, HomeState: "assam"},
			action:    ActionUpdate,
			district:  assamDistrict,
			wantAllow: true,
		},
		{
			name:       "state admin in other state denied",
			principal:  &models.User{ID: "a3", Role: models.RoleSDMAAdmin, HomeState: "bihar"},
			action:     ActionUpdate,
			district:   assamDistrict,
			wantReason: "wrong state",
		},
		{
			name:       "state admin without district context denied",
			principal:  &models.User{ID: "a4", Role: models.RoleSDMAAdmin, HomeState: "assam"},
			action:     ActionUpdate,
			district:   nil,
			wantReason: "session district unknown",
		},
		{
			name:      "owning trainer may update",
			principal: &models.User{ID: "trainer-1", Role: models.RoleTrainer},
			action:    ActionUpdate,
			district:  assamDistrict,
			wantAllow: true,
		},
		{
			name:       "other trainer denied even reads",
			principal:  &models.User{ID: "trainer-2", Role: models.RoleTrainer},
			action:     ActionRead,
			district:   assamDistrict,
			wantReason: "not owner",
		},
		{
			name:      "volunteer may read",
			principal: &models.User{ID: "v1", Role: models.RoleVolunteer},
			action:    ActionRead,
			district:  assamDistrict,
			wantAllow: true,
		},
		{
			name:       "volunteer may not update",
			principal:  &models.User{ID: "v1", Role: models.RoleVolunteer},
			action:     ActionUpdate,
			district:   assamDistrict,
			wantReason: "read-only role",
		},
		{
			name:       "partner org may not delete",
			principal:  &models.User{ID: "p1", Role: models.RolePartnerOrg},
			action:     ActionDelete,
			district:   assamDistrict,
			wantReason: "read-only role",
		},
		{
			name:       "unknown role denied",
			principal:  &models.User{ID: "x1", Role: models.UserRole("mystery")},
			action:     ActionRead,
			district:   assamDistrict,
			wantReason: "unknown role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Authorize(tt.principal, tt.action, session, tt.district)
			if decision.Allowed != tt.wantAllow {
				t.Errorf("Allowed = %v, want %v (reason %q)", decision.Allowed, tt.wantAllow, decision.Reason)
			}
			if !tt.wantAllow && decision.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", decision.Reason, tt.wantReason)
			}
		})
	}
}

func TestAuthorizeCreate(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()

	t.Run("trainer with resolvable district", func(t *testing.T) {
		principal := &models.User{ID: "t1", Role: models.RoleTrainer, HomeDistrictName: "kamrup"}
		district, decision, err := AuthorizeCreate(ctx, principal, catalog)
		if err != nil {
			t.Fatalf("AuthorizeCreate failed: %v", err)
		}
		if !decision.Allowed {
			t.Fatalf("expected allow, got %q", decision.Reason)
		}
		if district == nil || district.ID != 1 {
			t.Errorf("district = %+v, want kamrup (id 1)", district)
		}
	})

	t.Run("admin may not create", func(t *testing.T) {
		principal := &models.User{ID: "a1", Role: models.RoleNDMAAdmin}
		_, decision, err := AuthorizeCreate(ctx, principal, catalog)
		if err != nil {
			t.Fatalf("AuthorizeCreate failed: %v", err)
		}
		if decision.Allowed {
			t.Error("only trainers may create sessions")
		}
	})

	t.Run("trainer without district denied", func(t *testing.T) {
		principal := &models.User{ID: "t2", Role: models.RoleTrainer}
		_, decision, err := AuthorizeCreate(ctx, principal, catalog)
		if err != nil {
			t.Fatalf("AuthorizeCreate failed: %v", err)
		}
		if decision.Allowed {
			t.Error("trainer without a district must be denied")
		}
	})

	t.Run("trainer with unresolvable district denied", func(t *testing.T) {
		principal := &models.User{ID: "t3", Role: models.RoleTrainer, HomeDistrictName: "atlantis"}
		_, decision, err := AuthorizeCreate(ctx, principal, catalog)
		if err != nil {
			t.Fatalf("AuthorizeCreate failed: %v", err)
		}
		if decision.Allowed {
			t.Error("unresolvable district must be denied")
		}
	})
}
