package models

// Role is the club role of a participant
type Role string

const (
	RoleInstructor Role = "INSTRUCTOR"
	RoleVolunteer  Role = "VOLUNTEER"
	RoleMember     Role = "MEMBER"
	RoleGuest      Role = "GUEST"
)

// IsStaff reports whether the role counts as leadership on a boat
func (r Role) IsStaff() bool {
	return r == RoleInstructor || r == RoleVolunteer
}

// Gender constraint strengths
const (
	StrengthNone   = "NONE"
	StrengthPrefer = "PREFER"
	StrengthMust   = "MUST"
)

// GenderConstraint restricts who a participant may share a boat with.
// Type is NONE, MALE or FEMALE.
type GenderConstraint struct {
	Type     string `json:"type"`
	Strength string `json:"strength"`
}

// Participant is a club member present for a session
type Participant struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Role              Role             `json:"role"`
	Rank              int              `json:"rank"`
	Gender            string           `json:"gender,omitempty"`
	IsSkipper         bool             `json:"is_skipper"`
	PreferredBoatType string           `json:"preferred_boat_type,omitempty"`
	GenderConstraint  GenderConstraint `json:"gender_constraint"`
	MustPairWith      []string         `json:"must_pair_with,omitempty"`
	PreferPairWith    []string         `json:"prefer_pair_with,omitempty"`
	CannotPairWith    []string         `json:"cannot_pair_with,omitempty"`
}

// RequiresGender returns the gender every boat mate must have, or "" when unconstrained
func (p Participant) RequiresGender() string {
	if p.GenderConstraint.Strength != StrengthMust {
		return ""
	}
	if p.GenderConstraint.Type == "" || p.GenderConstraint.Type == "NONE" {
		return ""
	}
	return p.GenderConstraint.Type
}

// BoatDefinition is an entry of the boat catalog
type BoatDefinition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Capacity    int    `json:"capacity"`
	IsStable    bool   `json:"is_stable"`
	MinSkippers int    `json:"min_skippers"`
}

// BoatInventory maps a boat definition id to the number of boats available
type BoatInventory map[string]int

// UnknownBoat marks a team that could not be seated in any boat
const UnknownBoat = "UNKNOWN"

// Team is one boat instance with its crew, or an unseated leftover
type Team struct {
	ID        string        `json:"id"`
	Members   []Participant `json:"members"`
	BoatType  string        `json:"boat_type"`
	BoatCount int           `json:"boat_count"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// AssignRequest is the data structure for the assignment endpoint
type AssignRequest struct {
	Participants    []Participant    `json:"participants"`
	Inventory       BoatInventory    `json:"inventory,omitempty"`
	BoatDefinitions []BoatDefinition `json:"boat_definitions,omitempty"`
}

// AssignResponse is the data structure for the assignment result
type AssignResponse struct {
	Teams          []Team           `json:"teams"`
	Strategy       string           `json:"strategy"`
	UnassignedIDs  []string         `json:"unassigned_ids"`
	BoatsUsed      map[string]int   `json:"boats_used"`
	IgnoredBoats   []BoatDefinition `json:"ignored_boats,omitempty"`
	WarningCount   int              `json:"warning_count"`
	TeamsWithIssue int              `json:"teams_with_issue"`
}
