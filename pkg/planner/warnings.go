package planner

import "github.com/arnavshah/crew-planner-api/pkg/models"

// Warning messages attached to teams
const (
	WarnNoStaff         = "team without a staff member"
	WarnLoneRower       = "lone rower in multi-seat boat"
	WarnNoviceUnstable  = "novice solo in unstable boat"
	WarnMissingSkippers = "missing required skipper(s)"
	WarnNoBoat          = "no boat available (or relational conflict)"
)

// noviceRank is the highest rank still considered a novice
const noviceRank = 2

// TeamWarnings derives the diagnostic flags for a crew seated in a boat.
// It returns nil when nothing is wrong.
func TeamWarnings(members []models.Participant, boat models.BoatDefinition) []string {
	var warnings []string

	hasStaff := false
	skippers := 0
	for _, m := range members {
		if m.Role.IsStaff() {
			hasStaff = true
		}
		if m.IsSkipper {
			skippers++
		}
	}

	if boat.Capacity > 1 && !hasStaff {
		warnings = append(warnings, WarnNoStaff)
	}
	if boat.Capacity > 1 && len(members) == 1 {
		warnings = append(warnings, WarnLoneRower)
	}
	if len(members) == 1 {
		solo := members[0]
		if solo.Rank <= noviceRank && !solo.Role.IsStaff() && !boat.IsStable {
			warnings = append(warnings, WarnNoviceUnstable)
		}
	}
	if boat.MinSkippers > 0 && skippers < boat.MinSkippers {
		warnings = append(warnings, WarnMissingSkippers)
	}
	return warnings
}
