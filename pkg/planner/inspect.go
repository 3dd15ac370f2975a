package planner

import (
	"fmt"

	"github.com/arnavshah/crew-planner-api/pkg/models"
)

// Issue kinds reported by Inspect
const (
	IssueDuplicateID   = "duplicate_id"
	IssueDanglingRef   = "dangling_reference"
	IssueSelfRef       = "self_reference"
	IssueMustAndCannot = "must_and_cannot"
	IssueRankRange     = "rank_out_of_range"
)

// Issue is a problem found in a participant list. None of them stop Assign
// except IssueDuplicateID.
type Issue struct {
	Kind          string `json:"kind"`
	ParticipantID string `json:"participant_id"`
	OtherID       string `json:"other_id,omitempty"`
	Message       string `json:"message"`
}

// Inspect reports input problems that Assign silently tolerates.
// A pair linked by both mustPairWith and cannotPairWith is seated together.
func Inspect(participants []models.Participant) []Issue {
	var issues []Issue

	present := make(map[string]models.Participant, len(participants))
	for _, p := range participants {
		if _, dup := present[p.ID]; dup {
			issues = append(issues, Issue{
				Kind:          IssueDuplicateID,
				ParticipantID: p.ID,
				Message:       fmt.Sprintf("participant %s appears more than once", p.ID),
			})
			continue
		}
		present[p.ID] = p
	}

	reported := make(map[[2]string]bool)
	for _, p := range participants {
		if p.Rank < 1 || p.Rank > 5 {
			issues = append(issues, Issue{
				Kind:          IssueRankRange,
				ParticipantID: p.ID,
				Message:       fmt.Sprintf("rank %d is outside 1-5", p.Rank),
			})
		}

		lists := map[string][]string{
			"must_pair_with":   p.MustPairWith,
			"prefer_pair_with": p.PreferPairWith,
			"cannot_pair_with": p.CannotPairWith,
		}
		for _, field := range []string{"must_pair_with", "prefer_pair_with", "cannot_pair_with"} {
			for _, other := range lists[field] {
				if other == p.ID {
					issues = append(issues, Issue{
						Kind:          IssueSelfRef,
						ParticipantID: p.ID,
						Message:       fmt.Sprintf("%s lists the participant itself", field),
					})
					continue
				}
				if _, ok := present[other]; !ok {
					issues = append(issues, Issue{
						Kind:          IssueDanglingRef,
						ParticipantID: p.ID,
						OtherID:       other,
						Message:       fmt.Sprintf("%s references %s who is not present", field, other),
					})
				}
			}
		}

		for _, other := range p.MustPairWith {
			q, ok := present[other]
			if !ok || other == p.ID {
				continue
			}
			if !contains(p.CannotPairWith, other) && !contains(q.CannotPairWith, p.ID) {
				continue
			}
			key := [2]string{p.ID, other}
			if other < p.ID {
				key = [2]string{other, p.ID}
			}
			if reported[key] {
				continue
			}
			reported[key] = true
			issues = append(issues, Issue{
				Kind:          IssueMustAndCannot,
				ParticipantID: key[0],
				OtherID:       key[1],
				Message:       "pair is both mandatory and forbidden; mandatory pairing wins",
			})
		}
	}
	return issues
}
