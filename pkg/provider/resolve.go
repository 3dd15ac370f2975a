package provider

import (
	"errors"
	"fmt"

	"github.com/arnavshah/crew-planner-api/pkg/models"
	"github.com/arnavshah/crew-planner-api/pkg/planner"
	"github.com/google/uuid"
)

// Errors returned when a proposed assignment cannot be used
var (
	ErrEmptyResponse      = errors.New("empty assignment proposal")
	ErrUnknownParticipant = errors.New("unknown participant id")
	ErrDuplicatePlacement = errors.New("participant placed twice")
	ErrMissingParticipant = errors.New("participant not placed")
	ErrUnknownBoat        = errors.New("unknown boat type")
	ErrOverCapacity       = errors.New("team exceeds boat capacity")
	ErrOverInventory      = errors.New("boat used beyond inventory")
	ErrPairingViolated    = errors.New("pairing rule violated")
	ErrUnseatedGroup      = errors.New("unassigned team mixes unrelated participants")
)

// Proposal is one boat as returned by an external provider
type Proposal struct {
	BoatType  string   `json:"boat_type"`
	MemberIDs []string `json:"member_ids"`
	Warnings  []string `json:"warnings"`
}

// Resolve turns proposals into teams by looking members up in the request.
// Any proposal that breaks coverage, capacity, inventory or a hard pairing
// rule fails the whole resolution.
func Resolve(proposals []Proposal, req models.AssignRequest) ([]models.Team, error) {
	if len(proposals) == 0 && len(req.Participants) > 0 {
		return nil, ErrEmptyResponse
	}

	byID := make(map[string]models.Participant, len(req.Participants))
	for _, p := range req.Participants {
		byID[p.ID] = p
	}
	// Same catalog the engine sees: repeated or invalid definitions are dropped
	fleet := planner.New(req.BoatDefinitions, req.Inventory)
	boats := make(map[string]models.BoatDefinition, len(fleet.Boats))
	for _, b := range fleet.Boats {
		boats[b.ID] = b
	}
	clusterOf := make(map[string]string, len(req.Participants))
	for _, c := range planner.BuildClusters(req.Participants) {
		for _, m := range c.Members {
			clusterOf[m.ID] = c.ID
		}
	}

	placed := make(map[string]int)
	used := make(map[string]int)
	teams := make([]models.Team, 0, len(proposals))

	for i, prop := range proposals {
		if len(prop.MemberIDs) == 0 {
			return nil, fmt.Errorf("%w: team %d has no members", ErrEmptyResponse, i)
		}

		members := make([]models.Participant, 0, len(prop.MemberIDs))
		for _, id := range prop.MemberIDs {
			p, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
			}
			if _, dup := placed[id]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicatePlacement, id)
			}
			placed[id] = i
			members = append(members, p)
		}

		team := models.Team{
			ID:       uuid.NewString(),
			Members:  members,
			BoatType: prop.BoatType,
			Warnings: prop.Warnings,
		}

		if prop.BoatType == models.UnknownBoat {
			for _, m := range members[1:] {
				if clusterOf[m.ID] != clusterOf[members[0].ID] {
					return nil, fmt.Errorf("%w: %s and %s", ErrUnseatedGroup, members[0].ID, m.ID)
				}
			}
			team.BoatCount = 0
			if len(team.Warnings) == 0 {
				team.Warnings = []string{planner.WarnNoBoat}
			}
		} else {
			boat, ok := boats[prop.BoatType]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownBoat, prop.BoatType)
			}
			if len(members) > boat.Capacity {
				return nil, fmt.Errorf("%w: %s holds %d, got %d", ErrOverCapacity, boat.ID, boat.Capacity, len(members))
			}
			used[boat.ID]++
			if used[boat.ID] > fleet.Available(boat.ID) {
				return nil, fmt.Errorf("%w: %s", ErrOverInventory, boat.ID)
			}
			if err := checkCrew(members, clusterOf); err != nil {
				return nil, err
			}
			team.BoatCount = 1
			team.Warnings = mergeWarnings(team.Warnings, planner.TeamWarnings(members, boat))
		}
		teams = append(teams, team)
	}

	for _, p := range req.Participants {
		if _, ok := placed[p.ID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingParticipant, p.ID)
		}
	}

	if err := checkMandatory(req.Participants, placed); err != nil {
		return nil, err
	}
	return teams, nil
}

func checkMandatory(participants []models.Participant, placed map[string]int) error {
	for _, p := range participants {
		for _, other := range p.MustPairWith {
			if j, ok := placed[other]; ok && j != placed[p.ID] {
				return fmt.Errorf("%w: %s and %s must share a boat", ErrPairingViolated, p.ID, other)
			}
		}
	}
	return nil
}

// checkCrew applies forbidden pairs and MUST gender constraints between
// members of different clusters. Mandatory pairing wins inside a cluster.
func checkCrew(members []models.Participant, clusterOf map[string]string) error {
	for i, p := range members {
		for _, q := range members[i+1:] {
			if clusterOf[p.ID] == clusterOf[q.ID] {
				continue
			}
			if !planner.PairAllowed(p, q) {
				return fmt.Errorf("%w: %s and %s cannot share a boat", ErrPairingViolated, p.ID, q.ID)
			}
		}
	}
	return nil
}

func mergeWarnings(given, derived []string) []string {
	out := append([]string(nil), given...)
	for _, w := range derived {
		found := false
		for _, g := range out {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			out = append(out, w)
		}
	}
	return out
}
