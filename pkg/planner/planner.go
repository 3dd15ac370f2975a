package planner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/arnavshah/crew-planner-api/pkg/models"
	"github.com/google/uuid"
)

// ErrDuplicateParticipant is returned when two participants share an id
var ErrDuplicateParticipant = errors.New("duplicate participant id")

// Option configures a Planner
type Option func(*Planner)

// WithIDGenerator overrides how team ids are generated
func WithIDGenerator(gen func() string) Option {
	return func(p *Planner) {
		p.newID = gen
	}
}

// Planner seats participants into a fleet of boats.
// A Planner is read-only after New and may be shared between goroutines.
type Planner struct {
	// Boats holds the valid definitions in catalog order
	Boats []models.BoatDefinition
	// Rejected holds definitions excluded for a capacity below 1 or a repeated id
	Rejected []models.BoatDefinition

	inventory models.BoatInventory
	newID     func() string
}

// New creates a planner for a boat catalog and the boats available today.
// Negative inventory counts are treated as zero and counts for unknown
// definitions are ignored.
func New(defs []models.BoatDefinition, inventory models.BoatInventory, opts ...Option) *Planner {
	p := &Planner{
		inventory: make(models.BoatInventory),
		newID:     uuid.NewString,
	}

	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if def.Capacity < 1 || def.ID == "" || seen[def.ID] {
			p.Rejected = append(p.Rejected, def)
			continue
		}
		seen[def.ID] = true
		if def.MinSkippers < 0 {
			def.MinSkippers = 0
		}
		p.Boats = append(p.Boats, def)
		if n := inventory[def.ID]; n > 0 {
			p.inventory[def.ID] = n
		}
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available returns how many boats of a valid definition may be used
func (p *Planner) Available(boatID string) int {
	return p.inventory[boatID]
}

// Assign is a shorthand for New(defs, inventory).Assign(participants)
func Assign(participants []models.Participant, inventory models.BoatInventory, defs []models.BoatDefinition) ([]models.Team, error) {
	return New(defs, inventory).Assign(participants)
}

// Assign seats every participant exactly once. Participants who cannot be
// seated come back as UNKNOWN teams; the only error is a repeated id.
func (p *Planner) Assign(participants []models.Participant) ([]models.Team, error) {
	if err := Validate(participants); err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return []models.Team{}, nil
	}

	r := p.newRun(participants)
	r.fillMultiSeat()
	r.fillSingleSeat()
	r.fillFallback()
	r.resolveLeftovers()
	return r.teams, nil
}

// Validate rejects participant lists that repeat an id
func Validate(participants []models.Participant) error {
	seen := make(map[string]bool, len(participants))
	for _, pt := range participants {
		if seen[pt.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, pt.ID)
		}
		seen[pt.ID] = true
	}
	return nil
}

// run is the working state of a single Assign call
type run struct {
	planner    *Planner
	stock      map[string]int
	clusters   []*Cluster
	captains   []*Cluster
	passengers []*Cluster
	seated     map[*Cluster]bool
	teams      []models.Team
}

func (p *Planner) newRun(participants []models.Participant) *run {
	r := &run{
		planner:  p,
		stock:    make(map[string]int, len(p.inventory)),
		clusters: BuildClusters(participants),
		seated:   make(map[*Cluster]bool),
	}
	for id, n := range p.inventory {
		r.stock[id] = n
	}

	for _, c := range r.clusters {
		if c.HasStaff {
			r.captains = append(r.captains, c)
		} else {
			r.passengers = append(r.passengers, c)
		}
	}
	// Most experienced leadership seeds first, weakest passengers are matched first
	sort.SliceStable(r.captains, func(i, j int) bool {
		return r.captains[i].TotalRank > r.captains[j].TotalRank
	})
	sort.SliceStable(r.passengers, func(i, j int) bool {
		return r.passengers[i].TotalRank < r.passengers[j].TotalRank
	})
	return r
}

// orderedBoats returns the boats matching keep, largest first. Among equal
// capacities unstable boats come first so stable ones stay available.
func (r *run) orderedBoats(keep func(models.BoatDefinition) bool) []models.BoatDefinition {
	var boats []models.BoatDefinition
	for _, b := range r.planner.Boats {
		if keep(b) {
			boats = append(boats, b)
		}
	}
	sort.SliceStable(boats, func(i, j int) bool {
		if boats[i].Capacity != boats[j].Capacity {
			return boats[i].Capacity > boats[j].Capacity
		}
		return !boats[i].IsStable && boats[j].IsStable
	})
	return boats
}

// remaining returns unseated captains followed by unseated passengers
func (r *run) remaining() []*Cluster {
	var pool []*Cluster
	for _, c := range r.captains {
		if !r.seated[c] {
			pool = append(pool, c)
		}
	}
	for _, c := range r.passengers {
		if !r.seated[c] {
			pool = append(pool, c)
		}
	}
	return pool
}

func (r *run) first(pool []*Cluster, match func(*Cluster) bool) *Cluster {
	for _, c := range pool {
		if !r.seated[c] && match(c) {
			return c
		}
	}
	return nil
}

func (r *run) fillMultiSeat() {
	boats := r.orderedBoats(func(b models.BoatDefinition) bool { return b.Capacity > 1 })
	for _, boat := range boats {
		for r.stock[boat.ID] > 0 {
			seed := r.pickSeed(r.captains, boat)
			if seed == nil {
				break
			}
			crew := r.fill(seed, boat, r.passengers, r.captains)
			r.emit(boat, crew)
		}
	}
}

func (r *run) fillSingleSeat() {
	boats := r.orderedBoats(func(b models.BoatDefinition) bool { return b.Capacity == 1 })
	for _, boat := range boats {
		for r.stock[boat.ID] > 0 {
			pool := r.remaining()
			single := func(c *Cluster) bool { return c.Size() == 1 }
			c := r.first(pool, func(c *Cluster) bool { return single(c) && c.Prefers(boat.ID) })
			if c == nil {
				c = r.first(pool, single)
			}
			if c == nil {
				break
			}
			r.seated[c] = true
			r.emit(boat, c.Members)
		}
	}
}

// fillFallback seats whatever is left into any boat still in stock,
// without distinguishing captains from passengers
func (r *run) fillFallback() {
	boats := r.orderedBoats(func(b models.BoatDefinition) bool { return r.stock[b.ID] > 0 })
	for _, boat := range boats {
		for r.stock[boat.ID] > 0 {
			pool := r.remaining()
			seed := r.pickSeed(pool, boat)
			if seed == nil {
				break
			}
			crew := r.fill(seed, boat, pool, nil)
			r.emit(boat, crew)
		}
	}
}

// pickSeed selects the cluster that opens a boat
func (r *run) pickSeed(pool []*Cluster, boat models.BoatDefinition) *Cluster {
	fits := func(c *Cluster) bool { return c.Size() <= boat.Capacity }

	if boat.MinSkippers > 0 {
		if c := r.first(pool, func(c *Cluster) bool {
			return fits(c) && c.SkipperCount > 0 && c.Prefers(boat.ID)
		}); c != nil {
			return c
		}
		if c := r.first(pool, func(c *Cluster) bool {
			return fits(c) && c.SkipperCount > 0
		}); c != nil {
			return c
		}
	}
	if c := r.first(pool, func(c *Cluster) bool {
		return fits(c) && c.Prefers(boat.ID)
	}); c != nil {
		return c
	}
	return r.first(pool, fits)
}

// fill seats the seed and keeps admitting clusters until the boat is full
// or nothing admissible is left. primary is searched before secondary.
func (r *run) fill(seed *Cluster, boat models.BoatDefinition, primary, secondary []*Cluster) []models.Participant {
	crew := append([]models.Participant(nil), seed.Members...)
	r.seated[seed] = true

	for len(crew) < boat.Capacity {
		next := r.nextCluster(crew, boat, primary, secondary)
		if next == nil {
			break
		}
		r.seated[next] = true
		crew = append(crew, next.Members...)
	}
	return crew
}

func (r *run) nextCluster(crew []models.Participant, boat models.BoatDefinition, primary, secondary []*Cluster) *Cluster {
	room := boat.Capacity - len(crew)
	admissible := func(c *Cluster) bool {
		return c.Size() <= room && IsCompatible(c, crew)
	}

	if c := r.first(primary, func(c *Cluster) bool {
		return admissible(c) && hasAffinity(c, crew)
	}); c != nil {
		return c
	}
	if c := r.first(primary, admissible); c != nil {
		return c
	}
	if countSkippers(crew) < boat.MinSkippers {
		if c := r.first(secondary, func(c *Cluster) bool {
			return admissible(c) && c.SkipperCount > 0
		}); c != nil {
			return c
		}
	}
	return r.first(secondary, admissible)
}

func countSkippers(crew []models.Participant) int {
	n := 0
	for _, m := range crew {
		if m.IsSkipper {
			n++
		}
	}
	return n
}

func (r *run) emit(boat models.BoatDefinition, crew []models.Participant) {
	r.stock[boat.ID]--
	r.teams = append(r.teams, models.Team{
		ID:        r.planner.newID(),
		Members:   crew,
		BoatType:  boat.ID,
		BoatCount: 1,
		Warnings:  TeamWarnings(crew, boat),
	})
}

// resolveLeftovers turns every unseated cluster into an UNKNOWN team.
// Mandatory partners stay together.
func (r *run) resolveLeftovers() {
	for _, c := range r.clusters {
		if r.seated[c] {
			continue
		}
		r.seated[c] = true
		r.teams = append(r.teams, models.Team{
			ID:        r.planner.newID(),
			Members:   append([]models.Participant(nil), c.Members...),
			BoatType:  models.UnknownBoat,
			BoatCount: 0,
			Warnings:  []string{WarnNoBoat},
		})
	}
}
