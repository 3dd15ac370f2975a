package planner

import (
	"github.com/arnavshah/crew-planner-api/pkg/models"
)

// Cluster is a group of participants joined by mandatory pairing.
// Clusters are seated or left out as a whole.
type Cluster struct {
	ID           string
	Members      []models.Participant
	HasStaff     bool
	SkipperCount int
	TotalRank    int
}

// Size returns the member count
func (c *Cluster) Size() int {
	return len(c.Members)
}

// Prefers reports whether any member asked for the given boat definition
func (c *Cluster) Prefers(boatID string) bool {
	for _, m := range c.Members {
		if m.PreferredBoatType != "" && m.PreferredBoatType == boatID {
			return true
		}
	}
	return false
}

// disjointSet is a union-find over participant indexes
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent}
}

func (d *disjointSet) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

// union keeps the smaller index as root so roots follow input order
func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
}

// BuildClusters groups participants into connected components of the
// mustPairWith graph. An edge exists if either endpoint lists the other;
// ids that are not present are ignored. Clusters are ordered by their first
// member's input position and members keep input order.
func BuildClusters(participants []models.Participant) []*Cluster {
	index := make(map[string]int, len(participants))
	for i, p := range participants {
		if _, dup := index[p.ID]; !dup {
			index[p.ID] = i
		}
	}

	ds := newDisjointSet(len(participants))
	for i, p := range participants {
		for _, other := range p.MustPairWith {
			if j, ok := index[other]; ok {
				ds.union(i, j)
			}
		}
	}

	byRoot := make(map[int]*Cluster)
	var clusters []*Cluster
	for i, p := range participants {
		root := ds.find(i)
		c, ok := byRoot[root]
		if !ok {
			c = &Cluster{ID: participants[root].ID}
			byRoot[root] = c
			clusters = append(clusters, c)
		}
		c.Members = append(c.Members, p)
		if p.Role.IsStaff() {
			c.HasStaff = true
		}
		if p.IsSkipper {
			c.SkipperCount++
		}
		c.TotalRank += p.Rank
	}
	return clusters
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// IsCompatible checks whether a cluster can join a crew without breaking a
// forbidden pairing or a MUST gender constraint, in either direction.
// Pairing preferences are not considered here.
func IsCompatible(candidate *Cluster, crew []models.Participant) bool {
	for _, p := range candidate.Members {
		for _, q := range crew {
			if !PairAllowed(p, q) {
				return false
			}
		}
	}
	return true
}

// PairAllowed reports whether two participants may share a boat. Mandatory
// pairing is not consulted; callers exempt members of the same cluster.
func PairAllowed(p, q models.Participant) bool {
	if contains(p.CannotPairWith, q.ID) || contains(q.CannotPairWith, p.ID) {
		return false
	}
	if g := p.RequiresGender(); g != "" && g != q.Gender {
		return false
	}
	if g := q.RequiresGender(); g != "" && g != p.Gender {
		return false
	}
	return true
}

// hasAffinity reports whether any member of the cluster prefers, or is
// preferred by, someone already in the crew
func hasAffinity(candidate *Cluster, crew []models.Participant) bool {
	for _, p := range candidate.Members {
		for _, q := range crew {
			if contains(p.PreferPairWith, q.ID) || contains(q.PreferPairWith, p.ID) {
				return true
			}
		}
	}
	return false
}
