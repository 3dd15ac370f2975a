package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/arnavshah/crew-planner-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// columns maps a CSV header to column positions
type columns map[string]int

func (cols columns) get(record []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (cols columns) list(record []string, name string) []string {
	raw := cols.get(record, name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (cols columns) flag(record []string, name string) bool {
	b, _ := strconv.ParseBool(cols.get(record, name))
	return b
}

func (cols columns) number(record []string, name string) int {
	n, _ := strconv.Atoi(cols.get(record, name))
	return n
}

func readCSV(fh *multipart.FileHeader, required ...string) (columns, [][]string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s header: %w", fh.Filename, err)
	}
	cols := make(columns, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("%s is missing column %q", fh.Filename, name)
		}
	}

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", fh.Filename, err)
		}
		records = append(records, record)
	}
	return cols, records, nil
}

// parseParticipants reads a participants CSV. Relation columns hold
// "|"-separated participant ids.
func parseParticipants(cols columns, records [][]string) []models.Participant {
	participants := make([]models.Participant, 0, len(records))
	for _, rec := range records {
		id := cols.get(rec, "id")
		if id == "" {
			continue
		}
		participants = append(participants, models.Participant{
			ID:                id,
			Name:              cols.get(rec, "name"),
			Role:              models.Role(strings.ToUpper(cols.get(rec, "role"))),
			Rank:              cols.number(rec, "rank"),
			Gender:            strings.ToUpper(cols.get(rec, "gender")),
			IsSkipper:         cols.flag(rec, "is_skipper"),
			PreferredBoatType: cols.get(rec, "preferred_boat_type"),
			GenderConstraint: models.GenderConstraint{
				Type:     strings.ToUpper(cols.get(rec, "gender_constraint_type")),
				Strength: strings.ToUpper(cols.get(rec, "gender_constraint_strength")),
			},
			MustPairWith:   cols.list(rec, "must_pair_with"),
			PreferPairWith: cols.list(rec, "prefer_pair_with"),
			CannotPairWith: cols.list(rec, "cannot_pair_with"),
		})
	}
	return participants
}

// parseBoats reads a boats CSV with an "available" column for today's inventory
func parseBoats(cols columns, records [][]string) ([]models.BoatDefinition, models.BoatInventory) {
	var defs []models.BoatDefinition
	inv := make(models.BoatInventory)
	for _, rec := range records {
		id := cols.get(rec, "id")
		if id == "" {
			continue
		}
		defs = append(defs, models.BoatDefinition{
			ID:          id,
			Label:       cols.get(rec, "label"),
			Capacity:    cols.number(rec, "capacity"),
			IsStable:    cols.flag(rec, "is_stable"),
			MinSkippers: cols.number(rec, "min_skippers"),
		})
		inv[id] = cols.number(rec, "available")
	}
	return defs, inv
}

// AssignCSV handles CSV uploads: participants_file and an optional boats_file
func (h *Handler) AssignCSV(c *gin.Context) {
	participantsFile, _ := c.FormFile("participants_file")
	boatsFile, _ := c.FormFile("boats_file")

	if participantsFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "participants_file is required"})
		return
	}

	cols, records, err := readCSV(participantsFile, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := models.AssignRequest{Participants: parseParticipants(cols, records)}

	if boatsFile != nil {
		bCols, bRecords, err := readCSV(boatsFile, "id", "capacity")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.BoatDefinitions, req.Inventory = parseBoats(bCols, bRecords)
	}

	resp, ok := h.assign(c, req)
	if !ok {
		return
	}

	var out strings.Builder
	w := csv.NewWriter(&out)
	w.Write([]string{"team_id", "boat_type", "participant_id", "participant_name", "role", "warnings"})
	for _, team := range resp.Teams {
		for _, m := range team.Members {
			w.Write([]string{
				team.ID,
				team.BoatType,
				m.ID,
				m.Name,
				string(m.Role),
				strings.Join(team.Warnings, "|"),
			})
		}
	}
	w.Flush()

	c.JSON(http.StatusOK, gin.H{
		"csv":            out.String(),
		"strategy":       resp.Strategy,
		"unassigned_ids": resp.UnassignedIDs,
	})
}
