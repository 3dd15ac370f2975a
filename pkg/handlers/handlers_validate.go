package handlers

import (
	"net/http"

	"github.com/arnavshah/crew-planner-api/pkg/models"
	"github.com/arnavshah/crew-planner-api/pkg/planner"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks an assignment request without running it
func (h *Handler) ValidateInput(c *gin.Context) {
	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	issues := planner.Inspect(req.Participants)

	p := planner.New(req.BoatDefinitions, req.Inventory)
	var unknownInventory []string
	known := make(map[string]bool, len(req.BoatDefinitions))
	for _, b := range req.BoatDefinitions {
		known[b.ID] = true
	}
	seats := 0
	for _, b := range p.Boats {
		if n := req.Inventory[b.ID]; n > 0 {
			seats += n * b.Capacity
		}
	}
	for id := range req.Inventory {
		if !known[id] {
			unknownInventory = append(unknownInventory, id)
		}
	}

	valid := planner.Validate(req.Participants) == nil
	resp := gin.H{
		"valid":  valid,
		"issues": issues,
		"stats": gin.H{
			"participant_count": len(req.Participants),
			"cluster_count":     len(planner.BuildClusters(req.Participants)),
			"boat_count":        len(p.Boats),
			"seats_available":   seats,
		},
	}
	if len(p.Rejected) > 0 {
		resp["ignored_boats"] = p.Rejected
	}
	if len(unknownInventory) > 0 {
		resp["unknown_inventory"] = unknownInventory
	}
	if !valid {
		resp["error"] = "participant ids must be unique"
	}
	c.JSON(http.StatusOK, resp)
}
