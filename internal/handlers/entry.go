package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"devhub/internal/services"
)

// EntryHandler serves the /entries endpoints.
type EntryHandler struct {
	svc *services.CompetitionService
}

// NewEntryHandler builds an EntryHandler.
func NewEntryHandler(svc *services.CompetitionService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

type submitEntryRequest struct {
	CompetitionID int    `json:"competitionId"`
	RepoURL       string `json:"repoUrl"`
	Notes         string `json:"notes"`
}

// SubmitEntry handles POST /entries.
func (h *EntryHandler) SubmitEntry(c *gin.Context) {
	var req submitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Competition ID and repo URL are required"})
		return
	}

	entry, err := h.svc.SubmitEntry(c.Request.Context(), req.CompetitionID, c.GetInt("userID"), req.RepoURL, req.Notes)
	if err != nil {
		respondError(c, err, "Failed to submit entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListEntries handles GET /entries?competitionId=.
func (h *EntryHandler) ListEntries(c *gin.Context) {
	// a malformed id is treated like a missing one
	competitionID, _ := strconv.Atoi(c.Query("competitionId"))

	entries, err := h.svc.ListEntries(c.Request.Context(), competitionID)
	if err != nil {
		respondError(c, err, "Failed to load entries")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Vote handles PATCH /entries/:id/vote.
func (h *EntryHandler) Vote(c *gin.Context) {
	id, ok := pathID(c, "id", "entry")
	if !ok {
		return
	}
	votes, err := h.svc.CastVote(c.Request.Context(), id, c.GetInt("userID"))
	if err != nil {
		respondError(c, err, "Failed to record vote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote counted", "votes": votes})
}

// DeleteEntry handles DELETE /entries/:id.
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id, ok := pathID(c, "id", "entry")
	if !ok {
		return
	}
	if err := h.svc.DeleteEntry(c.Request.Context(), id, c.GetInt("userID")); err != nil {
		respondError(c, err, "Failed to delete entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully"})
}
