package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"devhub/internal/services"
)

// CompetitionHandler serves the /competitions endpoints.
type CompetitionHandler struct {
	svc *services.CompetitionService
}

// NewCompetitionHandler builds a CompetitionHandler.
func NewCompetitionHandler(svc *services.CompetitionService) *CompetitionHandler {
	return &CompetitionHandler{svc: svc}
}

type createCompetitionRequest struct {
	Title              string     `json:"title"`
	Desc               string     `json:"desc"`
	SubmissionDeadline *time.Time `json:"submissionDeadline"`
	VotingDeadline     *time.Time `json:"votingDeadline"`
}

// CreateCompetition handles POST /competitions.
func (h *CompetitionHandler) CreateCompetition(c *gin.Context) {
	var req createCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing title and deadline."})
		return
	}

	comp, err := h.svc.CreateCompetition(c.Request.Context(), services.CreateCompetitionInput{
		Title:              req.Title,
		Description:        req.Desc,
		SubmissionDeadline: req.SubmissionDeadline,
		VotingDeadline:     req.VotingDeadline,
		CreatorID:          c.GetInt("userID"),
	})
	if err != nil {
		respondError(c, err, "Failed to create competition")
		return
	}
	c.JSON(http.StatusCreated, comp)
}

// ListCompetitions handles GET /competitions.
func (h *CompetitionHandler) ListCompetitions(c *gin.Context) {
	comps, err := h.svc.ListCompetitions(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load competitions")
		return
	}
	c.JSON(http.StatusOK, comps)
}

// GetCompetition handles GET /competitions/:id.
func (h *CompetitionHandler) GetCompetition(c *gin.Context) {
	id, ok := pathID(c, "id", "competition")
	if !ok {
		return
	}
	view, err := h.svc.GetCompetitionView(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load competition")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Leaderboard handles GET /competitions/:id/leaderboard.
func (h *CompetitionHandler) Leaderboard(c *gin.Context) {
	id, ok := pathID(c, "id", "competition")
	if !ok {
		return
	}
	entries, err := h.svc.GetLeaderboard(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load leaderboard")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Finalize handles PATCH /competitions/:id/finalize.
func (h *CompetitionHandler) Finalize(c *gin.Context) {
	id, ok := pathID(c, "id", "competition")
	if !ok {
		return
	}
	winners, err := h.svc.Finalize(c.Request.Context(), id, c.GetInt("userID"))
	if err != nil {
		respondError(c, err, "Failed to finalize competition")
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}
