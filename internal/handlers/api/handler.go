package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greyhelm/charkeep/internal/dice"
	"github.com/greyhelm/charkeep/internal/domain/progression"
	apperrors "github.com/greyhelm/charkeep/internal/errors"
	progressionService "github.com/greyhelm/charkeep/internal/services/progression"
)

// Handler exposes the progression service over JSON endpoints
type Handler struct {
	service progressionService.Service
	roller  dice.Roller
}

// HandlerConfig holds handler dependencies
type HandlerConfig struct {
	Service progressionService.Service
	Roller  dice.Roller
}

// NewHandler creates a new API handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg == nil {
		panic("handler config cannot be nil")
	}
	if cfg.Service == nil {
		panic("progression service cannot be nil")
	}
	if cfg.Roller == nil {
		cfg.Roller = dice.NewRandomRoller()
	}

	return &Handler{
		service: cfg.Service,
		roller:  cfg.Roller,
	}
}

// Register wires the level-up routes onto the router
func (h *Handler) Register(router gin.IRouter) {
	group := router.Group("/api/characters/:id/levelup")
	group.GET("/steps", h.GetLevelUpSteps)
	group.GET("/multiclass-options", h.GetMulticlassOptions)
	group.POST("", h.ConfirmLevelUp)
	group.POST("/multiclass", h.ConfirmMulticlassLevelUp)
	group.POST("/roll-hp", h.RollHP)
}

// GetLevelUpSteps handles GET /api/characters/:id/levelup/steps
func (h *Handler) GetLevelUpSteps(c *gin.Context) {
	output, err := h.service.GetLevelUpSteps(c.Request.Context(), &progressionService.GetLevelUpStepsInput{
		CharacterID: c.Param("id"),
		ClassKey:    c.Query("class"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	steps, err := progression.MarshalSteps(output.Steps)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"character_id":    output.CharacterID,
		"class_key":       output.ClassKey,
		"class_name":      output.ClassName,
		"new_level":       output.NewLevel,
		"new_total_level": output.NewTotalLevel,
		"steps":           steps,
	})
}

// GetMulticlassOptions handles GET /api/characters/:id/levelup/multiclass-options
func (h *Handler) GetMulticlassOptions(c *gin.Context) {
	output, err := h.service.GetMulticlassOptions(c.Request.Context(), &progressionService.GetMulticlassOptionsInput{
		CharacterID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, output)
}

type confirmLevelUpRequest struct {
	ClassKey string                   `json:"class_key"`
	NewLevel int                      `json:"new_level"`
	Choices  []progression.ChoiceData `json:"choices"`
}

// ConfirmLevelUp handles POST /api/characters/:id/levelup
func (h *Handler) ConfirmLevelUp(c *gin.Context) {
	var req confirmLevelUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	choices, err := progression.UnmarshalChoices(req.Choices)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, err := h.service.ConfirmLevelUp(c.Request.Context(), &progressionService.ConfirmLevelUpInput{
		CharacterID: c.Param("id"),
		ClassKey:    req.ClassKey,
		NewLevel:    req.NewLevel,
		Choices:     choices,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"character": output.Character,
		"result":    output.Result,
	})
}

type confirmMulticlassRequest struct {
	NewClassKey string                   `json:"new_class_key"`
	Choices     []progression.ChoiceData `json:"choices"`
}

// ConfirmMulticlassLevelUp handles POST /api/characters/:id/levelup/multiclass
func (h *Handler) ConfirmMulticlassLevelUp(c *gin.Context) {
	var req confirmMulticlassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	choices, err := progression.UnmarshalChoices(req.Choices)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, err := h.service.ConfirmMulticlassLevelUp(c.Request.Context(), &progressionService.ConfirmMulticlassLevelUpInput{
		CharacterID: c.Param("id"),
		NewClassKey: req.NewClassKey,
		Choices:     choices,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"character": output.Character,
		"result":    output.Result,
	})
}

type rollHPRequest struct {
	HitDie int `json:"hit_die"`
}

// RollHP handles POST /api/characters/:id/levelup/roll-hp. The roll
// happens here so the submitted hit-point choice is a plain value the
// validator can range-check.
func (h *Handler) RollHP(c *gin.Context) {
	var req rollHPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.HitDie < 4 || req.HitDie > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hit die must be between 4 and 12"})
		return
	}

	roll, err := h.roller.Roll(1, req.HitDie, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hit_die": req.HitDie,
		"value":   roll.Total,
	})
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var validationErr *progressionService.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":  false,
			"error":    "validation failed",
			"failures": validationErr.Failures,
		})
		return
	}

	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeInvalidArgument, apperrors.CodeInvalidLevelTransition:
		status = http.StatusBadRequest
	case apperrors.CodePrerequisiteNotMet, apperrors.CodeStructuralChoice:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeConcurrencyConflict, apperrors.CodeAlreadyApplied, apperrors.CodeAlreadyExists:
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
