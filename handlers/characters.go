package handlers

import (
	"errors"
	"net/http"

	"character-chat/models"
	"character-chat/responder"
	"character-chat/services"
	"character-chat/storage"
	"character-chat/workflows"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles character and chat HTTP requests
type ChatHandler struct {
	store     storage.Store
	workflows *workflows.ChatWorkflows
	runner    workflows.Runner
	agent     *services.FallbackAgent
}

// NewChatHandler creates a new chat handler. runner decides whether message
// pipelines run inline or as durable workflows.
func NewChatHandler(store storage.Store, wf *workflows.ChatWorkflows, runner workflows.Runner, agent *services.FallbackAgent) *ChatHandler {
	return &ChatHandler{
		store:     store,
		workflows: wf,
		runner:    runner,
		agent:     agent,
	}
}

// ListCharacters lists all characters, newest first
func (h *ChatHandler) ListCharacters(c *gin.Context) {
	characters, err := h.store.ListCharacters(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to fetch characters", err)
		return
	}
	c.JSON(http.StatusOK, characters)
}

// GetCharacter retrieves a character by ID
func (h *ChatHandler) GetCharacter(c *gin.Context) {
	character, err := h.store.GetCharacter(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternal(c, "Failed to fetch character", err)
		return
	}
	if character == nil {
		respondNotFound(c, "Character not found")
		return
	}
	c.JSON(http.StatusOK, character)
}

// CreateCharacter validates and stores a new character
func (h *ChatHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid character data", err)
		return
	}

	character, err := h.store.CreateCharacter(c.Request.Context(), req.NewCharacter())
	if err != nil {
		var verr *storage.ValidationError
		if errors.As(err, &verr) {
			respondValidation(c, "Invalid character data", err)
			return
		}
		respondInternal(c, "Failed to create character", err)
		return
	}

	c.JSON(http.StatusCreated, character)
}

// UpdateCharacter applies a partial update
func (h *ChatHandler) UpdateCharacter(c *gin.Context) {
	var req models.UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid update data", err)
		return
	}

	character, err := h.store.UpdateCharacter(c.Request.Context(), c.Param("id"), req.CharacterUpdate())
	if err != nil {
		respondInternal(c, "Failed to update character", err)
		return
	}
	if character == nil {
		respondNotFound(c, "Character not found")
		return
	}

	c.JSON(http.StatusOK, character)
}

// DeleteCharacter deletes a character and its conversation
func (h *ChatHandler) DeleteCharacter(c *gin.Context) {
	deleted, err := h.store.DeleteCharacter(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternal(c, "Failed to delete character", err)
		return
	}
	if !deleted {
		respondNotFound(c, "Character not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Character deleted successfully"})
}

// GetCharacterCard returns the dashboard summary of a character
func (h *ChatHandler) GetCharacterCard(c *gin.Context) {
	character, err := h.store.GetCharacter(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternal(c, "Failed to fetch character", err)
		return
	}
	if character == nil {
		respondNotFound(c, "Character not found")
		return
	}
	c.JSON(http.StatusOK, responder.Card(*character))
}

// ListArchetypes lists the archetypes with their own phrase banks
func (h *ChatHandler) ListArchetypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"archetypes": responder.Archetypes()})
}
