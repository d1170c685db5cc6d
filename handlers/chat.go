package handlers

import (
	"errors"
	"net/http"
	"strings"

	"character-chat/models"
	"character-chat/workflows"

	"github.com/gin-gonic/gin"
)

// GetConversation returns the character's conversation, creating an empty one on first access
func (h *ChatHandler) GetConversation(c *gin.Context) {
	conv, err := h.workflows.Conversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternal(c, "Failed to fetch conversation", err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// AddMessage appends a message to the character's conversation
func (h *ChatHandler) AddMessage(c *gin.Context) {
	var req models.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Message content and sender are required", err)
		return
	}

	conv, err := h.runner.AppendMessage(c.Request.Context(), workflows.AppendMessageInput{
		CharacterID: c.Param("id"),
		Sender:      models.ParseSender(req.Sender),
		Content:     req.Content,
	})
	if err != nil {
		respondInternal(c, "Failed to add message", err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

// Chat stores the user's message and answers as the character
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Message content is required", err)
		return
	}

	// Verify character exists
	id := c.Param("id")
	character, err := h.store.GetCharacter(c.Request.Context(), id)
	if err != nil {
		respondInternal(c, "Failed to fetch character", err)
		return
	}
	if character == nil {
		respondNotFound(c, "Character not found")
		return
	}

	output, err := h.runner.ChatTurn(c.Request.Context(), workflows.ChatTurnInput{
		CharacterID: id,
		Content:     req.Content,
	})
	if errors.Is(err, workflows.ErrCharacterNotFound) {
		respondNotFound(c, "Character not found")
		return
	}
	if err != nil {
		respondInternal(c, "Failed to generate reply", err)
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		UserMessage:      output.UserMessage,
		CharacterMessage: output.CharacterMessage,
		Conversation:     output.Conversation,
	})
}

// CreatorMessage forwards one turn of the guided creation flow to the agent
func (h *ChatHandler) CreatorMessage(c *gin.Context) {
	var req models.CreatorMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Message is required", err)
		return
	}

	reply := h.agent.Reply(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, models.CreatorResponse{
		Reply:    reply,
		Complete: strings.Contains(strings.ToLower(reply), "character created"),
	})
}
