package workflows

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"character-chat/models"
	"character-chat/responder"
	"character-chat/storage"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
)

// TimestampLayout renders message timestamps as ISO-8601 with milliseconds in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	// ErrCharacterNotFound is returned by a chat turn for an unknown character
	ErrCharacterNotFound = errors.New("character not found")
	// ErrConversationGone is returned when a conversation disappears between read and write
	ErrConversationGone = errors.New("conversation no longer exists")
)

// Runner executes the message pipelines
type Runner interface {
	AppendMessage(ctx context.Context, input AppendMessageInput) (models.Conversation, error)
	ChatTurn(ctx context.Context, input ChatTurnInput) (ChatTurnOutput, error)
}

// ChatWorkflows contains the message pipelines. Called directly they run inline;
// registered with DBOS they run as durable workflows.
type ChatWorkflows struct {
	store    storage.Store
	selector *responder.Selector
	now      func() time.Time
}

// NewChatWorkflows creates a new ChatWorkflows instance
func NewChatWorkflows(store storage.Store, selector *responder.Selector) *ChatWorkflows {
	return &ChatWorkflows{
		store:    store,
		selector: selector,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for message ids and timestamps
func (w *ChatWorkflows) WithClock(now func() time.Time) *ChatWorkflows {
	w.now = now
	return w
}

// AppendMessageInput contains the input for the AppendMessage workflow
type AppendMessageInput struct {
	CharacterID string
	Sender      models.Sender
	Content     string
}

// ChatTurnInput contains the input for the ChatTurn workflow
type ChatTurnInput struct {
	CharacterID string
	Content     string
}

// ChatTurnOutput contains the output of the ChatTurn workflow
type ChatTurnOutput struct {
	UserMessage      models.Message
	CharacterMessage models.Message
	Conversation     models.Conversation
}

type appendResult struct {
	Message      models.Message
	Conversation models.Conversation
}

// runStep runs fn as a durable step inside a DBOS workflow and inline everywhere else.
func runStep[R any](ctx context.Context, fn func(context.Context) (R, error)) (R, error) {
	if dbosCtx, ok := ctx.(dbos.DBOSContext); ok {
		return dbos.RunAsStep(dbosCtx, fn)
	}
	return fn(ctx)
}

// AppendMessage adds one message to the character's conversation, creating it first if needed
func (w *ChatWorkflows) AppendMessage(ctx context.Context, input AppendMessageInput) (models.Conversation, error) {
	res, err := runStep(ctx, func(stepCtx context.Context) (appendResult, error) {
		return w.appendMessage(stepCtx, input.CharacterID, input.Sender, input.Content)
	})
	if err != nil {
		return models.Conversation{}, err
	}
	return res.Conversation, nil
}

// AppendMessageWorkflow is the durable form of AppendMessage
func (w *ChatWorkflows) AppendMessageWorkflow(ctx dbos.DBOSContext, input AppendMessageInput) (models.Conversation, error) {
	return w.AppendMessage(ctx, input)
}

// ChatTurn stores the user's message, picks the character's reply and stores it too.
// Each stage is a durable step, so a resumed workflow replays the recorded reply.
func (w *ChatWorkflows) ChatTurn(ctx context.Context, input ChatTurnInput) (ChatTurnOutput, error) {
	var output ChatTurnOutput

	// Step 1: Load the character
	character, err := runStep(ctx, func(stepCtx context.Context) (models.Character, error) {
		c, err := w.store.GetCharacter(stepCtx, input.CharacterID)
		if err != nil {
			return models.Character{}, err
		}
		if c == nil {
			return models.Character{}, ErrCharacterNotFound
		}
		return *c, nil
	})
	if err != nil {
		return output, err
	}

	// Step 2: Save the user message
	user, err := runStep(ctx, func(stepCtx context.Context) (appendResult, error) {
		return w.appendMessage(stepCtx, input.CharacterID, models.SenderUser, input.Content)
	})
	if err != nil {
		return output, err
	}
	output.UserMessage = user.Message

	// Step 3: Pick the reply from the history before this turn
	history := user.Conversation.Messages[:len(user.Conversation.Messages)-1]
	reply, err := runStep(ctx, func(context.Context) (string, error) {
		return w.selector.Reply(character, input.Content, history), nil
	})
	if err != nil {
		return output, err
	}

	// Step 4: Save the character message
	answer, err := runStep(ctx, func(stepCtx context.Context) (appendResult, error) {
		return w.appendMessage(stepCtx, input.CharacterID, models.SenderCharacter, reply)
	})
	if err != nil {
		return output, err
	}
	output.CharacterMessage = answer.Message
	output.Conversation = answer.Conversation

	return output, nil
}

// ChatTurnWorkflow is the durable form of ChatTurn
func (w *ChatWorkflows) ChatTurnWorkflow(ctx dbos.DBOSContext, input ChatTurnInput) (ChatTurnOutput, error) {
	return w.ChatTurn(ctx, input)
}

// Conversation returns the character's conversation, creating an empty one if none exists
func (w *ChatWorkflows) Conversation(ctx context.Context, characterID string) (models.Conversation, error) {
	conv, err := w.store.GetConversation(ctx, characterID)
	if err != nil {
		return models.Conversation{}, err
	}
	if conv != nil {
		return *conv, nil
	}
	return w.store.CreateConversation(ctx, models.NewConversation{
		CharacterID: characterID,
		Messages:    []models.Message{},
	})
}

// appendMessage adds one message to the character's conversation. The store builds it
// under its own lock, so concurrent appends never overwrite each other.
func (w *ChatWorkflows) appendMessage(ctx context.Context, characterID string, sender models.Sender, content string) (appendResult, error) {
	conv, err := w.Conversation(ctx, characterID)
	if err != nil {
		return appendResult{}, err
	}

	var msg models.Message
	updated, err := w.store.AppendMessage(ctx, conv.ID, func(existing []models.Message) models.Message {
		msg = w.newMessage(existing, sender, content)
		return msg
	})
	if err != nil {
		return appendResult{}, err
	}
	if updated == nil {
		return appendResult{}, fmt.Errorf("append to %s: %w", conv.ID, ErrConversationGone)
	}
	return appendResult{Message: msg, Conversation: *updated}, nil
}

// newMessage stamps a message with a millisecond id that stays ahead of the previous one.
func (w *ChatWorkflows) newMessage(existing []models.Message, sender models.Sender, content string) models.Message {
	now := w.now().UTC()
	id := now.UnixMilli()
	if n := len(existing); n > 0 {
		if last, err := strconv.ParseInt(existing[n-1].ID, 10, 64); err == nil && last >= id {
			id = last + 1
		}
	}
	return models.Message{
		ID:        strconv.FormatInt(id, 10),
		Sender:    models.ParseSender(string(sender)),
		Content:   content,
		Timestamp: now.Format(TimestampLayout),
	}
}

// Register registers the workflows with DBOS. It must run before dbos.Launch.
func (w *ChatWorkflows) Register(dbosCtx dbos.DBOSContext) {
	dbos.RegisterWorkflow(dbosCtx, w.AppendMessageWorkflow)
	dbos.RegisterWorkflow(dbosCtx, w.ChatTurnWorkflow)
}

// DurableRunner runs the pipelines as DBOS workflows
type DurableRunner struct {
	dbosCtx   dbos.DBOSContext
	workflows *ChatWorkflows
}

// NewDurableRunner creates a runner over registered workflows
func NewDurableRunner(dbosCtx dbos.DBOSContext, wf *ChatWorkflows) *DurableRunner {
	return &DurableRunner{dbosCtx: dbosCtx, workflows: wf}
}

func (r *DurableRunner) AppendMessage(_ context.Context, input AppendMessageInput) (models.Conversation, error) {
	handle, err := dbos.RunWorkflow(r.dbosCtx, r.workflows.AppendMessageWorkflow, input)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to start AppendMessage workflow: %w", err)
	}
	return handle.GetResult()
}

func (r *DurableRunner) ChatTurn(_ context.Context, input ChatTurnInput) (ChatTurnOutput, error) {
	handle, err := dbos.RunWorkflow(r.dbosCtx, r.workflows.ChatTurnWorkflow, input)
	if err != nil {
		return ChatTurnOutput{}, fmt.Errorf("failed to start ChatTurn workflow: %w", err)
	}
	return handle.GetResult()
}
