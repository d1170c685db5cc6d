package services

import (
	"context"
	"strings"
	"time"

	"github.com/mudler/xlog"
)

// FallbackReply is shown whenever the agent cannot produce an answer.
const FallbackReply = "Sorry, I didn't understand that."

// AgentClient sends one user utterance to an external agent and returns its reply
type AgentClient interface {
	Send(ctx context.Context, text string) (string, error)
}

// FallbackAgent bounds every agent call with a timeout and turns failures into FallbackReply
type FallbackAgent struct {
	client  AgentClient
	timeout time.Duration
}

// NewFallbackAgent wraps client. A nil client always answers with FallbackReply.
func NewFallbackAgent(client AgentClient, timeout time.Duration) *FallbackAgent {
	return &FallbackAgent{
		client:  client,
		timeout: timeout,
	}
}

// Enabled reports whether an agent is configured
func (a *FallbackAgent) Enabled() bool {
	return a.client != nil
}

// Reply asks the agent and never fails
func (a *FallbackAgent) Reply(ctx context.Context, text string) string {
	if a.client == nil {
		return FallbackReply
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	reply, err := a.client.Send(ctx, text)
	if err != nil {
		xlog.Warn("Agent call failed, using fallback reply", "error", err)
		return FallbackReply
	}
	if strings.TrimSpace(reply) == "" {
		xlog.Warn("Agent returned an empty reply, using fallback reply")
		return FallbackReply
	}
	return reply
}
