package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAI, RoleSystem:
		return true
	default:
		return false
	}
}

// ChatMessage is one utterance in a conversation. Values are never mutated
// after construction; pass them by value.
type ChatMessage struct {
	Time time.Time
	Role Role
	Text string
}

func NewUserMessage(text string, at time.Time) ChatMessage {
	return ChatMessage{Time: at, Role: RoleUser, Text: text}
}

func NewAIReply(text string, at time.Time) ChatMessage {
	return ChatMessage{Time: at, Role: RoleAI, Text: text}
}

func NewSystemMessage(text string, at time.Time) ChatMessage {
	return ChatMessage{Time: at, Role: RoleSystem, Text: text}
}

// Dialog is one completed turn. Stores persist both messages or neither.
type Dialog struct {
	UserMessage ChatMessage
	AIReply     ChatMessage
}

// NewDialog pairs a user message with the reply it produced.
func NewDialog(userMessage, aiReply ChatMessage) (Dialog, error) {
	if userMessage.Role != RoleUser {
		return Dialog{}, fmt.Errorf("%w: dialog user message has role %q", ErrInvalidInput, userMessage.Role)
	}
	if aiReply.Role != RoleAI {
		return Dialog{}, fmt.Errorf("%w: dialog reply has role %q", ErrInvalidInput, aiReply.Role)
	}
	return Dialog{UserMessage: userMessage, AIReply: aiReply}, nil
}

// Messages returns the dialog in persistence order.
func (d Dialog) Messages() []ChatMessage {
	return []ChatMessage{d.UserMessage, d.AIReply}
}
