package chat

import "fmt"

// Conversation is an ordered transcript. It is a value: every function that
// changes it returns a new Conversation and leaves its argument untouched.
type Conversation struct {
	Messages []Message
}

func NewConversation() Conversation {
	return Conversation{
		Messages: make([]Message, 0),
	}
}

func AddMessage(conv Conversation, msg Message) Conversation {
	messages := make([]Message, len(conv.Messages)+1)
	copy(messages, conv.Messages)
	messages[len(conv.Messages)] = msg

	return Conversation{Messages: messages}
}

// ReplaceMessage swaps the message at index for msg
func ReplaceMessage(conv Conversation, index int, msg Message) (Conversation, error) {
	if index < 0 || index >= len(conv.Messages) {
		return conv, fmt.Errorf("message index %d out of range [0,%d)", index, len(conv.Messages))
	}

	messages := GetMessages(conv)
	messages[index] = msg
	return Conversation{Messages: messages}, nil
}

// ClearRegen returns the conversation with the regen flag cleared on every message
func ClearRegen(conv Conversation) Conversation {
	messages := GetMessages(conv)
	for i := range messages {
		messages[i].Regen = false
	}
	return Conversation{Messages: messages}
}

func GetMessages(conv Conversation) []Message {
	result := make([]Message, len(conv.Messages))
	copy(result, conv.Messages)
	return result
}

func GetMessageCount(conv Conversation) int {
	return len(conv.Messages)
}

func GetMessage(conv Conversation, index int) (Message, bool) {
	if index < 0 || index >= len(conv.Messages) {
		return Message{}, false
	}
	return conv.Messages[index], true
}

func GetLastMessage(conv Conversation) (Message, bool) {
	return GetMessage(conv, len(conv.Messages)-1)
}

// NearestHumanMessage scans backward from index, inclusive, for the closest
// Human message
func NearestHumanMessage(conv Conversation, index int) (Message, bool) {
	if index >= len(conv.Messages) {
		index = len(conv.Messages) - 1
	}
	for i := index; i >= 0; i-- {
		if conv.Messages[i].IsHuman() {
			return conv.Messages[i], true
		}
	}
	return Message{}, false
}

func IsEmpty(conv Conversation) bool {
	return len(conv.Messages) == 0
}
