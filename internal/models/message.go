package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. Only assistant turns carry
// sources.
type Message struct {
	Role    string
	Content string
	Sources []string
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func NewAssistantMessage(content string, sources []string) Message {
	return Message{Role: RoleAssistant, Content: content, Sources: sources}
}
