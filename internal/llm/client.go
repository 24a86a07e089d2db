package llm

import "context"

// Message roles as used in chat completion requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn. Messages are value types and are never
// mutated after construction.
type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the completion collaborator. Implementations must be safe for
// concurrent use; every call is a suspension point and honors ctx.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
