package botx

import "context"

// Handler handles requests.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// Response is a message to send to a chat.
type Response struct {
	ChatID string
	Text   string
	// DisablePreview disables link previews in the message.
	DisablePreview bool
}

// Request is a message received from a chat.
type Request struct {
	Chat Chat
	Text string
}

// Chat contains chat information.
type Chat struct {
	ID       string
	Username string
}

// NotFound is a default handler for not found commands.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{{
		ChatID: req.Chat.ID,
		Text:   "command not found",
	}}, nil
}
