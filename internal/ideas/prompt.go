package ideas

import "fmt"

// Language selects the system prompt.
type Language string

const (
	English    Language = "en"
	Indonesian Language = "id"
)

// PromptInput is one request for an idea.
type PromptInput struct {
	UserInput string
	Language  Language
	// Context is optional text placed before the user's input.
	Context string
}

func (l Language) validate() error {
	switch l {
	case "", English, Indonesian:
		return nil
	}
	return fmt.Errorf("unsupported language %q (want en or id)", string(l))
}

func (l Language) systemPrompt() string {
	if l == Indonesian {
		return "Anda adalah asisten AI yang membantu dan memberikan jawaban yang bermakna."
	}
	return "You are a helpful AI assistant that provides thoughtful responses."
}

func (in PromptInput) userMessage() string {
	if in.Context == "" {
		return in.UserInput
	}
	return in.Context + "\n" + in.UserInput
}
