package domain

type AIModel struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	PromptPrice     float64 `json:"prompt_price"`     // per 1M tokens
	CompletionPrice float64 `json:"completion_price"` // per 1M tokens
	ContextLength   int     `json:"context_length"`
}

func (m *AIModel) IsFree() bool {
	return m.PromptPrice == 0 && m.CompletionPrice == 0
}
