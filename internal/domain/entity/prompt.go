package entity

// Prompt is the single assembled instruction blob sent to a backend.
// Immutable once built; one per request.
type Prompt struct {
	Text string `json:"text"`
}

// Chars is the rendered length, logged because the prompt feeds a model
// with a finite context budget.
func (p Prompt) Chars() int { return len(p.Text) }

// PromptPreview is the diagnostic result of running the pipeline up to
// assembly without invoking a backend.
type PromptPreview struct {
	Prompt Prompt          `json:"prompt"`
	Report RetrievalReport `json:"retrieval"`
}
