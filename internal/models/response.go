package models

// PromptResponse is the outcome of one grounded answering pass.
type PromptResponse struct {
	Query   string
	Content string
	Sources []string
}
