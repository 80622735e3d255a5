package rag

import "pdfchat/internal/domain"

// AnswerRequest represents a retrieval-augmented query.
type AnswerRequest struct {
	// Question is the user's question to answer.
	Question string
	// DocumentID optionally restricts retrieval to one document.
	DocumentID string
	// History is the prior conversation, most recent last. Only the trailing
	// turns within the configured cap are placed in the prompt.
	History []domain.Message
	// Temperature controls generation randomness.
	Temperature float64
	// MaxTokens bounds the generated answer length.
	MaxTokens int
	// K optionally overrides the configured retrieval depth.
	K int
}

// AnswerResponse represents the result of a retrieval-augmented query.
type AnswerResponse struct {
	// Answer is the generated answer text.
	Answer string
	// Sources are the chunks used to ground the answer, in retrieval order.
	Sources []domain.Source
	// Confidence is the similarity score of the top retrieved chunk, clamped
	// to [0,1]. It is a retrieval heuristic, not a calibrated probability.
	Confidence float64
}
