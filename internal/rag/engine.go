package rag

import (
	"context"
	"fmt"
	"strings"

	"pdfchat/internal/contextutil"
	"pdfchat/internal/domain"
	"pdfchat/internal/llm"
	"pdfchat/internal/storage"
	"pdfchat/internal/vectorstore"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks pdfchat/internal/rag Engine

// Engine answers questions by retrieving relevant chunks and generating a
// grounded answer.
type Engine interface {
	Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error)
}

// Embedder maps texts to fixed-dimension vectors. Defined from the engine's
// perspective (consumer-first).
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from a chat prompt.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Options configures retrieval behavior.
type Options struct {
	// Collection is the vector store collection to query.
	Collection string
	// K is the default number of chunks to retrieve.
	K int
	// SimilarityThreshold excludes retrieved chunks scoring below it.
	SimilarityThreshold float64
	// HistoryMaxTurns is the hard cap on conversation turns placed in the prompt.
	HistoryMaxTurns int
}

const noContextAnswer = "I couldn't find relevant information in the documents to answer your question. " +
	"Please try rephrasing your question or upload a relevant document."

const systemPrompt = "You are a helpful assistant that answers questions about the user's uploaded documents. " +
	"Answer using only the information from the context below. If the context doesn't contain enough " +
	"information to answer the question, say so. Cite sources when possible."

// engine implements the Engine interface.
type engine struct {
	embedder    Embedder
	generator   Generator
	vectorStore vectorstore.VectorStore
	chunkRepo   storage.ChunkStore
	docRepo     storage.DocumentStore
	opts        Options
}

// NewEngine creates a new RAG engine. All collaborators are injected; the
// engine holds no ambient globals.
func NewEngine(
	embedder Embedder,
	generator Generator,
	vectorStore vectorstore.VectorStore,
	chunkRepo storage.ChunkStore,
	docRepo storage.DocumentStore,
	opts Options,
) Engine {
	if opts.K <= 0 {
		opts.K = 5
	}
	if opts.HistoryMaxTurns <= 0 {
		opts.HistoryMaxTurns = 3
	}
	return &engine{
		embedder:    embedder,
		generator:   generator,
		vectorStore: vectorStore,
		chunkRepo:   chunkRepo,
		docRepo:     docRepo,
		opts:        opts,
	}
}

// Answer answers a question using retrieval-augmented generation. When
// nothing is indexed it fails with ErrNoDocumentsIndexed before any
// generation call is made, so the model never answers without grounding.
func (e *engine) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AnswerResponse{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	count, err := e.vectorStore.Count(ctx, e.opts.Collection)
	if err != nil {
		return AnswerResponse{}, fmt.Errorf("failed to count indexed chunks: %w", err)
	}
	if count == 0 {
		return AnswerResponse{}, domain.ErrNoDocumentsIndexed
	}

	var filter *vectorstore.Filter
	if req.DocumentID != "" {
		doc, err := e.docRepo.GetByID(ctx, req.DocumentID)
		if err == storage.ErrNotFound {
			return AnswerResponse{}, fmt.Errorf("%w: document %s", domain.ErrNotFound, req.DocumentID)
		}
		if err != nil {
			return AnswerResponse{}, fmt.Errorf("failed to load document: %w", err)
		}
		if doc.Status != storage.StatusIndexed {
			return AnswerResponse{}, fmt.Errorf("%w: document %s is %s", domain.ErrDocumentNotReady, req.DocumentID, doc.Status)
		}
		filter = &vectorstore.Filter{DocumentID: req.DocumentID}
	}

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return AnswerResponse{}, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return AnswerResponse{}, fmt.Errorf("no embedding returned for question")
	}

	k := req.K
	if k <= 0 {
		k = e.opts.K
	}
	if k > 20 {
		k = 20
	}

	results, err := e.vectorStore.Search(ctx, e.opts.Collection, embeddings[0], k, filter)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "error", err)
		return AnswerResponse{}, fmt.Errorf("failed to search vector store: %w", err)
	}

	// Results below the similarity threshold are excluded from the prompt.
	relevant := results[:0]
	for _, result := range results {
		if float64(result.Score) >= e.opts.SimilarityThreshold {
			relevant = append(relevant, result)
		}
	}

	logger.InfoContext(ctx, "retrieval completed",
		"k", k,
		"results", len(results),
		"above_threshold", len(relevant),
		"document_id", req.DocumentID,
	)

	if len(relevant) == 0 {
		return AnswerResponse{
			Answer:     noContextAnswer,
			Sources:    []domain.Source{},
			Confidence: 0,
		}, nil
	}

	sources, contextBlock, err := e.collectChunks(ctx, relevant)
	if err != nil {
		return AnswerResponse{}, err
	}

	messages := e.buildMessages(question, contextBlock, req.History)

	answer, err := e.generator.ChatWithMessages(ctx, messages, llm.ChatParams{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return AnswerResponse{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	confidence := float64(relevant[0].Score)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	logger.InfoContext(ctx, "question answered",
		"question_length", len(question),
		"sources", len(sources),
		"answer_length", len(answer),
		"confidence", confidence,
	)

	return AnswerResponse{
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence,
	}, nil
}

// collectChunks resolves retrieved point IDs to chunk texts and formats the
// tagged context block placed before the question.
func (e *engine) collectChunks(ctx context.Context, results []vectorstore.SearchResult) ([]domain.Source, string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var contextBuilder strings.Builder
	contextBuilder.WriteString("--- Context from documents ---\n\n")

	sources := make([]domain.Source, 0, len(results))
	for _, result := range results {
		chunk, err := e.chunkRepo.GetByID(ctx, result.PointID)
		if err != nil {
			logger.WarnContext(ctx, "failed to fetch chunk text", "chunk_id", result.PointID, "error", err)
			continue
		}

		filename, _ := result.Meta["filename"].(string)
		source := domain.Source{
			DocumentID: chunk.DocumentID,
			Filename:   filename,
			ChunkIndex: chunk.ChunkIndex,
			Page:       chunk.Page,
			Score:      float64(result.Score),
		}
		sources = append(sources, source)

		if chunk.Page > 0 {
			contextBuilder.WriteString(fmt.Sprintf("[Source: %s, page %d, chunk %d]\n", filename, chunk.Page, chunk.ChunkIndex))
		} else {
			contextBuilder.WriteString(fmt.Sprintf("[Source: %s, chunk %d]\n", filename, chunk.ChunkIndex))
		}
		contextBuilder.WriteString(chunk.Text)
		contextBuilder.WriteString("\n\n")
	}

	if len(sources) == 0 {
		return nil, "", fmt.Errorf("retrieved chunks could not be resolved")
	}

	contextBuilder.WriteString("--- End context ---")
	return sources, contextBuilder.String(), nil
}

// buildMessages assembles the prompt: system instruction carrying the tagged
// context block, then the trailing slice of conversation history
// (hard-capped), then the question.
func (e *engine) buildMessages(question, contextBlock string, history []domain.Message) []llm.Message {
	messages := []llm.Message{{Role: "system", Content: systemPrompt + "\n\n" + contextBlock}}

	maxMessages := e.opts.HistoryMaxTurns * 2
	start := len(history) - maxMessages
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	messages = append(messages, llm.Message{Role: domain.RoleUser, Content: question})
	return messages
}
