// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package ai provides the inference engine behind chats, summaries, and
embeddings.

# Providers

No external provider is wired yet. Every operation returns a deterministic
placeholder and logs a warning, so the API surface, persistence, and clients
can be built and exercised before an OpenAI or Anthropic key is configured.
*/
package ai

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
)

// PlaceholderReply is returned for every chat completion until a provider
// API key is configured.
const PlaceholderReply = "AI chat functionality requires API key configuration. Please configure OPENAI_API_KEY or ANTHROPIC_API_KEY in your environment variables."

const (
	// DefaultChatModel is reported on placeholder chat completions.
	DefaultChatModel = "gpt-4"
	// DefaultEmbeddingModel is reported on placeholder embeddings.
	DefaultEmbeddingModel = "text-embedding-ada-002"
	// EmbeddingDimensions matches the OpenAI ada-002 vector size.
	EmbeddingDimensions = 1536
	// DefaultSummaryLength caps placeholder summaries.
	DefaultSummaryLength = 200
	// summaryKeyPoints is the number of leading sentences promoted to key points.
	summaryKeyPoints = 3
)

// # Message Types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether r is a known message role.
func (r MessageRole) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatMessage is a single conversational turn fed to the engine.
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// # Request / Response Types

// ChatRequest asks for a completion over a message history.
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Model       string        `json:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"maxTokens,omitempty"`
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// ChatResponse is the engine's answer to a [ChatRequest].
type ChatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// EmbeddingRequest asks for vector embeddings over one or more texts.
type EmbeddingRequest struct {
	Texts []string `json:"text"`
	Model string   `json:"model,omitempty"`
}

// EmbeddingResponse carries one vector per input text.
type EmbeddingResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions"`
}

// SummarizeRequest asks for a summary of a block of text.
type SummarizeRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"maxLength,omitempty"`
}

// SummarizeResponse carries a summary and the leading key points.
type SummarizeResponse struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// # Engine

// Engine implements placeholder inference.
type Engine struct {
	logger *slog.Logger
}

// NewEngine constructs an [Engine].
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

/*
Chat generates a completion for a message history.

Description: Until a provider is configured the reply is [PlaceholderReply]
with zero token usage.

Parameters:
  - context: context.Context
  - request: ChatRequest

Returns:
  - *ChatResponse: Completion
  - error: Always nil for the placeholder engine
*/
func (engine *Engine) Chat(_ context.Context, request ChatRequest) (*ChatResponse, error) {
	engine.logger.Warn("ai_placeholder_chat",
		slog.Int("message_count", len(request.Messages)),
	)

	model := request.Model
	if model == "" {
		model = DefaultChatModel
	}

	return &ChatResponse{
		Content: PlaceholderReply,
		Model:   model,
	}, nil
}

/*
Embed generates vector embeddings for the given texts.

Description: Placeholder vectors are uniformly random in [-1, 1).

Parameters:
  - context: context.Context
  - request: EmbeddingRequest

Returns:
  - *EmbeddingResponse: One vector per input text
  - error: Always nil for the placeholder engine
*/
func (engine *Engine) Embed(_ context.Context, request EmbeddingRequest) (*EmbeddingResponse, error) {
	engine.logger.Warn("ai_placeholder_embedding",
		slog.Int("text_count", len(request.Texts)),
	)

	model := request.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	embeddings := make([][]float64, len(request.Texts))
	for i := range request.Texts {
		embeddings[i] = placeholderEmbedding(EmbeddingDimensions)
	}

	return &EmbeddingResponse{
		Embeddings: embeddings,
		Model:      model,
		Dimensions: EmbeddingDimensions,
	}, nil
}

/*
Summarize produces a summary and key points for a block of text.

Description: The placeholder summary is a prefix of the text; key points are
its leading sentences.

Parameters:
  - context: context.Context
  - request: SummarizeRequest

Returns:
  - *SummarizeResponse: Summary and key points
  - error: Always nil for the placeholder engine
*/
func (engine *Engine) Summarize(_ context.Context, request SummarizeRequest) (*SummarizeResponse, error) {
	engine.logger.Warn("ai_placeholder_summarize",
		slog.Int("text_length", len(request.Text)),
	)

	maxLength := request.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}

	summary := request.Text
	if len(summary) > maxLength {
		summary = summary[:maxLength]
	}

	keyPoints := []string{}
	for _, sentence := range strings.FieldsFunc(request.Text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		clean := strings.TrimSpace(sentence)
		if clean == "" {
			continue
		}
		keyPoints = append(keyPoints, clean)
		if len(keyPoints) == summaryKeyPoints {
			break
		}
	}

	return &SummarizeResponse{
		Summary:   summary,
		KeyPoints: keyPoints,
	}, nil
}

func placeholderEmbedding(dimensions int) []float64 {
	vector := make([]float64, dimensions)
	for i := range vector {
		vector[i] = rand.Float64()*2 - 1
	}
	return vector
}
