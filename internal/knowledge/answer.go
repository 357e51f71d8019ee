package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesafina/mesafina/internal/llm"
)

// Answerer composes policy search results into grounded answers for guests.
type Answerer struct {
	kb       *KB
	provider llm.Provider
	model    string
}

// NewAnswerer creates an Answerer over the given knowledge base and provider.
func NewAnswerer(kb *KB, provider llm.Provider, model string) *Answerer {
	return &Answerer{kb: kb, provider: provider, model: model}
}

const answerSystemPrompt = `You are a restaurant reservation assistant. Answer the guest's question using only the policy excerpts provided. If the excerpts do not cover the question, say you will check with the team and do not invent policy details. Keep answers to two or three sentences.`

// Answer searches the restaurant's policies and asks the LLM to compose a
// grounded reply. Returns the answer and the excerpts it was grounded on.
func (a *Answerer) Answer(ctx context.Context, restaurantID, question string) (string, []SearchResult, error) {
	results, err := a.kb.Search(ctx, restaurantID, question, 3)
	if err != nil {
		return "", nil, fmt.Errorf("searching policies: %w", err)
	}

	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "## %s\n%s\n\n", r.Entry.Title, r.Entry.Content)
	}
	if sb.Len() == 0 {
		sb.WriteString("(no policy excerpts found)")
	}

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf("Policy excerpts:\n\n%s\nGuest question: %s", sb.String(), question)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", nil, fmt.Errorf("composing answer: %w", err)
	}

	return resp.Content, results, nil
}
