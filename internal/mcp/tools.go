package mcp

import (
	"context"

	"github.com/pplx-mcp/pplx-mcp/internal/upstream"
)

const (
	defaultMaxTokens = 1000

	askSystemPrompt    = "You are a helpful research assistant. Be precise and concise."
	searchSystemPrompt = "You are a helpful research assistant. Be precise and concise. Always cite the sources you used in your answer."
)

var modelChoices = []string{"sonar", "sonar-pro", "sonar-reasoning"}

func (s *Server) registerTools() {
	s.registry.Register(&ToolDescriptor{
		Name:        "perplexity_ask",
		Description: "Ask Perplexity AI a question and get an answer backed by live web research. Use this for factual questions that benefit from up-to-date information.",
		Params: []Param{
			{
				Name:        "question",
				Type:        "string",
				Description: "The question to ask",
				Required:    true,
			},
			{
				Name:        "model",
				Type:        "string",
				Description: "Perplexity model to use",
				Enum:        modelChoices,
				Default:     "sonar",
			},
			{
				Name:        "system_prompt",
				Type:        "string",
				Description: "System instruction that frames the answer",
				Default:     askSystemPrompt,
			},
			{
				Name:        "max_tokens",
				Type:        "number",
				Description: "Maximum number of tokens in the answer",
				Default:     float64(defaultMaxTokens),
			},
		},
		Handler: s.toolAsk,
	})

	s.registry.Register(&ToolDescriptor{
		Name:        "perplexity_search",
		Description: "Search the web via Perplexity AI. Returns a researched summary with the sources it was drawn from.",
		Params: []Param{
			{
				Name:        "query",
				Type:        "string",
				Description: "The search query",
				Required:    true,
			},
			{
				Name:        "model",
				Type:        "string",
				Description: "Perplexity model to use",
				Enum:        modelChoices,
				Default:     "sonar",
			},
			{
				Name:        "system_prompt",
				Type:        "string",
				Description: "System instruction that frames the answer",
				Default:     searchSystemPrompt,
			},
			{
				Name:        "max_tokens",
				Type:        "number",
				Description: "Maximum number of tokens in the answer",
				Default:     float64(defaultMaxTokens),
			},
		},
		Handler: s.toolSearch,
	})
}

func (s *Server) toolAsk(ctx context.Context, args map[string]interface{}) (string, error) {
	return s.complete(ctx, "perplexity_ask", args["question"].(string), args)
}

func (s *Server) toolSearch(ctx context.Context, args map[string]interface{}) (string, error) {
	return s.complete(ctx, "perplexity_search", args["query"].(string), args)
}

// complete gates the call on the rate limiter, records it in the usage
// ledger, and proxies it upstream. Arguments have already been
// validated and defaulted by the registry.
func (s *Server) complete(ctx context.Context, tool, content string, args map[string]interface{}) (string, error) {
	model := args["model"].(string)
	systemPrompt := args["system_prompt"].(string)
	maxTokens := int(args["max_tokens"].(float64))

	if err := s.limiter.Allow(); err != nil {
		return "", err
	}

	if s.ledger != nil {
		if err := s.ledger.Record(tool, model); err != nil {
			s.log.Warn("failed to record usage", "tool", tool, "error", err)
		}
	}

	return s.upstream.Chat(ctx, upstream.Query{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserContent:  content,
		MaxTokens:    maxTokens,
	})
}
