package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/NullMeDev/trendwire/pkg/topics"
)

// Summarizer writes a short description of a topic
type Summarizer interface {
	Summarize(ctx context.Context, topic topics.Topic) (string, error)
}

const summarySystemPrompt = `You summarize news topics. Given a topic keyword and a list of headlines,
reply with one neutral sentence of at most 30 words describing what the coverage is about.
Do not add opinions, quotes or facts that are not in the headlines.`

// OpenAISummarizer asks a chat model for a one sentence summary
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer creates a summarizer for the given key and model
func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Summarize implements Summarizer
func (s *OpenAISummarizer) Summarize(ctx context.Context, topic topics.Topic) (string, error) {
	headlines := summaryHeadlines(topic)
	if len(headlines) == 0 {
		return "", fmt.Errorf("topic %q has no headlines to summarize", topic.Main.Term)
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: summarySystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: summaryPrompt(topic.Main.Term, headlines),
				},
			},
			Temperature: 0.2,
			MaxTokens:   80,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	summary = strings.Trim(summary, "\"")
	if summary == "" {
		return "", fmt.Errorf("OpenAI returned an empty summary")
	}
	return summary, nil
}

// summaryHeadlines prefers the hero preview, then any matching politics article
func summaryHeadlines(topic topics.Topic) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(list []topics.Article) {
		for _, a := range list {
			if len(out) >= 8 {
				return
			}
			if a.Title == "" || seen[a.Title] {
				continue
			}
			seen[a.Title] = true
			out = append(out, a.Title)
		}
	}
	add(topic.Preview.Politics)
	add(topic.Articles.Politics)
	return out
}

func summaryPrompt(term string, headlines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nHeadlines:\n", term)
	for _, h := range headlines {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	return b.String()
}
