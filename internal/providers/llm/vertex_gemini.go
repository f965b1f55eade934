package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	if projectID == "" {
		return nil, errors.New("llm: vertex project id required")
	}
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Name() string { return "vertex:" + v.modelName }

func (v *VertexGemini) Close() error { return v.client.Close() }

// Complete maps system messages to the system instruction, prior turns to chat
// history, and streams the final user turn.
func (v *VertexGemini) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	m := v.client.GenerativeModel(v.modelName)
	m.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}

	system, history, last := splitForGemini(messages)
	if system != "" {
		m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(system)}}
	}
	if last == "" {
		return "", errors.New("llm: no user message")
	}

	cs := m.StartChat()
	cs.History = history

	var sb strings.Builder
	it := cs.SendMessageStream(ctx, vertexgenai.Text(last))
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", err
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					sb.WriteString(string(t))
				}
			}
		}
	}
	return sb.String(), nil
}

func splitForGemini(messages []Message) (system string, history []*vertexgenai.Content, last string) {
	var sys []string
	turns := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			sys = append(sys, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	if n := len(turns); n > 0 && turns[n-1].Role == RoleUser {
		last = turns[n-1].Content
		turns = turns[:n-1]
	}
	// Gemini history must open with a user turn and alternate roles.
	for len(turns) > 0 && turns[0].Role == RoleAssistant {
		turns = turns[1:]
	}
	for _, t := range turns {
		role := "user"
		if t.Role == RoleAssistant {
			role = "model"
		}
		if n := len(history); n > 0 && history[n-1].Role == role {
			history[n-1].Parts = append(history[n-1].Parts, vertexgenai.Text(t.Content))
			continue
		}
		history = append(history, &vertexgenai.Content{Role: role, Parts: []vertexgenai.Part{vertexgenai.Text(t.Content)}})
	}
	return strings.Join(sys, "\n\n"), history, last
}
