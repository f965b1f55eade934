package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/metrics"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/providers/llm"
	"github.com/yoockh/studycounsel/internal/utils"
)

const (
	chatPerCollection = 3
	chatContextDocs   = 5
)

var chatSystemPrompt = `You are a helpful assistant for students who want to study in Germany.
Answer questions based on the provided context. If the question is about immigration or visas,
always add a disclaimer: "` + LegalDisclaimer + `"
If you don't know the answer based on the context, say so. Be helpful and concise.`

type ChatAnswer struct {
	Answer  string          `json:"answer"`
	Sources []models.Source `json:"sources"`
}

type ChatService interface {
	// Ask answers a one-off question from the embedded catalog without touching any session.
	Ask(ctx context.Context, message string) (*ChatAnswer, error)
}

type chatService struct {
	llm       llm.Provider
	embedding EmbeddingService
	log       *logrus.Logger
	m         *metrics.Metrics
}

func NewChatService(p llm.Provider, embedding EmbeddingService, log *logrus.Logger, m *metrics.Metrics) ChatService {
	return &chatService{llm: p, embedding: embedding, log: log, m: m}
}

func (s *chatService) Ask(ctx context.Context, message string) (*ChatAnswer, error) {
	const op = "ChatService.Ask"

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "message is required", nil)
	}

	out := &ChatAnswer{Sources: []models.Source{}}
	var docs []models.ScoredDocument
	for _, col := range models.IndexableCollections {
		hits := s.embedding.SimilaritySearch(ctx, message, col, chatPerCollection)
		for _, h := range hits {
			title, url := chatSource(h)
			out.Sources = addSource(out.Sources, title, url)
		}
		docs = append(docs, hits...)
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })

	messages := []llm.Message{{Role: llm.RoleSystem, Content: chatSystemPrompt}}
	if len(docs) > 0 {
		lines := []string{"Relevant information:"}
		for i, d := range docs {
			if i == chatContextDocs {
				break
			}
			lines = append(lines, chatContextLine(d))
		}
		messages = append(messages, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", strings.Join(lines, "\n"), message),
		})
	} else {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	}

	answer, err := s.llm.Complete(ctx, messages, llm.Options{Temperature: 0.7, MaxTokens: 500})
	s.m.LLMCall("chat", err)
	if err != nil {
		s.log.WithError(err).WithField("op", op).Error("chat completion failed")
		out.Answer = ApologyAnswer
		return out, utils.E(utils.CodeUnavailable, op, "completion failed", err)
	}
	out.Answer = strings.TrimSpace(answer)
	return out, nil
}

func chatSource(d models.ScoredDocument) (string, string) {
	switch d.Collection {
	case models.CollectionUniversities:
		return utils.OrDefault(docString(d.Document, "name"), "University"), firstOf(docStrings(d.Document, "web_pages"))
	case models.CollectionProgrammes:
		return utils.OrDefault(docString(d.Document, "title"), "Programme"), docString(d.Document, "source_url")
	case models.CollectionImmigrationRules:
		return utils.OrDefault(docString(d.Document, "visa_type"), "Immigration Rule"), firstOf(docStrings(d.Document, "source_urls"))
	}
	return "", ""
}

func chatContextLine(d models.ScoredDocument) string {
	switch d.Collection {
	case models.CollectionUniversities:
		return fmt.Sprintf("University: %s - %s", docString(d.Document, "name"), docString(d.Document, "state-province"))
	case models.CollectionProgrammes:
		return fmt.Sprintf("Programme: %s at %s", docString(d.Document, "title"), docString(d.Document, "university_name"))
	default:
		return fmt.Sprintf("Visa: %s", docString(d.Document, "visa_type"))
	}
}

func firstOf(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
