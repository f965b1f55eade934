package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/metrics"
	"github.com/yoockh/studycounsel/internal/providers/llm"
	"github.com/yoockh/studycounsel/internal/utils"
)

type ExtractionStatus string

const (
	ExtractionOK            ExtractionStatus = "ok"
	ExtractionMalformed     ExtractionStatus = "malformed"
	ExtractionProviderError ExtractionStatus = "provider_error"
)

// Extraction is the outcome of asking the model for structured output.
// Value is the zero/default value unless Status is ExtractionOK.
type Extraction[T any] struct {
	Value  T
	Status ExtractionStatus
	Err    error
}

func (e Extraction[T]) OK() bool { return e.Status == ExtractionOK }

var errNotObject = errors.New("reply is not a JSON object")

// parseJSONObject strips code fences and decodes a single JSON object.
func parseJSONObject(raw string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(utils.StripCodeFences(raw)), &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNotObject
	}
	return out, nil
}

type jsonExtractor struct {
	llm  llm.Provider
	log  *logrus.Logger
	m    *metrics.Metrics
	kind string
	opts llm.Options
}

// run issues one completion and decodes it. Failures never escape as errors,
// they are folded into the returned status.
func run[T any](ctx context.Context, x jsonExtractor, system, prompt string, decode func(map[string]any) T) Extraction[T] {
	var zero T

	raw, err := x.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: prompt},
	}, x.opts)
	x.m.LLMCall(x.kind, err)
	if err != nil {
		x.log.WithError(err).WithField("kind", x.kind).Warn("extraction call failed")
		x.m.Extraction(x.kind, string(ExtractionProviderError))
		return Extraction[T]{Value: zero, Status: ExtractionProviderError, Err: err}
	}

	obj, err := parseJSONObject(raw)
	if err != nil {
		x.log.WithError(err).WithField("kind", x.kind).Warn("extraction reply malformed")
		x.m.Extraction(x.kind, string(ExtractionMalformed))
		return Extraction[T]{Value: zero, Status: ExtractionMalformed, Err: err}
	}

	x.m.Extraction(x.kind, string(ExtractionOK))
	return Extraction[T]{Value: decode(obj), Status: ExtractionOK}
}
