package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/cache"
	"github.com/yoockh/studycounsel/internal/metrics"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/providers/embedder"
	mongorepo "github.com/yoockh/studycounsel/internal/repositories/mongo"
	"github.com/yoockh/studycounsel/internal/utils"
	"golang.org/x/time/rate"
)

// EmbeddingStore is satisfied by both the mongo and the postgres embedding repositories.
type EmbeddingStore interface {
	Upsert(ctx context.Context, e *models.Embedding) error
	ListByCollection(ctx context.Context, collection string) ([]models.Embedding, error)
}

type IndexStats struct {
	Collection string `json:"collection"`
	Indexed    int    `json:"indexed"`
	Failed     int    `json:"failed"`
}

type EmbeddingService interface {
	// Embed returns nil for blank text or when the provider fails.
	Embed(ctx context.Context, text string) []float32
	SimilaritySearch(ctx context.Context, query, collection string, limit int) []models.ScoredDocument
	IndexDocument(ctx context.Context, collection, id, text string, metadata map[string]any) error
	IndexCollection(ctx context.Context, collection string) (IndexStats, error)
}

type EmbeddingOptions struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// IndexRate caps embedding calls per second while indexing. Zero means unlimited.
	IndexRate float64
}

type embeddingService struct {
	provider embedder.Provider
	store    EmbeddingStore
	docs     mongorepo.DocumentRepository
	cache    cache.Cache
	opts     EmbeddingOptions
	limiter  *rate.Limiter
	log      *logrus.Logger
	m        *metrics.Metrics
	now      func() time.Time
}

func NewEmbeddingService(
	provider embedder.Provider,
	store EmbeddingStore,
	docs mongorepo.DocumentRepository,
	c cache.Cache,
	opts EmbeddingOptions,
	log *logrus.Logger,
	m *metrics.Metrics,
) EmbeddingService {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.IndexRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.IndexRate), 1)
	}
	return &embeddingService{
		provider: provider,
		store:    store,
		docs:     docs,
		cache:    c,
		opts:     opts,
		limiter:  limiter,
		log:      log,
		m:        m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CosineSimilarity is dot(a,b)/(|a||b|), and 0 when either norm is 0 or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (s *embeddingService) Embed(ctx context.Context, text string) []float32 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	key := cache.Key("emb", s.provider.Model(), text)
	if s.cache != nil {
		var cached []float32
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.log.WithError(err).Debug("embedding cache read failed")
		} else if hit && len(cached) > 0 {
			s.m.Embedding("cache")
			return cached
		}
	}

	vec, err := s.embedRemote(ctx, text)
	if err != nil {
		s.m.Embedding("error")
		s.log.WithError(err).Warn("embedding failed")
		return nil
	}
	s.m.Embedding("provider")

	if s.cache != nil && s.opts.CacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, key, vec, s.opts.CacheTTL); err != nil {
			s.log.WithError(err).Debug("embedding cache write failed")
		}
	}
	return vec
}

func (s *embeddingService) embedRemote(ctx context.Context, text string) ([]float32, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, errors.New("empty embedding")
	}
	return vec, nil
}

func (s *embeddingService) SimilaritySearch(ctx context.Context, query, collection string, limit int) []models.ScoredDocument {
	out := []models.ScoredDocument{}
	if limit <= 0 {
		return out
	}
	log := s.log.WithField("collection", collection)

	qv := s.Embed(ctx, query)
	if qv == nil {
		return out
	}

	stored, err := s.store.ListByCollection(ctx, collection)
	if err != nil {
		log.WithError(err).Error("load embeddings failed")
		return out
	}
	if len(stored) == 0 {
		log.Warn("no embeddings for collection")
		return out
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(stored))
	for _, e := range stored {
		if len(e.Vector) == 0 {
			continue
		}
		ranked = append(ranked, scored{id: e.DocumentID, score: CosineSimilarity(qv, e.Vector)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	// resolve past dangling ids so up to limit records come back
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		doc, err := s.docs.FindByID(ctx, collection, r.id)
		if err != nil {
			if !errors.Is(err, utils.ErrNotFound) {
				log.WithError(err).WithField("document_id", r.id).Warn("resolve document failed")
			}
			continue
		}
		doc["similarity_score"] = r.score
		out = append(out, models.ScoredDocument{Collection: collection, ID: r.id, Document: doc, Score: r.score})
	}
	s.m.Search(collection, len(out))
	return out
}

func (s *embeddingService) IndexDocument(ctx context.Context, collection, id, text string, metadata map[string]any) error {
	const op = "EmbeddingService.IndexDocument"

	if collection == "" || id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "collection and id are required", nil)
	}
	if strings.TrimSpace(text) == "" {
		return utils.E(utils.CodeInvalidArgument, op, "text is empty", nil)
	}

	vec, err := s.embedRemote(ctx, strings.TrimSpace(text))
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "embedding failed", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	err = s.store.Upsert(ctx, &models.Embedding{
		CollectionName: collection,
		DocumentID:     id,
		Vector:         vec,
		Metadata:       metadata,
		UpdatedAt:      s.now(),
	})
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store embedding", err)
	}
	return nil
}

func (s *embeddingService) IndexCollection(ctx context.Context, collection string) (IndexStats, error) {
	const op = "EmbeddingService.IndexCollection"

	stats := IndexStats{Collection: collection}
	if !isIndexable(collection) {
		return stats, utils.E(utils.CodeInvalidArgument, op, "unknown collection: "+collection, nil)
	}
	log := s.log.WithField("collection", collection)

	err := s.docs.Each(ctx, collection, func(id string, doc map[string]any) error {
		text, md := DocumentText(collection, doc)
		if text == "" {
			stats.Failed++
			return nil
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		err := s.IndexDocument(ctx, collection, id, text, md)
		s.m.Indexed(collection, err)
		if err != nil {
			stats.Failed++
			log.WithError(err).WithField("document_id", id).Warn("index document failed")
			return nil
		}
		stats.Indexed++
		return nil
	})
	if err != nil {
		return stats, utils.E(utils.CodeInternal, op, "failed to iterate collection", err)
	}

	log.WithFields(logrus.Fields{"indexed": stats.Indexed, "failed": stats.Failed}).Info("collection indexed")
	return stats, nil
}

func isIndexable(collection string) bool {
	for _, c := range models.IndexableCollections {
		if c == collection {
			return true
		}
	}
	return false
}

// DocumentText derives the embedded text and metadata snapshot for a catalog record.
func DocumentText(collection string, doc map[string]any) (string, map[string]any) {
	switch collection {
	case models.CollectionUniversities:
		return joinNonEmpty(
				docString(doc, "name"),
				docString(doc, "state-province"),
				strings.Join(docStrings(doc, "domains"), " "),
			), map[string]any{
				"name":  docString(doc, "name"),
				"state": docString(doc, "state-province"),
			}
	case models.CollectionProgrammes:
		return joinNonEmpty(
				docString(doc, "title"),
				docString(doc, "degree_type"),
				docString(doc, "university_name"),
				docString(doc, "city"),
				strings.Join(docStrings(doc, "language"), " "),
			), map[string]any{
				"title":           docString(doc, "title"),
				"degree_type":     docString(doc, "degree_type"),
				"university_name": docString(doc, "university_name"),
			}
	case models.CollectionImmigrationRules:
		return joinNonEmpty(
				docString(doc, "visa_type"),
				docString(doc, "min_funds_year_eur"),
				docString(doc, "work_hours_per_week"),
				strings.Join(docStrings(doc, "key_documents"), " "),
			), map[string]any{
				"visa_type":    docString(doc, "visa_type"),
				"country_code": docString(doc, "country_code"),
			}
	}
	return "", nil
}
