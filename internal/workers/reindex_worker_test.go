package workers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/studycounsel/internal/logger"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/services"
)

type fakeIndexer struct {
	mu      sync.Mutex
	indexed []string
	fail    map[string]bool
}

func (f *fakeIndexer) Embed(context.Context, string) []float32 { return nil }

func (f *fakeIndexer) SimilaritySearch(context.Context, string, string, int) []models.ScoredDocument {
	return nil
}

func (f *fakeIndexer) IndexDocument(context.Context, string, string, string, map[string]any) error {
	return nil
}

func (f *fakeIndexer) IndexCollection(_ context.Context, col string) (services.IndexStats, error) {
	f.mu.Lock()
	f.indexed = append(f.indexed, col)
	f.mu.Unlock()
	if f.fail[col] {
		return services.IndexStats{Collection: col}, errors.New("cursor closed")
	}
	return services.IndexStats{Collection: col, Indexed: 3, Failed: 1}, nil
}

func TestRunOnceIndexesEveryCollection(t *testing.T) {
	idx := &fakeIndexer{}
	w := &ReindexWorker{Embeddings: idx, Logger: logger.Discard()}

	stats, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, len(models.IndexableCollections))
	for i, col := range models.IndexableCollections {
		assert.Equal(t, col, stats[i].Collection)
		assert.Equal(t, 3, stats[i].Indexed)
	}
	assert.ElementsMatch(t, models.IndexableCollections, idx.indexed)
}

func TestRunOnceReportsFailure(t *testing.T) {
	idx := &fakeIndexer{fail: map[string]bool{models.CollectionProgrammes: true}}
	w := &ReindexWorker{Embeddings: idx, Collections: []string{models.CollectionProgrammes}, Logger: logger.Discard()}

	stats, err := w.RunOnce(context.Background())
	assert.Error(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, models.CollectionProgrammes, stats[0].Collection)
}

func TestStartValidates(t *testing.T) {
	w := &ReindexWorker{}
	assert.Error(t, w.Start(context.Background()))

	w = &ReindexWorker{Embeddings: &fakeIndexer{}, Schedule: "not a cron", Logger: logger.Discard()}
	assert.Error(t, w.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w = &ReindexWorker{Embeddings: &fakeIndexer{}, Schedule: "0 3 * * *", Logger: logger.Discard()}
	require.NoError(t, w.Start(ctx))
	w.Stop()

	idle := &ReindexWorker{Embeddings: &fakeIndexer{}, Logger: logger.Discard()}
	require.NoError(t, idle.Start(ctx))
	idle.Stop()
}
