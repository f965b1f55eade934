package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEmbeddingDecodesDoubleVectors(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"collection_name": "programmes",
		"document_id":     "p1",
		"embedding":       bson.A{0.1, 0.2, 1.0 / 3.0},
	})
	require.NoError(t, err)

	var e Embedding
	require.NoError(t, bson.Unmarshal(raw, &e))
	assert.Equal(t, "p1", e.DocumentID)
	require.Len(t, e.Vector, 3)
	assert.InDelta(t, 0.1, e.Vector[0], 1e-6)
	assert.InDelta(t, 1.0/3.0, e.Vector[2], 1e-6)
}

func TestEmbeddingVectorRoundTrip(t *testing.T) {
	in := Embedding{CollectionName: "universities", DocumentID: "u1", Vector: []float32{0.5, -0.25}}
	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var out Embedding
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, in.Vector, out.Vector)
}
