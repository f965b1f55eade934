package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/studycounsel/internal/models"
)

func TestRowConversion(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &models.Embedding{
		CollectionName: models.CollectionProgrammes,
		DocumentID:     "abc",
		Vector:         []float32{0.25, -1, 3},
		Metadata:       map[string]any{"title": "MSc Informatics"},
		UpdatedAt:      at,
	}

	row, err := toRow(in)
	require.NoError(t, err)
	assert.Equal(t, at, row.CreatedAt, "created_at defaults to the write time")
	assert.JSONEq(t, `{"title":"MSc Informatics"}`, string(row.Metadata))

	out := fromRow(*row)
	assert.Equal(t, in.Vector, out.Vector)
	assert.Equal(t, "MSc Informatics", out.Metadata["title"])
	assert.Equal(t, "abc", out.DocumentID)
}

func TestRowConversionNoMetadata(t *testing.T) {
	row, err := toRow(&models.Embedding{CollectionName: "universities", DocumentID: "x", Vector: []float32{1}})
	require.NoError(t, err)
	assert.Nil(t, row.Metadata)
	assert.False(t, row.UpdatedAt.IsZero())
	assert.Nil(t, fromRow(*row).Metadata)
}
