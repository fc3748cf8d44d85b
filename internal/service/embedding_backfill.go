package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"marketsearch/internal/config"
	"marketsearch/internal/models"
	"marketsearch/internal/repository"
)

// BatchEmbedder embeds a batch of texts in one request, order-preserving.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingBackfillService populates embeddings for events that do not
// have one yet. Re-running is safe: the selection predicate is
// "embedding IS NULL", so completed rows are never reprocessed.
type EmbeddingBackfillService struct {
	Repo     repository.Repository
	Embedder BatchEmbedder
	Logger   *zap.Logger
	Config   config.BackfillConfig
}

type BackfillResult struct {
	Events  int
	Batches int
}

func (s *EmbeddingBackfillService) RunOnce(ctx context.Context) (BackfillResult, error) {
	var result BackfillResult
	if s == nil || s.Repo == nil || s.Embedder == nil {
		return result, nil
	}
	batchSize := s.Config.BatchSize
	if batchSize <= 0 {
		batchSize = 64
	}

	for {
		events, err := s.Repo.ListEventsMissingEmbedding(ctx, batchSize)
		if err != nil {
			return result, fmt.Errorf("list events missing embedding: %w", err)
		}
		if len(events) == 0 {
			s.logInfo("no more events missing embeddings", zap.Int("total", result.Events))
			return result, nil
		}

		texts := make([]string, 0, len(events))
		for _, e := range events {
			texts = append(texts, buildEventText(e))
		}

		vectors, err := s.Embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return result, fmt.Errorf("embed batch: %w", err)
		}
		if len(vectors) != len(events) {
			return result, fmt.Errorf("embedding count mismatch: got %d vectors for %d events", len(vectors), len(events))
		}

		for i, e := range events {
			if err := s.Repo.UpdateEventEmbedding(ctx, e.ID, models.Vector(vectors[i])); err != nil {
				return result, fmt.Errorf("update embedding for event %s: %w", e.ID, err)
			}
		}

		result.Events += len(events)
		result.Batches++
		s.logInfo("embedded batch",
			zap.Int("events", len(events)),
			zap.Int("total", result.Events),
		)
	}
}

// buildEventText concatenates the text-bearing fields into one document
// for embedding. Free-text fields contribute a line only when non-empty;
// the labelled category/series/region lines are always emitted.
func buildEventText(e models.Event) string {
	parts := []string{
		e.Title,
		deref(e.Subtitle),
		deref(e.Description),
		"category: " + deref(e.Category),
		"series: " + deref(e.SeriesTicker),
		"region: " + deref(e.Region),
	}
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *EmbeddingBackfillService) logInfo(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Info(msg, fields...)
	}
}
