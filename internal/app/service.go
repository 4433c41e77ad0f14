// Package service runs the marker pipeline for one fight: fetch the three
// event streams, clean them, pack casts and damage onto tracks and build the
// combined document.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/dedupe"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/targetable"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/tracks"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/types"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/logger"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/metrics"
)

// Source fetches one fight and its event streams, each ordered by timestamp.
type Source interface {
	Fight(ctx context.Context, reportID string, fightID int) (model.Fight, error)
	Casts(ctx context.Context, reportID string, fight model.Fight) ([]model.CastEvent, error)
	DamageTaken(ctx context.Context, reportID string, fight model.Fight) ([]model.DamageEvent, error)
	Summary(ctx context.Context, reportID string, fight model.Fight) ([]model.SummaryEvent, error)
}

// Service builds marker documents.
type Service struct {
	source   Source
	reportID string
	fightID  int

	castNames    []string
	damageNames  []string
	translations map[string]string

	minGap           int64
	castIgnoreWindow int64
	echoWindow       int64
	splashWindow     int64

	notTargetableLabel string
	targetableLabel    string

	logger logger.Logger
}

// New constructs a Service. Without allow-lists it produces empty tracks.
func New(opts ...Option) *Service {
	s := &Service{
		minGap: tracks.DefaultMinGap,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches the configured fight and builds its document. A missing fight
// is returned as an error wrapping model.ErrFightNotFound.
func (s *Service) Run(ctx context.Context) (types.Document, error) {
	if s.source == nil {
		return types.Document{}, ErrNoSource
	}

	began := time.Now()
	fight, err := s.source.Fight(ctx, s.reportID, s.fightID)
	if err != nil {
		return types.Document{}, fmt.Errorf("fight %d of report %s: %w", s.fightID, s.reportID, err)
	}
	s.logger.Info(ctx, "fight found",
		logger.Int("fightID", fight.ID),
		logger.Int64("startTime", fight.StartTime),
		logger.Int64("endTime", fight.EndTime))

	casts, err := s.source.Casts(ctx, s.reportID, fight)
	if err != nil {
		return types.Document{}, fmt.Errorf("%w: casts: %w", ErrFetch, err)
	}
	damage, err := s.source.DamageTaken(ctx, s.reportID, fight)
	if err != nil {
		return types.Document{}, fmt.Errorf("%w: damage-taken: %w", ErrFetch, err)
	}
	summary, err := s.source.Summary(ctx, s.reportID, fight)
	if err != nil {
		return types.Document{}, fmt.Errorf("%w: summary: %w", ErrFetch, err)
	}
	metrics.RecordStageDuration("fetch", time.Since(began).Seconds())
	s.logger.Info(ctx, "events fetched",
		logger.Int("casts", len(casts)),
		logger.Int("damageTaken", len(damage)),
		logger.Int("summary", len(summary)))

	return s.Build(ctx, fight, casts, damage, summary), nil
}

// Build turns already fetched, time-ordered event streams into the combined
// document. It never fails: malformed events are skipped.
func (s *Service) Build(ctx context.Context, fight model.Fight, casts []model.CastEvent, damage []model.DamageEvent, summary []model.SummaryEvent) types.Document {
	began := time.Now()
	windows := []dedupe.Option{
		dedupe.WithTranslations(s.translations),
		dedupe.WithCastIgnoreWindow(s.castIgnoreWindow),
		dedupe.WithEchoWindow(s.echoWindow),
		dedupe.WithSplashWindow(s.splashWindow),
	}
	castMarkers := dedupe.NewCastDeduper(append(windows, dedupe.WithNames(s.castNames))...).Dedupe(ctx, fight, casts)
	damageMarkers := dedupe.NewDamageDeduper(append(windows, dedupe.WithNames(s.damageNames))...).Dedupe(ctx, fight, damage)
	metrics.RecordStageDuration("dedupe", time.Since(began).Seconds())
	s.logger.Debug(ctx, "streams deduplicated",
		logger.Int("castMarkers", len(castMarkers)),
		logger.Int("damageMarkers", len(damageMarkers)))

	began = time.Now()
	merged := tracks.Merge(castMarkers, damageMarkers)
	packed := tracks.NewAssigner(tracks.WithMinGap(s.minGap)).Assign(ctx, merged)
	metrics.RecordStageDuration("pack", time.Since(began).Seconds())

	untargetable := targetable.NewExtractor(
		targetable.WithLabels(s.notTargetableLabel, s.targetableLabel),
	).Extract(ctx, fight, summary)

	doc := types.NewDocument(untargetable, packed)
	s.logger.Info(ctx, "markers placed",
		logger.Int("tracks", len(packed)),
		logger.Int("markers", len(merged)),
		logger.Int("untargetable", len(untargetable)))
	return doc
}
