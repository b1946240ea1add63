// Package service provides the core scoring service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openflank/fire/internal/adapters/repository"
	"github.com/openflank/fire/internal/domain/composite"
	"github.com/openflank/fire/internal/domain/delta"
	"github.com/openflank/fire/internal/domain/eligibility"
	"github.com/openflank/fire/internal/domain/model"
	"github.com/openflank/fire/internal/domain/rolesource"
	"github.com/openflank/fire/internal/domain/window"
	"github.com/openflank/fire/pkg/logger"
	"github.com/openflank/fire/pkg/metrics"
)

// Week bounds for a regular season.
const (
	minWeek = 1
	maxWeek = 18
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithAggregator sets a custom window aggregator.
func WithAggregator(a *window.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithClassifier sets a custom eligibility classifier.
func WithClassifier(c *eligibility.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithScorer sets a custom composite scorer.
func WithScorer(sc *composite.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithDeltaGenerator sets a custom delta generator.
func WithDeltaGenerator(g *delta.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.deltas = g
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service orchestrates one scoring request end to end. All computation
// is stateless and synchronous per request; nothing is cached across
// requests because the underlying facts can be revised.
type Service struct {
	facts  repository.FactStore
	alphas repository.AlphaProvider

	aggregator *window.Aggregator
	classifier *eligibility.Classifier
	scorer     *composite.Scorer
	deltas     *delta.Generator

	logger logger.Logger

	// Request counters for the stats endpoint.
	requestsTotal  atomic.Int64
	playersScored  atomic.Int64
	lastDurationMS atomic.Int64
	startedAt      time.Time
}

// New constructs a Service. The fact store and alpha provider are passed
// explicitly so the engine stays trivially testable with synthetic facts.
func New(facts repository.FactStore, alphas repository.AlphaProvider, opts ...Option) *Service {
	s := &Service{
		facts:      facts,
		alphas:     alphas,
		aggregator: window.New(),
		classifier: eligibility.New(),
		scorer:     composite.New(),
		deltas:     delta.New(),
		startedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// ScoreQuery describes one batch scoring request.
type ScoreQuery struct {
	Season     int
	AnchorWeek int
	Position   *model.Position
	PlayerIDs  []string
	Preset     model.ScoringPreset
}

// WindowMeta describes the resolved aggregation window.
type WindowMeta struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Width int `json:"width"`
}

// Metadata echoes the resolved request parameters so callers can audit
// why a player was excluded.
type Metadata struct {
	Season        int                 `json:"season"`
	AnchorWeek    int                 `json:"anchor_week"`
	Window        WindowMeta          `json:"window"`
	ScoringPreset model.ScoringPreset `json:"scoring_preset"`
	Thresholds    map[string]float64  `json:"thresholds"`
}

func (s *Service) validate(season, anchorWeek int) error {
	if err := validSeason(season); err != nil {
		return err
	}
	return validWeek("anchorWeek", anchorWeek)
}

func validSeason(season int) error {
	if season <= 0 {
		return invalidf("season", "season must be a positive integer")
	}
	return nil
}

func validWeek(field string, week int) error {
	if week < minWeek || week > maxWeek {
		return invalidf(field, "%s must be in [%d,%d]", field, minWeek, maxWeek)
	}
	return nil
}

func (s *Service) metadata(q ScoreQuery, positions []model.Position) Metadata {
	start, width := s.aggregator.Bounds(q.AnchorWeek)
	thresholds := make(map[string]float64, len(positions))
	for _, pos := range positions {
		thresholds[string(pos)] = s.classifier.ScaledThreshold(pos, width)
	}
	preset := q.Preset
	if preset == "" {
		preset = model.PresetRedraft
	}
	return Metadata{
		Season:        q.Season,
		AnchorWeek:    q.AnchorWeek,
		Window:        WindowMeta{Start: start, End: q.AnchorWeek, Width: width},
		ScoringPreset: preset,
		Thresholds:    thresholds,
	}
}

// ScoreBatch computes PlayerScores for every requested pool. Positions
// are processed independently and in parallel; pool computations never
// cross position boundaries.
func (s *Service) ScoreBatch(ctx context.Context, q ScoreQuery) (Metadata, []model.PlayerScore, error) {
	if err := s.validate(q.Season, q.AnchorWeek); err != nil {
		return Metadata{}, nil, err
	}
	s.countRequest()
	return s.scoreBatch(ctx, q)
}

// countRequest records one caller-facing request. Internal re-scoring,
// such as the per-pool batches behind a delta request, never counts.
func (s *Service) countRequest() {
	s.requestsTotal.Add(1)
	metrics.RecordScoreRequest()
}

func (s *Service) scoreBatch(ctx context.Context, q ScoreQuery) (Metadata, []model.PlayerScore, error) {
	started := time.Now()

	positions := model.Positions()
	if q.Position != nil {
		positions = []model.Position{*q.Position}
	}
	meta := s.metadata(q, positions)

	facts, totals, err := s.fetch(ctx, q, meta, positions)
	if err != nil {
		return Metadata{}, nil, err
	}

	byPosition := make(map[model.Position][]model.WeeklyPlayerFact, len(positions))
	for _, f := range facts {
		byPosition[f.Position] = append(byPosition[f.Position], f)
	}

	// Fan out one worker per position; each worker only reads its own
	// rows, so no synchronization beyond the join is needed.
	pools := make([][]model.PlayerScore, len(positions))
	errs := make([]error, len(positions))
	var wg sync.WaitGroup
	for i, pos := range positions {
		rows := byPosition[pos]
		if len(rows) == 0 {
			s.logger.Debug(ctx, "no facts for position pool",
				logger.String("position", string(pos)),
				logger.Int("anchorWeek", q.AnchorWeek))
			metrics.RecordDataGap(string(pos))
			continue
		}
		wg.Add(1)
		go func(i int, pos model.Position, rows []model.WeeklyPlayerFact) {
			defer wg.Done()
			pools[i], errs[i] = s.scorePool(q, pos, rows, totals)
		}(i, pos, rows)
	}
	wg.Wait()

	var scores []model.PlayerScore
	for i, pool := range pools {
		if errs[i] != nil {
			s.logger.Error(ctx, "pool scoring failed",
				logger.String("position", string(positions[i])),
				logger.Int("anchorWeek", q.AnchorWeek),
				logger.Error(errs[i]))
			metrics.RecordComputationError(string(positions[i]))
			return Metadata{}, nil, errs[i]
		}
		scores = append(scores, pool...)
	}

	s.observe(positions, scores, started)
	return meta, scores, nil
}

func (s *Service) fetch(ctx context.Context, q ScoreQuery, meta Metadata, positions []model.Position) ([]model.WeeklyPlayerFact, []model.TeamWeeklyTotal, error) {
	fetchStart := time.Now()
	facts, err := s.facts.PlayerWeeks(ctx, q.Season, meta.Window.Start, q.AnchorWeek, positions, q.PlayerIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch player weeks: %w", err)
	}
	totals, err := s.facts.TeamWeeks(ctx, q.Season, meta.Window.Start, q.AnchorWeek)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch team weeks: %w", err)
	}
	metrics.RecordFactStoreQueryLatency(float64(time.Since(fetchStart).Milliseconds()))
	metrics.RecordFactRowsFetched(len(facts))
	return facts, totals, nil
}

// scorePool runs the full pipeline for one position: aggregate, resolve
// role sources, classify, score, rank.
func (s *Service) scorePool(q ScoreQuery, pos model.Position, rows []model.WeeklyPlayerFact, totals []model.TeamWeeklyTotal) ([]model.PlayerScore, error) {
	aggs := s.aggregator.Aggregate(q.Season, q.AnchorWeek, rows, totals)
	if len(aggs) == 0 {
		return nil, nil
	}

	cands := make([]composite.Candidate, len(aggs))
	for i, agg := range aggs {
		cands[i] = composite.Candidate{
			Agg:  agg,
			Role: rolesource.Resolve(agg),
			Elig: s.classifier.Classify(agg),
		}
	}
	scores := s.scorer.ScorePool(pos, q.Preset, cands)

	// Rank integrity check: eligible ranks must be exactly {1..k}.
	eligible, maxRank := 0, 0
	for i := range scores {
		if scores[i].Eligible {
			eligible++
			if scores[i].FireRank == nil {
				return nil, fmt.Errorf("%w: eligible player %s missing rank (position %s, week %d)",
					ErrComputation, scores[i].PlayerID, pos, q.AnchorWeek)
			}
			if *scores[i].FireRank > maxRank {
				maxRank = *scores[i].FireRank
			}
		}
		if scores[i].RoleMeta.WeightRedistributed {
			metrics.RecordWeightRedistribution()
		}
	}
	if maxRank != eligible {
		return nil, fmt.Errorf("%w: rank gap in %s pool at week %d (%d eligible, max rank %d)",
			ErrComputation, pos, q.AnchorWeek, eligible, maxRank)
	}
	return scores, nil
}

func (s *Service) observe(positions []model.Position, scores []model.PlayerScore, started time.Time) {
	perPos := make(map[model.Position]int, len(positions))
	for i := range scores {
		if scores[i].Eligible {
			perPos[scores[i].Position]++
		}
	}
	for _, pos := range positions {
		metrics.UpdateEligiblePlayers(string(pos), perPos[pos])
	}
	metrics.RecordPlayersScored(len(scores))
	elapsed := time.Since(started).Milliseconds()
	metrics.RecordScoringDuration(float64(elapsed))
	s.playersScored.Add(int64(len(scores)))
	s.lastDurationMS.Store(elapsed)
}

// ScorePlayer computes the score for a single player. Unknown players
// come back as an ineligible shape rather than an error so callers can
// distinguish "below threshold" from "not found".
func (s *Service) ScorePlayer(ctx context.Context, season, anchorWeek int, playerID string, preset model.ScoringPreset) (Metadata, model.PlayerScore, error) {
	q := ScoreQuery{Season: season, AnchorWeek: anchorWeek, PlayerIDs: []string{playerID}, Preset: preset}
	meta, scores, err := s.ScoreBatch(ctx, q)
	if err != nil {
		return Metadata{}, model.PlayerScore{}, err
	}
	for i := range scores {
		if scores[i].PlayerID == playerID {
			return meta, scores[i], nil
		}
	}
	return meta, model.PlayerScore{
		PlayerID:   playerID,
		Eligible:   false,
		Confidence: model.ConfidenceLow,
	}, nil
}

// DeltaQuery describes one delta batch request.
type DeltaQuery struct {
	Season     int
	AnchorWeek int
	Position   *model.Position
	Limit      int
	Offset     int
}

// deltaPositions are the pools the divergence comparison covers.
// Quarterbacks stay out until a conversion pillar exists for them.
func deltaPositions(requested *model.Position) ([]model.Position, error) {
	if requested == nil {
		return []model.Position{model.PositionRB, model.PositionWR, model.PositionTE}, nil
	}
	if *requested == model.PositionQB {
		return nil, invalidf("position", "delta signals are not available for QB")
	}
	return []model.Position{*requested}, nil
}

// DeltaBatch joins composite scores with long-horizon alphas and returns
// signals sorted by descending absolute z-delta, paginated. Total is the
// pre-pagination signal count.
func (s *Service) DeltaBatch(ctx context.Context, q DeltaQuery) (Metadata, []model.DeltaSignal, int, error) {
	positions, err := deltaPositions(q.Position)
	if err != nil {
		return Metadata{}, nil, 0, err
	}
	if err := s.validate(q.Season, q.AnchorWeek); err != nil {
		return Metadata{}, nil, 0, err
	}
	s.countRequest()

	var signals []model.DeltaSignal
	var meta Metadata
	for _, pos := range positions {
		pos := pos
		poolMeta, poolSignals, err := s.deltaPool(ctx, q.Season, q.AnchorWeek, pos)
		if err != nil {
			return Metadata{}, nil, 0, err
		}
		meta = poolMeta
		signals = append(signals, poolSignals...)
	}
	if len(positions) > 1 {
		// Rebuild the full metadata block across all compared pools.
		meta = s.metadata(ScoreQuery{Season: q.Season, AnchorWeek: q.AnchorWeek}, positions)
	}

	sort.SliceStable(signals, func(a, b int) bool {
		return math.Abs(signals[a].RankZ) > math.Abs(signals[b].RankZ)
	})
	total := len(signals)
	for i := range signals {
		metrics.RecordDeltaSignal(string(signals[i].Direction))
	}

	signals = paginate(signals, q.Limit, q.Offset)
	return meta, signals, total, nil
}

func (s *Service) deltaPool(ctx context.Context, season, anchorWeek int, pos model.Position) (Metadata, []model.DeltaSignal, error) {
	meta, scores, err := s.scoreBatch(ctx, ScoreQuery{Season: season, AnchorWeek: anchorWeek, Position: &pos})
	if err != nil {
		return Metadata{}, nil, err
	}
	alphas, err := s.alphas.Alphas(ctx, season, anchorWeek, pos)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("fetch alphas: %w", err)
	}

	inputs := make([]delta.Input, 0, len(scores))
	for i := range scores {
		sc := &scores[i]
		if !sc.Eligible || sc.FireScore == nil {
			continue
		}
		alpha, ok := alphas[sc.PlayerID]
		if !ok {
			// No long-horizon score for this player; nothing to compare.
			continue
		}
		inputs = append(inputs, delta.Input{
			PlayerID:   sc.PlayerID,
			Name:       sc.Name,
			Position:   sc.Position,
			FireScore:  *sc.FireScore,
			ForgeAlpha: alpha,
			Confidence: sc.Confidence,
		})
	}
	return meta, s.deltas.Generate(inputs), nil
}

func paginate(signals []model.DeltaSignal, limit, offset int) []model.DeltaSignal {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(signals) {
		return nil
	}
	signals = signals[offset:]
	if limit > 0 && limit < len(signals) {
		signals = signals[:limit]
	}
	return signals
}

// DeltaTrend recomputes the single-player delta at each anchor week in
// [weekFrom, weekTo], ascending. Weeks where the player is ineligible or
// unmatched yield no point.
func (s *Service) DeltaTrend(ctx context.Context, season int, playerID string, weekFrom, weekTo int) (Metadata, []model.DeltaTrendPoint, error) {
	if err := validSeason(season); err != nil {
		return Metadata{}, nil, err
	}
	if err := validWeek("weekFrom", weekFrom); err != nil {
		return Metadata{}, nil, err
	}
	if err := validWeek("weekTo", weekTo); err != nil {
		return Metadata{}, nil, err
	}
	if weekFrom > weekTo {
		return Metadata{}, nil, invalidf("weekFrom", "weekFrom must not exceed weekTo")
	}
	s.countRequest()

	pos, err := s.playerPosition(ctx, season, weekFrom, weekTo, playerID)
	if err != nil {
		return Metadata{}, nil, err
	}
	if pos == "" || pos == model.PositionQB {
		// Unknown player or a pool the comparison does not cover.
		meta := s.metadata(ScoreQuery{Season: season, AnchorWeek: weekTo}, nil)
		return meta, nil, nil
	}

	var points []model.DeltaTrendPoint
	var meta Metadata
	for wk := weekFrom; wk <= weekTo; wk++ {
		wkMeta, signals, err := s.deltaPool(ctx, season, wk, pos)
		if err != nil {
			return Metadata{}, nil, err
		}
		meta = wkMeta
		for i := range signals {
			if signals[i].PlayerID == playerID {
				points = append(points, model.DeltaTrendPoint{AnchorWeek: wk, DeltaSignal: signals[i]})
				break
			}
		}
	}
	return meta, points, nil
}

// playerPosition resolves a player's position from any fact row near the
// requested range. Empty means the player is unknown to the fact store.
func (s *Service) playerPosition(ctx context.Context, season, weekFrom, weekTo int, playerID string) (model.Position, error) {
	start, _ := s.aggregator.Bounds(weekFrom)
	facts, err := s.facts.PlayerWeeks(ctx, season, start, weekTo, nil, []string{playerID})
	if err != nil {
		return "", fmt.Errorf("fetch player weeks: %w", err)
	}
	if len(facts) == 0 {
		return "", nil
	}
	return facts[0].Position, nil
}

// GetStats exposes service statistics for the stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"requests_total":       s.requestsTotal.Load(),
		"players_scored_total": s.playersScored.Load(),
		"last_duration_ms":     s.lastDurationMS.Load(),
		"uptime_seconds":       int64(time.Since(s.startedAt).Seconds()),
	}
}
