// 生成摘要：
// 1. 对冲比率 (beta) 估计：对齐现货与衍生品历史收盘，beta = Cov/Var。
// 2. 按 (venue, spot, derivative) 键缓存 4 小时，带可注入时钟。
// 变更说明：对齐样本不足 30 条时返回保守默认值 1.0 而非不稳定估计。
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBetaLookback = 90            // 日线根数
	minAlignedBars      = 30            // 低于此样本量退回默认 beta
	defaultBetaTTL      = 4 * time.Hour // 缓存有效期
	defaultBeta         = 1.0
)

type betaCacheKey struct {
	venue      string
	spotSymbol string
	derivative string
}

type betaCacheEntry struct {
	beta       float64
	computedAt time.Time
}

// BetaEstimator 对冲比率估计器。缓存是唯一的跨周期共享可变状态，
// 读写加锁，最后写入者胜出。
type BetaEstimator struct {
	client   MarketDataClient
	logger   *slog.Logger
	lookback int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[betaCacheKey]betaCacheEntry
}

func NewBetaEstimator(client MarketDataClient, logger *slog.Logger) *BetaEstimator {
	return &BetaEstimator{
		client:   client,
		logger:   logger,
		lookback: defaultBetaLookback,
		ttl:      defaultBetaTTL,
		now:      time.Now,
		cache:    make(map[betaCacheKey]betaCacheEntry),
	}
}

// WithClock 注入时钟，用于确定性测试
func (e *BetaEstimator) WithClock(now func() time.Time) *BetaEstimator {
	e.now = now
	return e
}

// WithLookback 覆盖回看窗口
func (e *BetaEstimator) WithLookback(bars int) *BetaEstimator {
	e.lookback = bars
	return e
}

// EstimateHedgeRatio 估计现货对衍生品的对冲比率。
// 数据获取失败返回 ErrDataUnavailable，由上游跳过本轮。
func (e *BetaEstimator) EstimateHedgeRatio(ctx context.Context, venue, spotSymbol, derivativeSymbol string) (float64, error) {
	key := betaCacheKey{venue: venue, spotSymbol: spotSymbol, derivative: derivativeSymbol}

	e.mu.Lock()
	if entry, ok := e.cache[key]; ok && e.now().Sub(entry.computedAt) < e.ttl {
		e.mu.Unlock()
		return entry.beta, nil
	}
	e.mu.Unlock()

	var spotBars, derivBars []HistoricalBar
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spotBars, err = e.client.GetDailyCloses(gctx, venue, spotSymbol, e.lookback)
		return err
	})
	g.Go(func() error {
		var err error
		derivBars, err = e.client.GetDailyCloses(gctx, venue, derivativeSymbol, e.lookback)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	spotCloses, derivCloses := alignByTimestamp(spotBars, derivBars)
	if len(spotCloses) < minAlignedBars {
		e.logger.WarnContext(ctx, "insufficient aligned history, using default beta",
			"spot", spotSymbol, "derivative", derivativeSymbol, "aligned", len(spotCloses))
		return defaultBeta, nil
	}

	spotReturns := simpleReturns(spotCloses)
	derivReturns := simpleReturns(derivCloses)

	cov, err := stats.Covariance(spotReturns, derivReturns)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	variance, err := stats.SampleVariance(derivReturns)
	if err != nil || variance == 0 {
		return defaultBeta, nil
	}

	beta := cov / variance

	e.mu.Lock()
	e.cache[key] = betaCacheEntry{beta: beta, computedAt: e.now()}
	e.mu.Unlock()

	e.logger.InfoContext(ctx, "hedge ratio estimated",
		"spot", spotSymbol, "derivative", derivativeSymbol, "beta", beta)
	return beta, nil
}

// alignByTimestamp 按时间戳交集对齐两条序列的收盘价
func alignByTimestamp(a, b []HistoricalBar) ([]float64, []float64) {
	bByTime := make(map[time.Time]float64, len(b))
	for _, bar := range b {
		bByTime[bar.Timestamp] = bar.Close
	}

	type pair struct {
		ts     time.Time
		ac, bc float64
	}
	var pairs []pair
	for _, bar := range a {
		if bc, ok := bByTime[bar.Timestamp]; ok {
			pairs = append(pairs, pair{ts: bar.Timestamp, ac: bar.Close, bc: bc})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ts.Before(pairs[j].ts) })

	aCloses := make([]float64, len(pairs))
	bCloses := make([]float64, len(pairs))
	for i, p := range pairs {
		aCloses[i] = p.ac
		bCloses[i] = p.bc
	}
	return aCloses, bCloses
}

// simpleReturns 简单收益率序列
func simpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns
}
