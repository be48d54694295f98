package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/cache"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
)

const (
	defaultMetricsCacheTTL    = 45 * time.Second
	defaultMetricsTopClients  = 10
	defaultMetricsTopDrivers  = 5
	defaultMetricsTopProducts = 5
	metricsHistoryMonths      = 12
	metricsHistoryYears       = 5
	metricsMinYear            = 2000
	metricsMaxYear            = 2100
	slaEmptyLabel             = "-"
)

// MetricsServiceDeps 看板服务依赖
type MetricsServiceDeps struct {
	Repo       repository.MetricsRepository
	Authorizer Authorizer
	Config     config.MetricsConfig
	Location   *time.Location
	Now        func() time.Time
}

// MetricsService 指标看板聚合（只读）
type MetricsService struct {
	repo       repository.MetricsRepository
	authorizer Authorizer
	cfg        config.MetricsConfig
	loc        *time.Location
	now        func() time.Time
}

// NewMetricsService 创建看板服务
func NewMetricsService(deps MetricsServiceDeps) *MetricsService {
	return &MetricsService{
		repo:       deps.Repo,
		authorizer: deps.Authorizer,
		cfg:        deps.Config,
		loc:        defaultLocation(deps.Location),
		now:        defaultClock(deps.Now),
	}
}

// MetricsQueryInput 看板查询参数（为 0 时取当前月份）
type MetricsQueryInput struct {
	Month        int
	Year         int
	ForceRefresh bool
}

// MetricsPeriod 统计周期
type MetricsPeriod struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// MetricsCounters 计数指标
type MetricsCounters struct {
	Open                     int64 `json:"open"`
	AwaitingReturn           int64 `json:"awaiting_return"`
	ReturnsCompletedInPeriod int64 `json:"returns_completed_in_period"`
	CreatedInPeriod          int64 `json:"created_in_period"`
	FinalizedInPeriod        int64 `json:"finalized_in_period"`
}

// MetricsFinancial 金额汇总
type MetricsFinancial struct {
	OpenValue     models.Money `json:"open_value"`
	ReturnedValue models.Money `json:"returned_value"`
	AcceptedValue models.Money `json:"accepted_value"`
}

// MetricsSeriesPoint 按月计数点（period 形如 2024-06）
type MetricsSeriesPoint struct {
	Period string `json:"period"`
	Total  int64  `json:"total"`
}

// MetricsSeries 月度趋势
type MetricsSeries struct {
	Created  []MetricsSeriesPoint `json:"created"`
	Returned []MetricsSeriesPoint `json:"returned"`
	Accepted []MetricsSeriesPoint `json:"accepted"`
}

// MetricsClientRanking 客户接受/退货排行
type MetricsClientRanking struct {
	ClientID uint   `json:"client_id"`
	Name     string `json:"name"`
	Accepted int64  `json:"accepted"`
	Returned int64  `json:"returned"`
}

// MetricsStateCount 州分布
type MetricsStateCount struct {
	Code  string `json:"code"`
	State string `json:"state"`
	Count int64  `json:"count"`
}

// MetricsDriverRanking 司机排行
type MetricsDriverRanking struct {
	DriverID uint   `json:"driver_id"`
	Name     string `json:"name"`
	CPF      string `json:"cpf"`
	Total    int64  `json:"total"`
}

// MetricsProductRanking 商品排行
type MetricsProductRanking struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Total     int64  `json:"total"`
}

// MetricsProductRankings 商品排行（总数/退货/接受）
type MetricsProductRankings struct {
	Total    []MetricsProductRanking `json:"total"`
	Returned []MetricsProductRanking `json:"returned"`
	Accepted []MetricsProductRanking `json:"accepted"`
}

// MetricsSLAStat 单阶段时效（秒）与展示文本
type MetricsSLAStat struct {
	HasData    bool   `json:"has_data"`
	Samples    int    `json:"samples"`
	MinSeconds int64  `json:"min_seconds"`
	AvgSeconds int64  `json:"avg_seconds"`
	MaxSeconds int64  `json:"max_seconds"`
	Min        string `json:"min"`
	Avg        string `json:"avg"`
	Max        string `json:"max"`
}

// MetricsSLA 三个阶段时效
type MetricsSLA struct {
	Decision      MetricsSLAStat `json:"decision"`
	WaitingReturn MetricsSLAStat `json:"waiting_return"`
	Transport     MetricsSLAStat `json:"transport"`
}

// MetricsLiabilityBucket 按责任方汇总的损失
type MetricsLiabilityBucket struct {
	Period            string       `json:"period"`
	Client            models.Money `json:"client"`
	CarrierCompany    models.Money `json:"carrier_company"`
	ThirdPartyCarrier models.Money `json:"third_party_carrier"`
}

// MetricsOutcomeBucket 按结案结果汇总的金额
type MetricsOutcomeBucket struct {
	Period      string       `json:"period"`
	Returned    models.Money `json:"returned"`
	Accepted    models.Money `json:"accepted"`
	CarrierLoss models.Money `json:"carrier_loss"`
}

// MetricsHistory 财务历史（近 12 个月与近 5 年）
type MetricsHistory struct {
	LiabilityMonthly []MetricsLiabilityBucket `json:"liability_monthly"`
	LiabilityYearly  []MetricsLiabilityBucket `json:"liability_yearly"`
	OutcomeMonthly   []MetricsOutcomeBucket   `json:"outcome_monthly"`
	OutcomeYearly    []MetricsOutcomeBucket   `json:"outcome_yearly"`
}

// MetricsSnapshot 看板快照
type MetricsSnapshot struct {
	Period              MetricsPeriod          `json:"period"`
	GeneratedAt         time.Time              `json:"generated_at"`
	Counters            MetricsCounters        `json:"counters"`
	Financial           MetricsFinancial       `json:"financial"`
	AcceptanceRate      float64                `json:"acceptance_rate"`
	AcceptanceRateLabel string                 `json:"acceptance_rate_label"`
	Series              MetricsSeries          `json:"series"`
	Clients             []MetricsClientRanking `json:"clients"`
	Geography           []MetricsStateCount    `json:"geography"`
	TopDrivers          []MetricsDriverRanking `json:"top_drivers"`
	TopProducts         MetricsProductRankings `json:"top_products"`
	SLA                 MetricsSLA             `json:"sla"`
	History             MetricsHistory         `json:"history"`
}

// Compute 获取看板快照，优先读取缓存
func (s *MetricsService) Compute(ctx context.Context, actor Actor, input MetricsQueryInput) (*MetricsSnapshot, error) {
	if err := authorize(ctx, s.authorizer, actor, authz.CapDashboardView); err != nil {
		return nil, err
	}
	period, err := s.resolvePeriod(input.Year, input.Month)
	if err != nil {
		return nil, err
	}
	cacheKey := cache.MetricsSnapshotKey(period.Year, period.Month)
	if !input.ForceRefresh {
		var cached MetricsSnapshot
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr != nil {
			logger.Ctx(ctx).Warnw("metrics_cache_get_failed", "key", cacheKey, "error", cacheErr)
		}
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}
	return s.build(ctx, period, cacheKey)
}

// Refresh 重新计算指定周期并写入缓存（供后台任务使用）
func (s *MetricsService) Refresh(ctx context.Context, year, month int) (*MetricsSnapshot, error) {
	period, err := s.resolvePeriod(year, month)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, period, cache.MetricsSnapshotKey(period.Year, period.Month))
}

func (s *MetricsService) build(ctx context.Context, period MetricsPeriod, cacheKey string) (*MetricsSnapshot, error) {
	snapshot, err := s.Snapshot(period)
	if err != nil {
		logger.Ctx(ctx).Errorw("metrics_compute_failed", "year", period.Year, "month", period.Month, "error", err)
		return nil, err
	}
	if err := cache.SetJSON(ctx, cacheKey, snapshot, s.cacheTTL()); err != nil {
		logger.Ctx(ctx).Warnw("metrics_cache_set_failed", "key", cacheKey, "error", err)
	}
	return snapshot, nil
}

func (s *MetricsService) cacheTTL() time.Duration {
	if s.cfg.CacheTTLSeconds > 0 {
		return time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	}
	return defaultMetricsCacheTTL
}

func limitOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// resolvePeriod 校验并补全统计周期
func (s *MetricsService) resolvePeriod(year, month int) (MetricsPeriod, error) {
	localNow := s.now().In(s.loc)
	if month == 0 {
		month = int(localNow.Month())
	}
	if year == 0 {
		year = localNow.Year()
	}
	if month < 1 || month > 12 {
		return MetricsPeriod{}, invalid(ErrMetricsPeriodInvalid, fmt.Sprintf("month %d", month))
	}
	if year < metricsMinYear || year > metricsMaxYear {
		return MetricsPeriod{}, invalid(ErrMetricsPeriodInvalid, fmt.Sprintf("year %d", year))
	}
	start := now.With(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)).BeginningOfMonth()
	return MetricsPeriod{
		Year:  year,
		Month: month,
		From:  start,
		To:    start.AddDate(0, 1, 0),
	}, nil
}

// Snapshot 直接计算快照，不经过缓存
func (s *MetricsService) Snapshot(period MetricsPeriod) (*MetricsSnapshot, error) {
	current := s.now()
	summary, err := s.repo.GetSummary(period.From.UTC(), period.To.UTC())
	if err != nil {
		return nil, err
	}
	timeline, err := s.repo.ListTimeline()
	if err != nil {
		return nil, err
	}
	locations, err := s.repo.ListLocationCounts()
	if err != nil {
		return nil, err
	}
	clientRows, err := s.repo.TopClients(limitOrDefault(s.cfg.TopClients, defaultMetricsTopClients))
	if err != nil {
		return nil, err
	}
	driverRows, err := s.repo.TopDrivers(limitOrDefault(s.cfg.TopDrivers, defaultMetricsTopDrivers))
	if err != nil {
		return nil, err
	}
	productLimit := limitOrDefault(s.cfg.TopProducts, defaultMetricsTopProducts)
	productsTotal, err := s.repo.TopProducts("", productLimit)
	if err != nil {
		return nil, err
	}
	productsReturned, err := s.repo.TopProducts(constants.ClaimClosureReturnCompleted, productLimit)
	if err != nil {
		return nil, err
	}
	productsAccepted, err := s.repo.TopProducts(constants.ClaimClosureAccepted, productLimit)
	if err != nil {
		return nil, err
	}

	rate := acceptanceRate(summary.AcceptedCount, summary.ReturnCompletedCount)
	snapshot := &MetricsSnapshot{
		Period:      period,
		GeneratedAt: current,
		Counters: MetricsCounters{
			Open:                     summary.OpenCount,
			AwaitingReturn:           summary.AwaitingReturnCount,
			ReturnsCompletedInPeriod: summary.ReturnsCompletedInPeriod,
			CreatedInPeriod:          summary.CreatedInPeriod,
			FinalizedInPeriod:        summary.FinalizedInPeriod,
		},
		Financial: MetricsFinancial{
			OpenValue:     models.NewMoneyFromDecimal(summary.OpenValue.Decimal),
			ReturnedValue: models.NewMoneyFromDecimal(summary.ReturnedValue.Decimal),
			AcceptedValue: models.NewMoneyFromDecimal(summary.AcceptedValue.Decimal),
		},
		AcceptanceRate:      rate.InexactFloat64(),
		AcceptanceRateLabel: rate.StringFixed(1),
		Series:              buildMetricsSeries(timeline, s.loc),
		Clients:             convertClientRows(clientRows),
		Geography:           buildGeography(locations),
		TopDrivers:          convertDriverRows(driverRows),
		TopProducts: MetricsProductRankings{
			Total:    convertProductRows(productsTotal),
			Returned: convertProductRows(productsReturned),
			Accepted: convertProductRows(productsAccepted),
		},
		SLA:     buildSLA(timeline),
		History: buildHistory(timeline, current, s.loc),
	}
	return snapshot, nil
}

// acceptanceRate 接受率（百分比，保留 1 位小数）
func acceptanceRate(accepted, returned int64) decimal.Decimal {
	total := accepted + returned
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(accepted).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total)).Round(1)
}

func monthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}

func yearKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006")
}

func isFinalizedWith(row repository.MetricsTimelineRow, closure string) bool {
	return row.Status == constants.ClaimStatusFinalized && row.Closure == closure && row.FinalizedAt != nil
}

func buildMetricsSeries(rows []repository.MetricsTimelineRow, loc *time.Location) MetricsSeries {
	created := map[string]int64{}
	returned := map[string]int64{}
	accepted := map[string]int64{}
	for _, row := range rows {
		created[monthKey(row.CreatedAt, loc)]++
		switch {
		case isFinalizedWith(row, constants.ClaimClosureReturnCompleted):
			returned[monthKey(*row.FinalizedAt, loc)]++
		case isFinalizedWith(row, constants.ClaimClosureAccepted):
			accepted[monthKey(*row.FinalizedAt, loc)]++
		}
	}
	return MetricsSeries{
		Created:  seriesPoints(created),
		Returned: seriesPoints(returned),
		Accepted: seriesPoints(accepted),
	}
}

func seriesPoints(counts map[string]int64) []MetricsSeriesPoint {
	points := make([]MetricsSeriesPoint, 0, len(counts))
	for period, total := range counts {
		points = append(points, MetricsSeriesPoint{Period: period, Total: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	return points
}

func convertClientRows(rows []repository.MetricsClientRow) []MetricsClientRanking {
	result := make([]MetricsClientRanking, 0, len(rows))
	for _, row := range rows {
		result = append(result, MetricsClientRanking{ClientID: row.ClientID, Name: row.CompanyName, Accepted: row.Accepted, Returned: row.Returned})
	}
	return result
}

func convertDriverRows(rows []repository.MetricsDriverRow) []MetricsDriverRanking {
	result := make([]MetricsDriverRanking, 0, len(rows))
	for _, row := range rows {
		result = append(result, MetricsDriverRanking{DriverID: row.DriverID, Name: row.Name, CPF: row.CPF, Total: row.Total})
	}
	return result
}

func convertProductRows(rows []repository.MetricsProductRow) []MetricsProductRanking {
	result := make([]MetricsProductRanking, 0, len(rows))
	for _, row := range rows {
		result = append(result, MetricsProductRanking{ProductID: row.ProductID, Name: row.Name, Total: row.Total})
	}
	return result
}

var stateNames = map[string]string{
	"ac": "Acre", "al": "Alagoas", "ap": "Amapá", "am": "Amazonas", "ba": "Bahia",
	"ce": "Ceará", "df": "Distrito Federal", "es": "Espírito Santo", "go": "Goiás",
	"ma": "Maranhão", "mt": "Mato Grosso", "ms": "Mato Grosso do Sul", "mg": "Minas Gerais",
	"pa": "Pará", "pb": "Paraíba", "pr": "Paraná", "pe": "Pernambuco", "pi": "Piauí",
	"rj": "Rio de Janeiro", "rn": "Rio Grande do Norte", "rs": "Rio Grande do Sul",
	"ro": "Rondônia", "rr": "Roraima", "sc": "Santa Catarina", "sp": "São Paulo",
	"se": "Sergipe", "to": "Tocantins",
}

// 单词边界按 Unicode 字母判断（"são" 中的 "s" 不算独立词）
var statePattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(ac|al|ap|am|ba|ce|df|es|go|ma|mt|ms|mg|pa|pb|pr|pe|pi|rj|rn|rs|ro|rr|sc|sp|se|to)(?:[^\p{L}\p{N}_]|$)`)

// matchState 从自由文本地点中识别州代码，未识别返回空
func matchState(location string) string {
	match := statePattern.FindStringSubmatch(strings.ToLower(location))
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

func buildGeography(rows []repository.MetricsLocationRow) []MetricsStateCount {
	counts := map[string]int64{}
	for _, row := range rows {
		code := matchState(row.Location)
		if code == "" {
			continue
		}
		counts[code] += row.Total
	}
	result := make([]MetricsStateCount, 0, len(counts))
	for code, total := range counts {
		result = append(result, MetricsStateCount{Code: strings.ToUpper(code), State: stateNames[code], Count: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].State < result[j].State
	})
	return result
}

func buildSLA(rows []repository.MetricsTimelineRow) MetricsSLA {
	var decision, waiting, transport []time.Duration
	for _, row := range rows {
		if row.DecidedAt != nil {
			decision = append(decision, row.DecidedAt.Sub(row.CreatedAt))
		}
		if row.DecidedAt != nil && row.ReturnStartedAt != nil {
			waiting = append(waiting, row.ReturnStartedAt.Sub(*row.DecidedAt))
		}
		if isFinalizedWith(row, constants.ClaimClosureReturnCompleted) && row.ReturnStartedAt != nil {
			transport = append(transport, row.FinalizedAt.Sub(*row.ReturnStartedAt))
		}
	}
	return MetricsSLA{
		Decision:      slaStat(decision),
		WaitingReturn: slaStat(waiting),
		Transport:     slaStat(transport),
	}
}

func slaStat(samples []time.Duration) MetricsSLAStat {
	if len(samples) == 0 {
		return MetricsSLAStat{Min: slaEmptyLabel, Avg: slaEmptyLabel, Max: slaEmptyLabel}
	}
	minDur, maxDur := samples[0], samples[0]
	var sum time.Duration
	for _, d := range samples {
		if d < minDur {
			minDur = d
		}
		if d > maxDur {
			maxDur = d
		}
		sum += d
	}
	avgDur := sum / time.Duration(len(samples))
	return MetricsSLAStat{
		HasData:    true,
		Samples:    len(samples),
		MinSeconds: int64(minDur / time.Second),
		AvgSeconds: int64(avgDur / time.Second),
		MaxSeconds: int64(maxDur / time.Second),
		Min:        FormatSLADuration(minDur),
		Avg:        FormatSLADuration(avgDur),
		Max:        FormatSLADuration(maxDur),
	}
}

// FormatSLADuration 时效展示文本："{d} Dias e {HH}:{MM} Horas"
func FormatSLADuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int64(d / (24 * time.Hour))
	rest := d - time.Duration(days)*24*time.Hour
	hours := int64(rest / time.Hour)
	minutes := int64((rest % time.Hour) / time.Minute)
	return fmt.Sprintf("%d Dias e %02d:%02d Horas", days, hours, minutes)
}

type liabilitySums struct {
	client, carrier, third decimal.Decimal
}

type outcomeSums struct {
	returned, accepted, loss decimal.Decimal
}

func buildHistory(rows []repository.MetricsTimelineRow, current time.Time, loc *time.Location) MetricsHistory {
	monthlyCutoff := current.AddDate(0, 0, -365)
	yearlyCutoff := current.AddDate(0, 0, -5*365)
	liabilityMonthly := map[string]*liabilitySums{}
	liabilityYearly := map[string]*liabilitySums{}
	outcomeMonthly := map[string]*outcomeSums{}
	outcomeYearly := map[string]*outcomeSums{}

	for _, row := range rows {
		if row.Status != constants.ClaimStatusFinalized || row.FinalizedAt == nil {
			continue
		}
		value := models.MoneyOrZero(row.Value)
		finalized := *row.FinalizedAt

		if !finalized.Before(monthlyCutoff) {
			addLiability(liabilityMonthly, monthKey(finalized, loc), row.Liability, value)
		}
		if !finalized.Before(yearlyCutoff) {
			addLiability(liabilityYearly, yearKey(finalized, loc), row.Liability, value)
		}
		addOutcome(outcomeMonthly, monthKey(finalized, loc), row, value)
		addOutcome(outcomeYearly, yearKey(finalized, loc), row, value)
	}

	return MetricsHistory{
		LiabilityMonthly: liabilityBuckets(liabilityMonthly, 0),
		LiabilityYearly:  liabilityBuckets(liabilityYearly, 0),
		OutcomeMonthly:   outcomeBuckets(outcomeMonthly, metricsHistoryMonths),
		OutcomeYearly:    outcomeBuckets(outcomeYearly, metricsHistoryYears),
	}
}

func addLiability(buckets map[string]*liabilitySums, key, party string, value decimal.Decimal) {
	bucket, ok := buckets[key]
	if !ok {
		bucket = &liabilitySums{}
		buckets[key] = bucket
	}
	switch party {
	case constants.LiabilityClient:
		bucket.client = bucket.client.Add(value)
	case constants.LiabilityCarrierCompany:
		bucket.carrier = bucket.carrier.Add(value)
	case constants.LiabilityThirdPartyCarrier:
		bucket.third = bucket.third.Add(value)
	}
}

func addOutcome(buckets map[string]*outcomeSums, key string, row repository.MetricsTimelineRow, value decimal.Decimal) {
	bucket, ok := buckets[key]
	if !ok {
		bucket = &outcomeSums{}
		buckets[key] = bucket
	}
	switch row.Closure {
	case constants.ClaimClosureReturnCompleted:
		bucket.returned = bucket.returned.Add(value)
	case constants.ClaimClosureAccepted:
		bucket.accepted = bucket.accepted.Add(value)
	}
	if row.Liability == constants.LiabilityCarrierCompany {
		bucket.loss = bucket.loss.Add(value)
	}
}

// sortedKeysDesc 周期键倒序；limit > 0 时截断
func sortedKeysDesc(keys []string, limit int) []string {
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func liabilityBuckets(buckets map[string]*liabilitySums, limit int) []MetricsLiabilityBucket {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	result := make([]MetricsLiabilityBucket, 0, len(keys))
	for _, key := range sortedKeysDesc(keys, limit) {
		bucket := buckets[key]
		result = append(result, MetricsLiabilityBucket{
			Period:            key,
			Client:            models.NewMoneyFromDecimal(bucket.client),
			CarrierCompany:    models.NewMoneyFromDecimal(bucket.carrier),
			ThirdPartyCarrier: models.NewMoneyFromDecimal(bucket.third),
		})
	}
	return result
}

func outcomeBuckets(buckets map[string]*outcomeSums, limit int) []MetricsOutcomeBucket {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	result := make([]MetricsOutcomeBucket, 0, len(keys))
	for _, key := range sortedKeysDesc(keys, limit) {
		bucket := buckets[key]
		result = append(result, MetricsOutcomeBucket{
			Period:      key,
			Returned:    models.NewMoneyFromDecimal(bucket.returned),
			Accepted:    models.NewMoneyFromDecimal(bucket.accepted),
			CarrierLoss: models.NewMoneyFromDecimal(bucket.loss),
		})
	}
	return result
}
