package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultQty = int32(1)
)

type config struct {
	baseURL      string
	total        int
	totalSet     bool
	duration     time.Duration
	concurrency  int
	timeout      time.Duration
	qty          int32
	initialStock int32
	rejectRate   int
	customerName string
	itemName     string
	outputPath   string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Statuses  map[string]int64 `json:"statuses"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	PlacedOrders      int64                   `json:"placed_orders"`
	RejectedOrders    int64                   `json:"rejected_orders"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	statuses  map[string]int64
	latencies []float64
}

type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{
		methods: make(map[string]*methodStats),
	}
}

func (c *collector) record(method string, latency time.Duration, status string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, found := c.methods[method]
	if !found {
		stats = &methodStats{
			statuses: make(map[string]int64),
		}
		c.methods[method] = stats
	}

	stats.calls++
	if ok {
		stats.success++
	} else {
		stats.failed++
	}
	stats.statuses[status]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	scenarioStats := c.methods["scenario"]
	if scenarioStats != nil {
		result.TotalScenarios = scenarioStats.calls
		result.SuccessScenarios = scenarioStats.success
		result.FailedScenarios = scenarioStats.failed
		result.ErrorRate = ratio(scenarioStats.failed, scenarioStats.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenarioStats.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.methods {
		statusesCopy := make(map[string]int64, len(stats.statuses))
		for status, count := range stats.statuses {
			statusesCopy[status] = count
		}
		result.Methods[name] = methodReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Statuses:  statusesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var timeoutValue string
	var durationValue string
	var qty int
	var initialStock int

	flag.StringVar(&cfg.baseURL, "addr", "http://localhost:8080", "HTTP API base URL")
	flag.IntVar(&cfg.total, "total", 400, "total order placements in count mode; in duration mode only used when explicitly set")
	flag.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 10m, 15m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.StringVar(&timeoutValue, "timeout", "5s", "per-request timeout")
	flag.IntVar(&qty, "qty", int(defaultQty), "quantity per order")
	flag.IntVar(&initialStock, "initial-stock", 1_000_000, "initial item stock seeded before the run")
	flag.IntVar(&cfg.rejectRate, "reject-rate", 0, "percent of placements forced over the remaining stock (0..100)")
	flag.StringVar(&cfg.customerName, "customer-name", "load-customer", "seeded customer name")
	flag.StringVar(&cfg.itemName, "item-name", "load-item", "seeded item name")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	cfg.qty = int32(qty)
	cfg.initialStock = int32(initialStock)

	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if cfg.qty <= 0 {
		return cfg, errors.New("qty must be > 0")
	}
	if cfg.initialStock <= 0 {
		return cfg, errors.New("initial-stock must be > 0")
	}
	if cfg.rejectRate < 0 || cfg.rejectRate > 100 {
		return cfg, errors.New("reject-rate must be between 0 and 100")
	}
	if strings.TrimSpace(cfg.baseURL) == "" {
		return cfg, errors.New("addr is required")
	}

	return cfg, nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.timeout}

	customerID, itemID, err := seedFixtures(client, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to seed fixtures: %v\n", err)
		os.Exit(1)
	}

	startedAt := time.Now()
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var failures, placed, rejected int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				status, runErr := placeOrder(client, cfg, customerID, itemID, id, col)
				switch {
				case runErr != nil:
					atomic.AddInt64(&failures, 1)
				case status == "PLACED":
					atomic.AddInt64(&placed, 1)
				case status == "REJECTED":
					atomic.AddInt64(&rejected, 1)
				}
			}
		}()
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration)
	result.PlacedOrders = placed
	result.RejectedOrders = rejected
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

// seedFixtures создаёт клиента и складскую позицию, против которых
// пойдёт нагрузка.
func seedFixtures(client *http.Client, cfg config) (customerID, itemID string, err error) {
	customerID, err = postForID(client, cfg.baseURL+"/customers", map[string]any{
		"name": cfg.customerName,
	})
	if err != nil {
		return "", "", fmt.Errorf("seed customer: %w", err)
	}

	itemID, err = postForID(client, cfg.baseURL+"/inventory", map[string]any{
		"name":     cfg.itemName,
		"quantity": cfg.initialStock,
	})
	if err != nil {
		return "", "", fmt.Errorf("seed item: %w", err)
	}

	return customerID, itemID, nil
}

func postForID(client *http.Client, url string, payload map[string]any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.ID == "" {
		return "", errors.New("response returned empty id")
	}
	return decoded.ID, nil
}

// placeOrder выполняет одно размещение и возвращает статус заказа.
func placeOrder(client *http.Client, cfg config, customerID, itemID string, index int, col *collector) (string, error) {
	scenarioStart := time.Now()
	scenarioOK := true
	scenarioStatus := "ok"
	defer func() {
		col.record("scenario", time.Since(scenarioStart), scenarioStatus, scenarioOK)
	}()

	qty := cfg.qty
	if shouldForceReject(index, cfg.rejectRate) {
		// Заведомо больше остатка: такой заказ будет отклонён, а не упадёт.
		qty = cfg.initialStock + 1
	}

	raw, err := json.Marshal(map[string]any{
		"customer_id": customerID,
		"item_id":     itemID,
		"quantity":    qty,
	})
	if err != nil {
		scenarioOK = false
		scenarioStatus = "marshal_error"
		return "", err
	}

	start := time.Now()
	resp, err := client.Post(cfg.baseURL+"/orders", "application/json", bytes.NewReader(raw))
	if err != nil {
		col.record("PlaceOrder", time.Since(start), "transport_error", false)
		scenarioOK = false
		scenarioStatus = "transport_error"
		return "", err
	}
	defer resp.Body.Close()

	statusLabel := fmt.Sprintf("http_%d", resp.StatusCode)
	ok := resp.StatusCode == http.StatusOK
	col.record("PlaceOrder", time.Since(start), statusLabel, ok)

	if !ok {
		scenarioOK = false
		scenarioStatus = statusLabel
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var order struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		scenarioOK = false
		scenarioStatus = "decode_error"
		return "", err
	}

	return order.Status, nil
}

func shouldForceReject(index, rejectRate int) bool {
	if rejectRate <= 0 {
		return false
	}
	if rejectRate >= 100 {
		return true
	}
	return index%100 < rejectRate
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("run=%s total=%d success=%d failed=%d placed=%d rejected=%d error_rate=%.4f\n",
		runTarget(cfg),
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.PlacedOrders,
		result.RejectedOrders,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	methodNames := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name == "scenario" {
			continue
		}
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		stats := result.Methods[name]
		fmt.Printf(
			"%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
