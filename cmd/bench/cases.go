// README: Smoke cases for the quote API; includes HTTP, DB, Redis, concurrency and performance checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

// workedExample is the reference shipment used across cases.
var workedExample = map[string]any{
	"origin_zone":    "ZONE-5-MIDWEST",
	"dest_zone":      "ZONE-10-PACIFIC",
	"length_in":      12,
	"width_in":       10,
	"height_in":      8,
	"weight_lb":      5,
	"service":        "standard",
	"declared_value": 150,
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCaseMethod("API: load status", http.MethodGet, base+"/api/status", nil, []int{200}),

		// Directory
		httpCaseMethod("Zones: list", http.MethodGet, base+"/api/zones", nil, []int{200}),
		httpCaseMethod("Zones: unknown -> 404", http.MethodGet, base+"/api/zones/ZONE-X", nil, []int{404}),
		httpCaseMethod("Distance: missing dest -> 400", http.MethodGet, base+"/api/distance?origin=ZONE-5-MIDWEST", nil, []int{400}),

		// Quotes
		{
			Name: "Quote: reference shipment",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				total, status, err := r.postQuote(ctx, base+"/api/quotes", workedExample)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK || !(total > 0) {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status=%d total=%v", status, total)}
				}
				return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("total=%.2f", total)}
			},
		},
		httpCase("Quote: bad service -> 400", base+"/api/quotes", withField(workedExample, "service", "overnight"), []int{400}),
		httpCase("Quote: zero weight -> 400", base+"/api/quotes", withField(workedExample, "weight_lb", 0), []int{400}),
		httpCaseMethod("Quote: current", http.MethodGet, base+"/api/quotes/current", nil, []int{200}),
		httpCase("Batch: two shipments", base+"/api/quotes/batch", map[string]any{
			"shipments": []any{workedExample, withField(workedExample, "service", "expedited")},
		}, []int{200}),
		{
			Name: "Redis: current quote mirrored",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				n, err := r.redis.Exists(ctx, "quotes:current", "quotes:batch").Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n != 2 {
					return Result{Status: "FAIL", Note: fmt.Sprintf("keys present=%d", n)}
				}
				return Result{Status: "PASS"}
			},
		},

		// Tariff
		httpCaseMethod("Tariff: get", http.MethodGet, base+"/api/tariff", nil, []int{200}),
		httpCaseMethod("Tariff: dim_divisor 0 -> 400", http.MethodPatch, base+"/api/tariff", map[string]any{"dim_divisor": 0}, []int{400}),
		httpCaseMethod("Presets: list", http.MethodGet, base+"/api/presets", nil, []int{200}),
		httpCase("Presets: unknown apply -> 404", base+"/api/presets/nope/apply", nil, []int{404}),

		// Concurrency
		{
			Name: "Concurrency: quotes during preset switching",
			Run: func(ctx context.Context, r *Runner) Result {
				return presetSwitching(ctx, r, base)
			},
		},

		// Performance
		{
			Name: "Perf: single quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/quotes", workedExample)
			},
		},
	}
}

func withField(m map[string]any, key string, v any) map[string]any {
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	out[key] = v
	return out
}

func httpCase(name, url string, body any, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func (r *Runner) postQuote(ctx context.Context, url string, body any) (float64, int, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	var out struct {
		Total float64 `json:"total"`
	}
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return 0, resp.StatusCode, err
		}
	}
	return out.Total, resp.StatusCode, nil
}

func (r *Runner) applyPreset(ctx context.Context, base, id string) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/presets/"+id+"/apply", nil)
	resp, err := r.httpc.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("apply %s: status=%d", id, resp.StatusCode)
	}
	return nil
}

// presetSwitching quotes the reference shipment while presets flip between
// two ids. Every total must match one of the two presets exactly; anything
// else means a quote saw a half-applied preset.
func presetSwitching(ctx context.Context, r *Runner, base string) Result {
	ids := []string{"ground-2024", "peak-season"}
	want := map[float64]bool{}
	for _, id := range ids {
		if err := r.applyPreset(ctx, base, id); err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		total, _, err := r.postQuote(ctx, base+"/api/quotes", workedExample)
		if err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		want[total] = true
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	torn := 0
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			_ = r.applyPreset(ctx, base, ids[i%len(ids)])
		}
	}()

	var quoters sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		quoters.Add(1)
		go func() {
			defer quoters.Done()
			for j := 0; j < 10; j++ {
				total, status, err := r.postQuote(ctx, base+"/api/quotes", workedExample)
				if err != nil || status != http.StatusOK {
					continue
				}
				if !want[total] {
					mu.Lock()
					torn++
					mu.Unlock()
				}
			}
		}()
	}
	quoters.Wait()
	close(stop)
	wg.Wait()

	_ = r.applyPreset(ctx, base, ids[0])
	if torn > 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("torn=%d", torn)}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("totals=%v", keys(want))}
}

func keys(m map[float64]bool) []float64 {
	out := make([]float64, 0, len(m))
	for k := range m {
		out = append(out, math.Round(k*100)/100)
	}
	return out
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
