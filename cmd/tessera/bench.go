package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/tessera"
	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/internal/logging"
	"github.com/vango-dev/tessera/pkg/markup"
	"github.com/vango-dev/tessera/pkg/treefile"
)

type benchConfig struct {
	Document string
	Renders  int
	Workers  int
	JSONOut  string
}

func benchCmd(g *globalFlags) *cobra.Command {
	cfg := benchConfig{}

	cmd := &cobra.Command{
		Use:   "bench <document.yaml>",
		Short: "Measure render latency for a tree document",
		Long: `Render a tree document repeatedly from concurrent workers and report
latency percentiles, throughput and allocation.

Examples:
  tessera bench page.yaml
  tessera bench page.yaml -n 50000 -w 8 --json report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Document = args[0]
			return runBench(cmd, g, cfg)
		},
	}

	cmd.Flags().IntVarP(&cfg.Renders, "renders", "n", 10000, "Total renders")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.GOMAXPROCS(0), "Concurrent workers")
	cmd.Flags().StringVar(&cfg.JSONOut, "json", "", "Write a JSON report to this path (- for stdout)")

	return cmd
}

type benchReport struct {
	Version   string      `json:"version"`
	Document  string      `json:"document"`
	Renders   int         `json:"renders"`
	Workers   int         `json:"workers"`
	Errors    int         `json:"errors"`
	Bytes     int         `json:"bytes_per_render"`
	ElapsedMS float64     `json:"elapsed_ms"`
	PerSec    float64     `json:"renders_per_sec"`
	LatencyMS latencyInfo `json:"latency_ms"`
	AllocMB   float64     `json:"alloc_mb"`
	NumGC     uint32      `json:"num_gc"`
	GoVersion string      `json:"go_version"`
	CPUCount  int         `json:"cpu_count"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

func runBench(cmd *cobra.Command, g *globalFlags, cfg benchConfig) error {
	if cfg.Renders < 1 || cfg.Workers < 1 {
		return errors.New("E202").WithDetailf("renders %d, workers %d", cfg.Renders, cfg.Workers).
			WithSuggestion("Renders and workers must be at least 1")
	}

	// Rejection warnings would otherwise be logged on every render.
	engine, err := newEngine(g, tessera.WithLogger(logging.NewNop()))
	if err != nil {
		return err
	}
	// Trees are not shared between concurrent renders, so every worker
	// loads its own copy.
	trees := make([]*markup.Node, cfg.Workers)
	for i := range trees {
		doc, err := treefile.Load(cfg.Document, engine.Options())
		if err != nil {
			return err
		}
		trees[i] = doc.Node
	}

	report := benchRender(trees, cfg)

	if cfg.JSONOut != "" {
		if err := writeJSON(cmd.OutOrStdout(), cfg.JSONOut, report); err != nil {
			return err
		}
		if cfg.JSONOut == "-" {
			return nil
		}
	}
	writeSummary(cmd.OutOrStdout(), report)
	return nil
}

func benchRender(trees []*markup.Node, cfg benchConfig) benchReport {
	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, cfg.Renders)
		errCount  int
		size      int
	)

	jobs := make(chan struct{}, cfg.Renders)
	for i := 0; i < cfg.Renders; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()

	var wg sync.WaitGroup
	for _, tree := range trees {
		wg.Add(1)
		go func(tree *markup.Node) {
			defer wg.Done()
			local := make([]time.Duration, 0, cfg.Renders/cfg.Workers+1)
			failed := 0
			n := 0
			for range jobs {
				t := time.Now()
				html, err := tree.Render()
				local = append(local, time.Since(t))
				if err != nil {
					failed++
				}
				n = len(html)
			}
			mu.Lock()
			latencies = append(latencies, local...)
			errCount += failed
			if n > 0 {
				size = n
			}
			mu.Unlock()
		}(tree)
	}
	wg.Wait()

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	report := benchReport{
		Version:   version,
		Document:  cfg.Document,
		Renders:   cfg.Renders,
		Workers:   cfg.Workers,
		Errors:    errCount,
		Bytes:     size,
		ElapsedMS: ms(elapsed),
		PerSec:    float64(len(latencies)) / math.Max(0.001, elapsed.Seconds()),
		AllocMB:   float64(after.TotalAlloc-before.TotalAlloc) / (1 << 20),
		NumGC:     after.NumGC - before.NumGC,
		GoVersion: runtime.Version(),
		CPUCount:  runtime.NumCPU(),
	}
	if len(latencies) > 0 {
		report.LatencyMS = latencyInfo{
			Min: ms(latencies[0]),
			P50: ms(percentile(latencies, 0.50)),
			P95: ms(percentile(latencies, 0.95)),
			P99: ms(percentile(latencies, 0.99)),
			Max: ms(latencies[len(latencies)-1]),
		}
	}
	return report
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func writeSummary(w io.Writer, r benchReport) {
	fmt.Fprintln(w, "=== Tessera Render Benchmark ===")
	fmt.Fprintf(w, "Document: %s (%d bytes)\n", r.Document, r.Bytes)
	fmt.Fprintf(w, "Renders: %d on %d workers\n", r.Renders, r.Workers)
	fmt.Fprintf(w, "Throughput: %.1f renders/s\n", r.PerSec)
	fmt.Fprintf(w, "Errors: %d\n", r.Errors)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Latency:")
	fmt.Fprintf(w, "  min: %.3f ms\n", r.LatencyMS.Min)
	fmt.Fprintf(w, "  p50: %.3f ms\n", r.LatencyMS.P50)
	fmt.Fprintf(w, "  p95: %.3f ms\n", r.LatencyMS.P95)
	fmt.Fprintf(w, "  p99: %.3f ms\n", r.LatencyMS.P99)
	fmt.Fprintf(w, "  max: %.3f ms\n", r.LatencyMS.Max)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Alloc: %.2f MB, GC cycles: %d\n", r.AllocMB, r.NumGC)
}

func writeJSON(stdout io.Writer, path string, report benchReport) error {
	out := stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
