package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/vlist/internal/virtual"
)

var (
	benchItems      int
	benchIterations int
	benchViewport   float64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time range computation for each size strategy",
	Long: `Compute the window at evenly spaced scroll offsets and report the mean
time per computation. "linear" walks every item on each call, "indexed" uses
the virtualizer's prefix-sum index, and "fixed" is the arithmetic path.

Example:
  vlist bench --items 1000000 --iterations 200`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVar(&benchItems, "items", 100000, "number of items")
	benchCmd.Flags().IntVar(&benchIterations, "iterations", 100, "computations per strategy")
	benchCmd.Flags().Float64Var(&benchViewport, "viewport", 40, "viewport height in lines")
}

// benchResult is the mean duration of one strategy's computations.
type benchResult struct {
	Name  string
	Mean  time.Duration
	Range int
}

// benchHeight gives items a repeating 1..7 line height.
func benchHeight(i int) float64 {
	return float64(1 + i%7)
}

func runBench(cmd *cobra.Command, _ []string) error {
	results, err := benchmark(benchItems, benchIterations, benchViewport, cfg.List.Overscan)
	if err != nil {
		return err
	}
	printBench(cmd.OutOrStdout(), benchItems, results)
	return nil
}

// benchmark times each strategy over iterations offsets spread across the
// list's full height.
func benchmark(items, iterations int, viewport float64, overscan int) ([]benchResult, error) {
	if items <= 0 || iterations <= 0 {
		return nil, fmt.Errorf("items and iterations must be positive")
	}

	indexed, err := virtual.New(virtual.Options{ComputedHeight: benchHeight, Overscan: overscan})
	if err != nil {
		return nil, err
	}
	defer indexed.Close()
	indexed.SetItemCount(items)
	indexed.OnResize(viewport)

	fixed, err := virtual.New(virtual.Options{FixedHeight: 4, Overscan: overscan})
	if err != nil {
		return nil, err
	}
	defer fixed.Close()
	fixed.SetItemCount(items)
	fixed.OnResize(viewport)

	offsetAt := func(total float64, i int) float64 {
		return total * float64(i) / float64(iterations)
	}

	runs := []struct {
		name string
		run  func(i int) virtual.Window
	}{
		{"linear", func(i int) virtual.Window {
			vp := virtual.Viewport{ScrollOffset: offsetAt(indexed.TotalHeight(), i), Size: viewport}
			return virtual.Compute(items, virtual.Computed(benchHeight), vp, overscan)
		}},
		{"indexed", func(i int) virtual.Window {
			indexed.OnScroll(offsetAt(indexed.TotalHeight(), i))
			return indexed.Compute()
		}},
		{"fixed", func(i int) virtual.Window {
			fixed.OnScroll(offsetAt(fixed.TotalHeight(), i))
			return fixed.Compute()
		}},
	}

	results := make([]benchResult, 0, len(runs))
	for _, r := range runs {
		var rows int
		start := time.Now()
		for i := range iterations {
			rows += len(r.run(i).Rows)
		}
		elapsed := time.Since(start)
		results = append(results, benchResult{
			Name:  r.name,
			Mean:  elapsed / time.Duration(iterations),
			Range: rows / iterations,
		})
	}
	return results, nil
}

func printBench(w io.Writer, items int, results []benchResult) {
	_, _ = fmt.Fprintf(w, "%d items\n", items)
	_, _ = fmt.Fprintf(w, "%-10s %14s %8s\n", "strategy", "mean", "rows")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%-10s %14s %8d\n", r.Name, r.Mean, r.Range)
	}
}
