package runner

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/patrikhermansson/metricspace/core"
)

// Run dispatches to the configured run mode (spec.md §4.5): interactive
// reads query lines from in, batch_query_statistics runs BatchQueryNum
// queries at BatchRadius and reports aggregate statistics to out.
func Run(cfg Config, idx core.Index, d core.DistanceFunc, data []core.Object, in io.Reader, out io.Writer) error {
	switch cfg.RunMode {
	case "batch_query_statistics":
		return runBatch(cfg, idx, data, out)
	case "interactive", "":
		return runInteractive(cfg, idx, d, data, in, out)
	default:
		return core.NewError(core.ConfigError, "unknown run_mode: "+cfg.RunMode)
	}
}

// resolveQueryPoint turns a QueryConfig's literal into an Object: the
// string "auto" resolves to the first loaded object (spec.md §6);
// anything else is parsed against the dataset's Kind.
func resolveQueryPoint(literal string, data []core.Object) (core.Object, error) {
	if literal == "" || literal == "auto" {
		return data[0], nil
	}
	if data[0].Kind == core.KindString {
		return core.NewStringObject(-1, literal), nil
	}
	fields := strings.Fields(literal)
	vec := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return core.Object{}, core.Wrap(core.ConfigError, "parse query_point vector component", err)
		}
		vec[i] = v
	}
	return core.NewVectorObject(-1, vec), nil
}

func runInteractive(cfg Config, idx core.Index, d core.DistanceFunc, data []core.Object, in io.Reader, out io.Writer) error {
	for _, q := range cfg.Queries {
		if err := runOneQuery(idx, q, data, out); err != nil {
			log.Error().Err(err).Str("description", q.Description).Msg("runner: query failed")
			fmt.Fprintf(out, "query %q failed: %v\n", q.Description, err)
		}
	}

	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "enter queries as \"<radius> <point>\" (blank line to stop):")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			fmt.Fprintln(out, "expected \"<radius> <point>\"")
			continue
		}
		r, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			fmt.Fprintf(out, "invalid radius %q: %v\n", parts[0], err)
			continue
		}
		q := QueryConfig{Radius: r, QueryPoint: parts[1]}
		if err := runOneQuery(idx, q, data, out); err != nil {
			log.Error().Err(err).Msg("runner: interactive query failed")
			fmt.Fprintf(out, "query failed: %v\n", err)
		}
	}
	return nil
}

func runOneQuery(idx core.Index, q QueryConfig, data []core.Object, out io.Writer) error {
	point, err := resolveQueryPoint(q.QueryPoint, data)
	if err != nil {
		return err
	}
	hits, count, err := idx.RangeSearch(point, q.Radius)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "query %q: radius=%v hits=%d distance_count=%d\n", q.Description, q.Radius, len(hits), count)
	return nil
}

// batchStats holds the running aggregates of one metric across a
// batch run, following the mean/variance bookkeeping of the original
// analysis script.
type batchStats struct {
	n      int
	sum    float64
	sumSq  float64
}

func (s *batchStats) add(v float64) {
	s.n++
	s.sum += v
	s.sumSq += v * v
}

func (s *batchStats) mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.sum / float64(s.n)
}

func (s *batchStats) variance() float64 {
	if s.n == 0 {
		return 0
	}
	m := s.mean()
	return s.sumSq/float64(s.n) - m*m
}

func (s *batchStats) stddev() float64 {
	v := s.variance()
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

func runBatch(cfg Config, idx core.Index, data []core.Object, out io.Writer) error {
	n := cfg.BatchQueryNum
	if n <= 0 {
		return core.NewError(core.ConfigError, "batch_query_num must be positive for batch_query_statistics")
	}

	var distanceCounts, hitCounts batchStats
	bar := progressbar.Default(int64(n))

	for i := 0; i < n; i++ {
		q := data[i%len(data)]
		hits, count, err := idx.RangeSearch(q, cfg.BatchRadius)
		if err != nil {
			return err
		}
		distanceCounts.add(float64(count))
		hitCounts.add(float64(len(hits)))
		if err := bar.Add(1); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "ran %d queries at radius %v\n", n, cfg.BatchRadius)
	fmt.Fprintf(out, "distance_count: mean=%.3f std=%.3f variance=%.3f\n",
		distanceCounts.mean(), distanceCounts.stddev(), distanceCounts.variance())
	fmt.Fprintf(out, "hit_count: mean=%.3f std=%.3f variance=%.3f\n",
		hitCounts.mean(), hitCounts.stddev(), hitCounts.variance())
	return nil
}
