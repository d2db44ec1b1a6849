// Command buckindex is the CLI front end for the buckindex library: a
// single positional argument names a workload config file (spec §6); the
// command bulk-loads or synthesizes a key population, runs a short mixed
// read/insert workload, and reports index stats.
package main

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/natefinch/atomic"

	"github.com/gdymind/buckindex/internal/config"
	"github.com/gdymind/buckindex/internal/workload"
	"github.com/gdymind/buckindex/pkg/buckindex"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	flags := flag.NewFlagSet("buckindex", flag.ContinueOnError)
	flags.SetOutput(&strings.Builder{}) // discard pflag's own error/usage output

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			fmt.Fprintln(stdout, "usage: buckindex <config-file>")
			return 0
		}

		fmt.Fprintln(stderr, "error:", err)

		return 1
	}

	positional := flags.Args()
	if len(positional) != 1 {
		fmt.Fprintln(stderr, "usage: buckindex <config-file>")
		return 1
	}

	configPath := positional[0]

	wl, err := config.LoadWorkload(configPath)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	opts := buckindex.DefaultOptions()

	if optPath := configPath + ".index.json"; fileExists(optPath) {
		opts, err = config.LoadIndexOptions(optPath)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
	}

	idx := buckindex.New(opts)

	rng := rand.New(rand.NewPCG(1, 2))

	if err := loadInitialPopulation(idx, wl, rng); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	runMixedWorkload(idx, wl, rng)

	st := idx.Stats()
	report := fmt.Sprintf(
		"height=%d segments=%d buckets=%d entries=%d memory_bytes=%d\n",
		st.Height, st.NumSegments, st.NumBuckets, st.NumEntries, idx.MemorySize(),
	)

	fmt.Fprint(stdout, report)

	statsPath := configPath + ".stats"
	if err := atomic.WriteFile(statsPath, strings.NewReader(report)); err != nil {
		fmt.Fprintln(stderr, "error: writing stats report:", err)
		return 1
	}

	return 0
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// loadInitialPopulation either bulk-loads wl.DataPath (a sorted "key
// value" text file) when wl.BulkLoad is set and wl.DataPath is non-empty,
// or synthesizes a uniform population of keys with Insert otherwise.
func loadInitialPopulation(idx *buckindex.Index, wl config.Workload, rng *rand.Rand) error {
	if wl.BulkLoad && wl.DataPath != "" {
		kvs, err := readDataFile(wl.DataPath)
		if err != nil {
			return err
		}

		idx.BulkLoad(kvs)

		return nil
	}

	const syntheticPopulation = 10_000

	keys := workload.Uniform(rng, syntheticPopulation, syntheticPopulation*4)
	for _, k := range keys {
		idx.Insert(k, k*10)
	}

	return nil
}

// readDataFile reads "key value" lines (decimal, whitespace-separated)
// and returns them sorted ascending by key, ready for BulkLoad.
func readDataFile(path string) ([]buckindex.KV, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading data file %s: %w", path, err)
	}
	defer f.Close()

	var kvs []buckindex.KV

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("data file %s: expected \"key value\", got %q", path, line)
		}

		k, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("data file %s: %w", path, err)
		}

		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("data file %s: %w", path, err)
		}

		kvs = append(kvs, buckindex.KV{Key: k, Value: v})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("data file %s: %w", path, err)
	}

	sort.Slice(kvs, func(i, j int) bool { return kvs[i].Key < kvs[j].Key })

	return kvs, nil
}

// runMixedWorkload issues a short, fixed-size run of reads and inserts
// against idx, split by wl.ReadRatio, grounded in original_source's
// benchmark driver per SPEC_FULL.md's SUPPLEMENTED FEATURES.
func runMixedWorkload(idx *buckindex.Index, wl config.Workload, rng *rand.Rand) {
	const opCount = 2_000

	ratio := wl.ReadRatio
	if ratio <= 0 {
		ratio = 0.9
	}

	for i := 0; i < opCount; i++ {
		if rng.Float64() < ratio {
			idx.Lookup(rng.Uint64N(40_000) + 1)
		} else {
			k := rng.Uint64N(40_000) + 1
			idx.Insert(k, k*10)
		}
	}
}
