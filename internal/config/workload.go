// Package config loads the two configuration artifacts buckindex's
// command-line front end accepts: the workload config file spec §6
// mandates (plain "key value" lines) and an optional JSONC file of
// build-time index switches.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdymind/buckindex/pkg/buckindex"
)

// Workload holds the config-loader keys spec §6 recognizes.
type Workload struct {
	DataPath  string
	BulkLoad  bool
	ReadRatio float64
}

var workloadKeys = map[string]bool{
	"g_data_path":  true,
	"g_bulk_load":  true,
	"g_read_ratio": true,
}

// LoadWorkload parses a text file of "key value" lines, whitespace
// separated, "#"-comment-aware. Per spec §6, a missing file or an
// unrecognized key is an error.
func LoadWorkload(path string) (Workload, error) {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied CLI argument
	if err != nil {
		return Workload{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var w Workload

	scanner := bufio.NewScanner(f)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return Workload{}, fmt.Errorf("config: %s:%d: expected \"key value\", got %q: %w",
				path, lineNo, line, buckindex.ErrConfigInvalid)
		}

		key, value := fields[0], strings.Join(fields[1:], " ")

		if !workloadKeys[key] {
			return Workload{}, fmt.Errorf("config: %s:%d: unknown key %q: %w",
				path, lineNo, key, buckindex.ErrConfigUnknownKey)
		}

		if err := w.set(key, value); err != nil {
			return Workload{}, fmt.Errorf("config: %s:%d: %w: %w", path, lineNo, buckindex.ErrConfigInvalid, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return Workload{}, fmt.Errorf("config: %s: %w", path, err)
	}

	return w, nil
}

func (w *Workload) set(key, value string) error {
	switch key {
	case "g_data_path":
		w.DataPath = value
	case "g_bulk_load":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("g_bulk_load: %w", err)
		}

		w.BulkLoad = b
	case "g_read_ratio":
		r, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("g_read_ratio: %w", err)
		}

		w.ReadRatio = r
	}

	return nil
}
