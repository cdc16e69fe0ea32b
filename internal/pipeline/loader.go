// Package pipeline loads program tables from disk into a shared Dataset.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Dataset      *model.Dataset
	TotalFiles   int
	ParsedFiles  int
	CountryCount int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every CSV table under path. Any malformed file
// aborts the load; no partial dataset is returned.
func Load(path string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	results := parseFiles(files, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})

	var programs []model.Program
	for _, pr := range results {
		if pr.Err != nil {
			return nil, fmt.Errorf("parsing %s: %w", pr.File.Path, pr.Err)
		}
		result.ParsedFiles++
		programs = append(programs, pr.Programs...)
	}

	result.Dataset = newDataset(programs)
	result.CountryCount = CountCountries(programs)
	return result, nil
}

// parseFiles parses files with a bounded worker pool. Results keep the order
// of files. done is called with the running count after each file.
func parseFiles(files []source.DiscoveredFile, done func(n int)) []source.ParseResult {
	results := make([]source.ParseResult, len(files))
	if len(files) == 0 {
		return results
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				done(int(processed.Add(1)))
			}
		}()
	}

	wg.Wait()
	return results
}

func newDataset(programs []model.Program) *model.Dataset {
	return &model.Dataset{ID: uuid.NewString(), Programs: programs}
}

// CountCountries returns the number of distinct countries in programs.
func CountCountries(programs []model.Program) int {
	seen := make(map[string]struct{})
	for _, p := range programs {
		seen[p.Country] = struct{}{}
	}
	return len(seen)
}
