package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/theirongolddev/edcost/internal/model"
	"github.com/theirongolddev/edcost/internal/source"
	"github.com/theirongolddev/edcost/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers, diffs against cache, parses only changed files,
// and returns the combined dataset in file order.
func LoadWithCache(path string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	// Diff: partition into changed and unchanged
	type stamp struct{ mtimeNs, size int64 }
	stamps := make([]stamp, len(files))
	var toReparse []source.DiscoveredFile
	var reparseIdx []int
	var unchanged []string
	keep := make([]string, 0, len(files))

	for i, f := range files {
		keep = append(keep, f.Path)
		info, err := os.Stat(f.Path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Path, err)
		}
		stamps[i] = stamp{info.ModTime().UnixNano(), info.Size()}

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == stamps[i].mtimeNs && cached.SizeBytes == stamps[i].size {
			unchanged = append(unchanged, f.Path)
		} else {
			toReparse = append(toReparse, f)
			reparseIdx = append(reparseIdx, i)
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	cached, err := cache.LoadPrograms(unchanged)
	if err != nil {
		return nil, fmt.Errorf("loading cached programs: %w", err)
	}
	if progressFn != nil && result.CacheHits > 0 {
		progressFn(result.CacheHits, result.TotalFiles)
	}

	parsed := parseFiles(toReparse, func(n int) {
		if progressFn != nil {
			progressFn(n+result.CacheHits, result.TotalFiles)
		}
	})

	byPath := make(map[string][]model.Program, len(files))
	for p, programs := range cached {
		byPath[p] = programs
	}
	for j, pr := range parsed {
		if pr.Err != nil {
			return nil, fmt.Errorf("parsing %s: %w", pr.File.Path, pr.Err)
		}
		byPath[pr.File.Path] = pr.Programs

		st := stamps[reparseIdx[j]]
		if err := cache.SaveFile(pr.File.Path, pr.Programs, st.mtimeNs, st.size); err != nil {
			slog.Debug("cache save failed", "file", pr.File.Path, "error", err)
		}
	}

	if n, err := cache.Prune(keep); err != nil {
		slog.Debug("cache prune failed", "error", err)
	} else if n > 0 {
		slog.Debug("cache pruned", "files", n)
	}

	var programs []model.Program
	for _, f := range files {
		programs = append(programs, byPath[f.Path]...)
		result.ParsedFiles++
	}

	result.Dataset = newDataset(programs)
	result.CountryCount = CountCountries(programs)
	slog.Debug("dataset loaded",
		"dataset", result.Dataset.ID,
		"programs", len(programs),
		"cache_hits", result.CacheHits,
		"reparsed", result.Reparsed)
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "edcost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "edcost")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "programs.db")
}
