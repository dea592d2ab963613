// Package buildstats logs per-level build progress and memory statistics,
// adapted from the renderer's frame profiler
// (Carmen-Shannon-oxy-go/engine/profiler/profiler.go) for a build that
// advances in discrete LOD levels rather than frames: instead of a
// fixed-interval tick, LevelComplete logs once per level, each level
// potentially taking anywhere from milliseconds to minutes.
package buildstats

import (
	"log"
	"runtime"
	"time"
)

// Stats tracks elapsed time and memory statistics across the build's
// levels, logging a summary line each time a level finishes.
type Stats struct {
	startTime      time.Time
	lastLevelTime  time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// New creates a Stats tracker, starting its clock immediately.
//
// Returns:
//   - *Stats: the newly created tracker
func New() *Stats {
	now := time.Now()
	return &Stats{startTime: now, lastLevelTime: now}
}

// LevelComplete logs a summary line for a finished level: its wall-clock
// duration, cluster/triangle counts, heap usage, allocation rate, and GC
// pause stats since the previous level.
//
// Parameters:
//   - level: the level index that just finished (0 = source meshlets)
//   - clusterCount: total clusters produced so far, across all levels
//   - triangleCount: total triangles this level's clusters cover
func (s *Stats) LevelComplete(level, clusterCount, triangleCount int) {
	now := time.Now()
	elapsed := now.Sub(s.lastLevelTime)

	runtime.ReadMemStats(&s.memStats)
	allocMB := float64(s.memStats.Alloc) / 1024 / 1024
	sysMB := float64(s.memStats.Sys) / 1024 / 1024

	allocDelta := s.memStats.TotalAlloc - s.lastTotalAlloc
	allocRateMB := 0.0
	if elapsed.Seconds() > 0 {
		allocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()
	}

	gcCount := s.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = s.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := s.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := s.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Printf("[BuildStats] Level %d | Clusters: %d (total) | Triangles: %d | Elapsed: %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		level, clusterCount, triangleCount, elapsed.Round(time.Millisecond),
		allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	s.lastLevelTime = now
	s.lastGCCount = gcCount
	s.lastTotalAlloc = s.memStats.TotalAlloc
}

// TotalElapsed returns the wall-clock duration since the Stats tracker was
// created, for a final summary line once the whole build finishes.
func (s *Stats) TotalElapsed() time.Duration {
	return time.Since(s.startTime)
}
