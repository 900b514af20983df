// Package cpuspec reports host CPU characteristics used to size the worker
// pool for offline rendering and benchmarking. Adapted from the teacher's
// cpuspec package (BirdNET inference thread sizing); the brand-name-based
// P-core table is unchanged since it describes host hardware, not the
// analysis domain.
package cpuspec

import (
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Spec describes the host CPU relevant to sizing a render/bench worker pool.
type Spec struct {
	BrandName        string
	LogicalCores     int
	PerformanceCores int
}

// Detect returns the host CPU's spec.
func Detect() Spec {
	brand := cpuid.CPU.BrandName
	return Spec{
		BrandName:        brand,
		LogicalCores:     cpuid.CPU.LogicalCores,
		PerformanceCores: performanceCores(brand),
	}
}

// OptimalWorkers returns the recommended number of concurrent render/bench
// workers: the host's performance-core count when known (hybrid
// architectures should not schedule graph-processing goroutines onto
// efficiency cores), falling back to every logical core otherwise.
func (s Spec) OptimalWorkers() int {
	available := runtime.NumCPU()
	if s.PerformanceCores > 0 {
		if s.PerformanceCores > available {
			return available
		}
		return s.PerformanceCores
	}
	if s.LogicalCores > 0 && s.LogicalCores < available {
		return s.LogicalCores
	}
	return available
}

// performanceCores maps known hybrid brand strings to their P-core count.
// Unlisted or non-hybrid CPUs return 0 (caller falls back to logical cores).
func performanceCores(brand string) int {
	b := strings.ToLower(brand)
	switch {
	case strings.Contains(b, "i9-149") || strings.Contains(b, "i7-147") || strings.Contains(b, "i9-139") || strings.Contains(b, "i7-137"):
		return 8
	case strings.Contains(b, "i5-146") || strings.Contains(b, "i5-136") || strings.Contains(b, "i5-126"):
		return 6
	case strings.Contains(b, "ultra 9"):
		return 8
	case strings.Contains(b, "ultra 7"):
		return 8
	case strings.Contains(b, "ultra 5"):
		return 6
	case strings.Contains(b, "m1 ultra"):
		return 16
	case strings.Contains(b, "m2 ultra"), strings.Contains(b, "m3 ultra"):
		return 24
	case strings.Contains(b, "m1 max"), strings.Contains(b, "m2 max"):
		return 8
	case strings.Contains(b, "m3 max"), strings.Contains(b, "m4 max"):
		return 12
	case strings.Contains(b, "m1 pro"), strings.Contains(b, "m2 pro"), strings.Contains(b, "m3 pro"), strings.Contains(b, "m4 pro"):
		return 8
	case strings.Contains(b, "apple m1"), strings.Contains(b, "apple m2"), strings.Contains(b, "apple m3"):
		return 4
	case strings.Contains(b, "apple m4"):
		return 6
	default:
		return 0
	}
}
