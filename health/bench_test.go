package health

import (
	"fmt"
	"testing"
)

// BenchmarkThreshold_Classify measures single classification cost.
func BenchmarkThreshold_Classify(b *testing.B) {
	th := DefaultThresholds().DiskFreePercent

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = th.Classify(float64(i % 100))
	}
}

// BenchmarkRollupHost measures host rollup over all check kinds.
func BenchmarkRollupHost(b *testing.B) {
	kinds := AllCheckKinds()
	results := make([]CheckResult, len(kinds))
	for i, k := range kinds {
		results[i] = CheckResult{Kind: k, Severity: Severity(i%4)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = RollupHost(true, results)
	}
}

// BenchmarkRollupRun measures run rollup with varying host counts.
func BenchmarkRollupRun(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		hosts := make([]HostReport, n)
		for i := range hosts {
			hosts[i].Overall = Severity(i % 5)
		}
		b.Run(fmt.Sprintf("hosts=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = RollupRun(hosts)
			}
		})
	}
}
