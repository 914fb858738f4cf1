// Package cpufeature centralizes the runtime CPU feature checks used to
// pick between the vector and scalar scan paths, and to describe the
// detected features for logging.
package cpufeature

import "golang.org/x/sys/cpu"

// HasWordCompare gates the SWAR word-parallel scan in charclass.go. It
// reports true when SSE4.2 or AVX2 (amd64), ASIMD (arm64) or the vector
// facility (s390x) is detected, and false otherwise, including on amd64
// CPUs with neither SSE4.2 nor AVX2. The scalar lookup-table fallback
// covers those hosts and is the correctness baseline the vector path is
// checked against.
func HasWordCompare() bool {
	return cpu.X86.HasSSE42 || cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD || cpu.S390X.HasVX
}

// Summary describes the detected feature set, for structured logging in
// cmd/rowcut-ingest.
type Summary struct {
	AMD64SSE42 bool
	AMD64AVX2  bool
	ARM64ASIMD bool
}

// Detect returns the current machine's Summary.
func Detect() Summary {
	return Summary{
		AMD64SSE42: cpu.X86.HasSSE42,
		AMD64AVX2:  cpu.X86.HasAVX2,
		ARM64ASIMD: cpu.ARM64.HasASIMD,
	}
}
