//go:build !linux && !darwin

package tuner

import (
	"runtime"
)

// Detect reports the logical CPU count. Memory is left unknown on this
// platform, so Workers bounds the count by cores alone.
func Detect() (SystemResources, error) {
	return SystemResources{
		CPUCores: runtime.NumCPU(),
	}, nil
}
