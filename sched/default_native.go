//go:build !js

package sched

// Default returns the bridge for the current build target: a parallel
// goroutine pool on native builds.
func Default() Bridge {
	return NewNative(NativeConfig{})
}
