package ai

import (
	"sync"
	"testing"
)

func TestEnableDebugLogging(t *testing.T) {
	t.Cleanup(func() { EnableDebugLogging(false) })

	for _, enabled := range []bool{true, false, true} {
		EnableDebugLogging(enabled)
		if got := IsDebugEnabled(); got != enabled {
			t.Errorf("IsDebugEnabled() after EnableDebugLogging(%v) = %v", enabled, got)
		}
	}
}

func TestIsDebugEnabled_Concurrent(t *testing.T) {
	t.Cleanup(func() { EnableDebugLogging(false) })

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			for range 1000 {
				if i%10 == 0 {
					EnableDebugLogging(true)
				}
				_ = IsDebugEnabled()
			}
		})
	}
	wg.Wait()
}
