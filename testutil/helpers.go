package testutil

import (
	"context"
	"testing"
	"time"
)

const defaultTestTimeout = 30 * time.Second

// TestContext 随测试结束取消，最长 30 秒
func TestContext(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(t.Context(), defaultTestTimeout)
	t.Cleanup(cancel)
	return ctx
}

// AssertEventuallyTrue 在 timeout 内轮询 condition，超时记为失败
func AssertEventuallyTrue(t testing.TB, condition func() bool, timeout time.Duration) {
	t.Helper()
	tick := time.NewTicker(2 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(timeout)
	for !condition() {
		select {
		case <-tick.C:
		case <-deadline:
			if !condition() {
				t.Errorf("condition not met within %v", timeout)
			}
			return
		}
	}
}
