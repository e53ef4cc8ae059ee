//go:build debug

package shardstore

import (
	"bytes"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A finalizer panic runs on its own goroutine; it cannot be caught by a
// recover() anywhere in the test goroutine, it crashes the process. So this
// re-execs the test binary to run leakUnreleasedLease in a child process and
// asserts that the child actually crashes, with the shard id in its output.
const leakCrasherEnv = "SHARDSTORE_LEASE_LEAK_CRASHER"

func TestIntentLease_ReleasedLeaseDoesNotPanic(t *testing.T) {
	s := &Store{}
	func() {
		lease := s.AcquireLease("tenant-1/0000")
		lease.Release()
	}()

	assert.NotPanics(t, func() {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	})
}

func TestIntentLease_UnreleasedLeasePanicsOnFinalize(t *testing.T) {
	if os.Getenv(leakCrasherEnv) == "1" {
		leakUnreleasedLease()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestIntentLease_UnreleasedLeasePanicsOnFinalize")
	cmd.Env = append(os.Environ(), leakCrasherEnv+"=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.Error(t, err, "expected the child process to crash on an unreleased intent lease")
	exitErr, ok := err.(*exec.ExitError)
	require.True(t, ok, "expected an *exec.ExitError, got %T: %v", err, err)
	assert.False(t, exitErr.Success())
	assert.Contains(t, stderr.String(), "tenant-1/0000")
	assert.Contains(t, stderr.String(), "was never released")
}

// leakUnreleasedLease acquires a lease, drops it without releasing, and
// forces enough GC cycles for its finalizer to fire and panic.
func leakUnreleasedLease() {
	s := &Store{}
	func() {
		_ = s.AcquireLease("tenant-1/0000")
	}()
	for i := 0; i < 10; i++ {
		runtime.GC()
		time.Sleep(50 * time.Millisecond)
	}
}
