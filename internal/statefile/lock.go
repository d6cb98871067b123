package statefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const lockRetryWait = 25 * time.Millisecond

// LockPath returns the lock file guarding a state document. The lock lives
// next to the document so overlapping runs sharing a state dir contend on
// the same file.
func LockPath(statePath string) string {
	return statePath + ".lck"
}

// WithLock runs fn while holding an exclusive advisory lock. Ledger mutators
// must acquire the lock, reload the on-disk snapshot, mutate and flush before
// releasing, so two overlapping runs serialize on every read-modify-write.
func WithLock(ctx context.Context, lockPath string, fn func() error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := EnsureDir(filepath.Dir(lockPath)); err != nil {
		return err
	}
	return withLockFile(ctx, lockPath, fn)
}

func writeLockOwner(file *os.File, lockPath string) {
	if file == nil {
		return
	}
	host, _ := os.Hostname()
	payload := map[string]any{
		"lock_path":   lockPath,
		"pid":         os.Getpid(),
		"hostname":    host,
		"acquired_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_ = file.Truncate(0)
	_, _ = file.Seek(0, 0)
	_, _ = file.Write(data)
	_ = file.Sync()
}

func waitForLockRetry(ctx context.Context, lockPath string) error {
	timer := time.NewTimer(lockRetryWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %v", ErrLockTimeout, lockPath, ctx.Err())
	case <-timer.C:
		return nil
	}
}
