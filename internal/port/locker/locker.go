package locker

import "context"

// AdvisoryLocker serialises critical sections. The Postgres adapter uses
// session advisory locks; WithLock ensures lock and unlock occur on the same
// DB connection, which session-level pg_advisory_lock semantics require.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
