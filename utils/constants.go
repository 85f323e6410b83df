package utils

import "time"

// LockPrefix namespaces the Redis keys held by RedisLocker.
const LockPrefix = "lock:"

// LockTTL bounds how long a crashed holder can block a key. It must outlast
// the slowest guarded call, the payment confirm timeout included.
const LockTTL = 90 * time.Second
