package audit

import "github.com/redis/go-redis/v9"

// The scripts below keep the existence check and the dependent writes in a
// single atomic unit. Separate check-then-act round trips would race with
// concurrent callers mutating the same memory id.

// addScript rejects a duplicate id, otherwise pushes it onto the head of the
// queue and records status and data.
// KEYS: queue list, status hash, data hash. ARGV: id, status, record JSON.
var addScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[2], ARGV[1]) == 1 then
	return 0
end
redis.call("LPUSH", KEYS[1], ARGV[1])
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
redis.call("HSET", KEYS[3], ARGV[1], ARGV[3])
return 1
`)

// reviewScript sets the new status and, when the record JSON is supplied,
// replaces the stored data in the same unit.
// KEYS: status hash, data hash. ARGV: id, status, record JSON ("" to skip).
var reviewScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
if ARGV[3] ~= "" then
	redis.call("HSET", KEYS[2], ARGV[1], ARGV[3])
end
return 1
`)

// deleteScript removes every trace of an id: all queue occurrences plus the
// status and data entries.
// KEYS: queue list, status hash, data hash. ARGV: id.
var deleteScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[2], ARGV[1]) == 0 then
	return 0
end
redis.call("LREM", KEYS[1], 0, ARGV[1])
redis.call("HDEL", KEYS[2], ARGV[1])
redis.call("HDEL", KEYS[3], ARGV[1])
return 1
`)
