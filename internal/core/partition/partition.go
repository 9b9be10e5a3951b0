package partition

import "hash/fnv"

// For returns the shard in [0, n) that deviceID belongs to. The mapping is
// stable, so every event of one device lands on the same shard and is
// replayed in order by a single worker. n <= 1 always yields shard 0.
func For(deviceID string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(n))
}
