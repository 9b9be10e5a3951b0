package partition

import (
	"strconv"
	"testing"
)

func TestFor_Determinism(t *testing.T) {
	id := For("device-abc", 16)
	for i := 0; i < 100; i++ {
		if got := For("device-abc", 16); got != id {
			t.Fatalf("For(\"device-abc\", 16) = %d on iteration %d, want %d", got, i, id)
		}
	}
}

func TestFor_Range(t *testing.T) {
	inputs := []string{"", "a", "device-1", "device-2", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"}
	for _, n := range []int{1, 3, 16} {
		for _, s := range inputs {
			p := For(s, n)
			if p < 0 || p >= n {
				t.Errorf("For(%q, %d) = %d, want [0, %d)", s, n, p, n)
			}
		}
	}
}

func TestFor_SingleShard(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if got := For("device-1", n); got != 0 {
			t.Errorf("For(device-1, %d) = %d, want 0", n, got)
		}
	}
}

func TestFor_Distribution(t *testing.T) {
	// 1000 devices over 8 shards should touch every shard.
	seen := make(map[int]struct{})
	for i := 0; i < 1000; i++ {
		seen[For("device-"+strconv.Itoa(i), 8)] = struct{}{}
	}
	if len(seen) != 8 {
		t.Errorf("only %d distinct shards from 1000 inputs, want 8", len(seen))
	}
}
