package room

import "testing"

func TestRandomSpawnPointsDistinct(t *testing.T) {
	for _, count := range []int{1, 4, 8, len(spawnPoints)} {
		points := RandomSpawnPoints(count)
		if len(points) != count {
			t.Fatalf("count %d: got %d points", count, len(points))
		}
		seen := make(map[[2]float64]bool, count)
		for _, p := range points {
			if seen[p] {
				t.Fatalf("count %d: spawn point %v dealt twice", count, p)
			}
			seen[p] = true
		}
	}
}

func TestRandomSpawnPointsBounds(t *testing.T) {
	if RandomSpawnPoints(0) != nil {
		t.Fatal("expected nil for count 0")
	}
	if RandomSpawnPoints(len(spawnPoints)+1) != nil {
		t.Fatal("expected nil for count above table size")
	}
}
