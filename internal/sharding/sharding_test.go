package sharding

import (
	"fmt"
	"testing"
)

func TestGetShardID(t *testing.T) {
	tests := []struct {
		guildID string
		want    int
	}{
		{"guild-1", 201},
		{"guild-2", 115},
		{"guild-howling-void", 181},
	}

	for _, tt := range tests {
		t.Run(tt.guildID, func(t *testing.T) {
			if got := GetShardID(tt.guildID); got != tt.want {
				t.Errorf("GetShardID(%q) = %v, want %v", tt.guildID, got, tt.want)
			}
		})
	}
}

func TestRefreshSubject(t *testing.T) {
	subject := RefreshSubject("guild-1")
	expected := "tracker.refresh.201.guild.guild-1"
	if subject != expected {
		t.Errorf("RefreshSubject = %v, want %v", subject, expected)
	}
}

func TestStableSharding(t *testing.T) {
	// Ensure that the sharding is deterministic and stable
	id := "test-stable-id"
	shard1 := GetShardID(id)
	shard2 := GetShardID(id)

	if shard1 != shard2 {
		t.Errorf("Sharding is not deterministic! %d != %d", shard1, shard2)
	}
}

func TestDistribution(t *testing.T) {
	// Rough check to ensure we don't map everything to shard 0
	distribution := make(map[int]int)
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("guild-%d", i)
		shard := GetShardID(key)
		distribution[shard]++
	}

	if len(distribution) < 100 {
		t.Errorf("Sharding distribution is too poor. Only %d unique shards used for 1000 keys", len(distribution))
	}
}
