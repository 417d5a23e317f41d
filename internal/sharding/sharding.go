package sharding

import (
	"fmt"
	"hash/crc32"
)

// ShardCount is the fixed number of partitions for refresh subjects.
// Refreshes for one guild always land on the same shard, keeping board
// edits for a guild ordered.
const ShardCount = 256

// GetShardID calculates the deterministic shard ID for a guild.
func GetShardID(guildID string) int {
	checksum := crc32.ChecksumIEEE([]byte(guildID))
	return int(checksum % ShardCount)
}

// RefreshSubject returns the NATS subject for a guild's board refreshes.
// Format: tracker.refresh.{shard_id}.guild.{guild_id}
func RefreshSubject(guildID string) string {
	return fmt.Sprintf("tracker.refresh.%d.guild.%s", GetShardID(guildID), guildID)
}
