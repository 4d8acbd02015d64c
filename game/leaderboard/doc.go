// Package leaderboard records completed puzzles and ranks them by completion time.
//
// Entries are ranked fastest first; equal times keep the order they were recorded in.
// A new entry receives the highest existing ID plus one, starting at 0.
//
// Three stores implement Store:
//   - MemoryStore keeps entries in process memory
//   - FileStore keeps them in a JSON file
//   - RedisStore keeps them in Redis, indexed by sorted sets per difficulty
package leaderboard
