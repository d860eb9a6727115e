package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewSessionID 生成新的会话 ID / Generates a new session ID
func NewSessionID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("sess_%d_%s", time.Now().UTC().Unix(), hex.EncodeToString(buf))
}

// NowUTC 返回 RFC3339 格式的当前 UTC 时间戳
// NowUTC returns the current UTC timestamp in RFC3339
func NowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
