package workspace

import (
	"sync"
	"time"
)

// debouncer 将密集的编辑合并为一次延迟写入（仅触发后沿）。
// 回调拿到的是调度时刻捕获的会话 ID，而不是触发时刻的当前值，
// 避免快速切换会话后把新编辑写错会话。
// debouncer collapses bursts of edits into one trailing-edge write.
// The callback receives the session id captured at schedule time, not
// whatever is current when the timer fires, so a fast session switch
// cannot redirect a pending write.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fire  func(sessionID string)
}

func newDebouncer(delay time.Duration, fire func(sessionID string)) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

// Schedule 取消未触发的写入并重新计时
// Schedule cancels any pending write and restarts the quiet interval
func (d *debouncer) Schedule(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	id := sessionID
	d.timer = time.AfterFunc(d.delay, func() {
		d.clear()
		d.fire(id)
	})
}

// Flush 立即执行未触发的写入（退出前调用）
// Flush runs a pending write immediately (called before shutdown)
func (d *debouncer) Flush(sessionID string) {
	d.mu.Lock()
	pending := d.timer != nil && d.timer.Stop()
	d.timer = nil
	d.mu.Unlock()
	if pending {
		d.fire(sessionID)
	}
}

func (d *debouncer) clear() {
	d.mu.Lock()
	d.timer = nil
	d.mu.Unlock()
}
