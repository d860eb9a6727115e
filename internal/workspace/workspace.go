package workspace

import (
	"strings"
	"sync"
	"time"

	"workbench/internal/chat"
	"workbench/internal/contextmgr"
	"workbench/internal/i18n"
	"workbench/internal/provider"
	"workbench/internal/storage"

	"github.com/google/uuid"
)

// Variant 工作区变体 / Workspace variant
type Variant string

const (
	// VariantChat 通用聊天助手 / General chat assistant
	VariantChat Variant = "chat"
	// VariantBuilder 插件代码构建器 / Plugin code builder
	VariantBuilder Variant = "builder"
)

// EngineState 会话引擎状态机：Uninitialized → Initializing → Ready →
// Sending → Ready。发送失败记录为一条聊天消息后回到 Ready。
// EngineState is the per-session engine state machine: Uninitialized →
// Initializing → Ready → Sending → Ready. A failed send is recorded as
// a chat message and returns to Ready.
type EngineState int

const (
	StateUninitialized EngineState = iota
	StateInitializing
	StateReady
	StateSending
)

// Options 工作区配置 / Workspace options
type Options struct {
	Variant           Variant
	Model             string
	SystemPrompt      string
	DebounceMS        int
	ContextTokenLimit int
}

// Workspace 多会话 AI 工作区：会话集合、活动会话选择、会话引擎、
// 乐观追加与流式校正、防抖自动持久化。
// Workspace is the multi-session AI workspace: session collection,
// active-session selection, conversation engine, optimistic append
// with streaming reconciliation, and debounced auto-persist.
type Workspace struct {
	mu        sync.Mutex
	opts      Options
	store     storage.Store
	provider  provider.Provider
	tokenizer *contextmgr.Tokenizer
	persist   *debouncer

	sessions []storage.Session
	activeID string
	history  []chat.Message // 活动会话的重放上下文 / replayed context of the active session
	state    EngineState
	credErr  error
	inflight map[string]bool
}

// New 挂载工作区：从存储加载会话集合（按最近更新排序），为空时合成
// 一个新会话，并初始化活动会话的对话上下文。credErr 非空时引擎保持
// 未初始化，工作区仍可浏览但不能发送。
// New mounts the workspace: loads the collection from the store
// (sorted by recency), synthesizes a fresh session when empty, and
// initializes the active session's conversation context. A non-nil
// credErr leaves the engine uninitialized; the workspace stays
// browsable but cannot send.
func New(store storage.Store, prov provider.Provider, credErr error, opts Options) (*Workspace, error) {
	if opts.DebounceMS <= 0 {
		opts.DebounceMS = 500
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt(opts.Variant)
	}

	w := &Workspace{
		opts:      opts,
		store:     store,
		provider:  prov,
		tokenizer: contextmgr.NewTokenizerForModel(opts.Model),
		credErr:   credErr,
		inflight:  make(map[string]bool),
	}
	w.persist = newDebouncer(time.Duration(opts.DebounceMS)*time.Millisecond, w.flushTo)

	sessions, err := store.Load()
	if err != nil {
		return nil, err
	}
	w.sessions = sessions
	w.ensureNonEmptyLocked()
	w.activeID = w.sessions[0].ID
	w.initializeLocked()
	return w, nil
}

// --- Session lifecycle ---

// Sessions 返回会话集合的快照 / Sessions returns a collection snapshot
func (w *Workspace) Sessions() []storage.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]storage.Session, len(w.sessions))
	copy(out, w.sessions)
	return out
}

// Active 返回当前活动会话的副本
// Active returns a copy of the current active session
func (w *Workspace) Active() storage.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := w.indexOfLocked(w.activeID)
	if idx < 0 {
		return storage.Session{}
	}
	sess := w.sessions[idx]
	sess.Messages = append([]chat.Message(nil), sess.Messages...)
	return sess
}

// ActiveID 返回活动会话 ID / ActiveID returns the active session id
func (w *Workspace) ActiveID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeID
}

// State 返回活动会话的引擎状态 / State returns the active engine state
func (w *Workspace) State() EngineState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Loading 活动会话是否有在途请求；为真时调用方应禁用输入
// Loading reports whether the active session has a request in
// flight; callers disable input while true
func (w *Workspace) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inflight[w.activeID]
}

// Variant 返回工作区变体 / Variant returns the workspace variant
func (w *Workspace) Variant() Variant {
	return w.opts.Variant
}

// CredentialError 返回挂载时的凭据错误（若有）
// CredentialError returns the credential error from mount, if any
func (w *Workspace) CredentialError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.credErr
}

// NewSession 创建新会话：生成新 ID，插入集合头部，设为活动会话。
// 构建器变体播种一条助手问候。
// NewSession creates a session: fresh id, prepended so it sorts
// first, made active. The builder variant seeds one assistant
// greeting.
func (w *Workspace) NewSession() storage.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	sess := w.synthesizeLocked()
	w.sessions = append([]storage.Session{sess}, w.sessions...)
	w.activeID = sess.ID
	w.initializeLocked()
	w.persist.Schedule(sess.ID)
	return sess
}

// SwitchTo 切换活动会话，并以目标会话的存储历史重建对话上下文。
// 这是重建上下文的唯一触发点；切换不修改消息内容。
// SwitchTo changes the active session and rebuilds the conversation
// context from the target's stored history. It is the sole trigger
// for reinitialization; switching never mutates message content.
func (w *Workspace) SwitchTo(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.indexOfLocked(id) < 0 {
		return ErrSessionNotFound
	}
	w.activeID = id
	w.initializeLocked()
	return nil
}

// Delete 删除会话。确认交互由调用方负责。删除的是活动会话时：激活
// 剩余的第一个会话，否则合成一个全新会话——工作区挂载期间绝不会
// 出现零会话。
// Delete removes a session. Confirmation is owned by the caller. If
// the deleted session was active, the new first session is activated,
// or a brand-new one is synthesized — the workspace never holds zero
// sessions while mounted.
func (w *Workspace) Delete(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := w.indexOfLocked(id)
	if idx < 0 {
		return ErrSessionNotFound
	}
	w.sessions = append(w.sessions[:idx], w.sessions[idx+1:]...)
	delete(w.inflight, id)

	if w.activeID == id {
		w.ensureNonEmptyLocked()
		w.activeID = w.sessions[0].ID
		w.initializeLocked()
	}
	w.persist.Schedule(w.activeID)
	return nil
}

// --- Builder field edits ---

// SetName 设置插件名称 / SetName sets the plugin name
func (w *Workspace) SetName(v string) { w.setField(func(s *storage.Session) { s.Name = v }) }

// SetDescription 设置插件描述 / SetDescription sets the description
func (w *Workspace) SetDescription(v string) {
	w.setField(func(s *storage.Session) { s.Description = v })
}

// SetCode 直接编辑代码产物 / SetCode edits the code artifact directly
func (w *Workspace) SetCode(v string) { w.setField(func(s *storage.Session) { s.Code = v }) }

func (w *Workspace) setField(mutate func(*storage.Session)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := w.indexOfLocked(w.activeID)
	if idx < 0 {
		return
	}
	mutate(&w.sessions[idx])
	touch(&w.sessions[idx])
	w.persist.Schedule(w.activeID)
}

// --- Shutdown ---

// Flush 立即写出挂起的防抖写入 / Flush forces any pending write
func (w *Workspace) Flush() {
	w.persist.Flush(w.ActiveID())
}

// Close 冲刷并关闭存储 / Close flushes and closes the store
func (w *Workspace) Close() error {
	w.Flush()
	return w.store.Close()
}

// --- Internals ---

// initializeLocked 重建活动会话的重放上下文：过滤空消息并按 token
// 预算截断，模拟 Uninitialized/Ready → Initializing → Ready 迁移。
// initializeLocked rebuilds the active session's replayed context:
// empty turns filtered, history trimmed to the token budget.
func (w *Workspace) initializeLocked() {
	if w.credErr != nil || w.provider == nil {
		w.state = StateUninitialized
		w.history = nil
		return
	}
	w.state = StateInitializing
	idx := w.indexOfLocked(w.activeID)
	if idx < 0 {
		w.history = nil
		w.state = StateReady
		return
	}
	history := make([]chat.Message, 0, len(w.sessions[idx].Messages))
	for _, msg := range w.sessions[idx].Messages {
		if msg.IsEmpty() {
			continue
		}
		history = append(history, msg)
	}
	w.history = contextmgr.TrimToBudget(w.tokenizer, history, w.opts.ContextTokenLimit)
	w.state = StateReady
}

func (w *Workspace) ensureNonEmptyLocked() {
	if len(w.sessions) > 0 {
		return
	}
	w.sessions = []storage.Session{w.synthesizeLocked()}
}

func (w *Workspace) synthesizeLocked() storage.Session {
	now := storage.NowUTC()
	sess := storage.Session{
		ID:        storage.NewSessionID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if w.opts.Variant == VariantBuilder {
		sess.Messages = []chat.Message{chat.NewMessage(chat.RoleAssistant, i18n.T("builder.greeting"))}
	}
	return sess
}

func (w *Workspace) indexOfLocked(id string) int {
	for i := range w.sessions {
		if w.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// flushTo 防抖回调：整体写出集合。sessionID 是调度时捕获的目标会话。
// flushTo is the debounce callback: writes the whole collection. The
// sessionID was captured when the write was scheduled.
func (w *Workspace) flushTo(sessionID string) {
	w.mu.Lock()
	snapshot := make([]storage.Session, len(w.sessions))
	copy(snapshot, w.sessions)
	w.mu.Unlock()
	_ = sessionID // 集合整体写入，ID 仅用于调度语义 / whole-collection write
	_ = w.store.Save(snapshot)
}

func touch(s *storage.Session) {
	s.UpdatedAt = storage.NowUTC()
}

func deriveTitle(text string) string {
	t := strings.TrimSpace(text)
	runes := []rune(t)
	if len(runes) > 48 {
		return string(runes[:48]) + "..."
	}
	return t
}

func newMessageID() string {
	return uuid.NewString()
}
