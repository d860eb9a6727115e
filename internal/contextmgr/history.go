package contextmgr

import "workbench/internal/chat"

// TrimToBudget 从最新消息往回保留不超过 token 预算的历史。
// 重放长会话时在这里截断，而不是把整段历史塞进上下文。
// TrimToBudget keeps the newest messages whose combined token count
// fits the budget. Replayed history for conversation reinitialization
// is truncated here rather than shipping the whole transcript.
func TrimToBudget(t *Tokenizer, messages []chat.Message, budget int) []chat.Message {
	if budget <= 0 || len(messages) == 0 {
		return messages
	}
	if t == nil {
		t = DefaultTokenizer()
	}

	total := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		cost := t.countMessage(messages[i])
		if total+cost > budget && start < len(messages) {
			break
		}
		total += cost
		start = i
	}
	if start == 0 {
		return messages
	}
	return append([]chat.Message(nil), messages[start:]...)
}
