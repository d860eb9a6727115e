package i18n

// ZhCNMessages 简体中文消息目录 / Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// UI - 侧边栏
	"sidebar.sessions": "会话",
	"sidebar.model":    "模型",
	"sidebar.variant":  "工作区",

	// UI - 状态栏
	"status.ready":     "就绪",
	"status.streaming": "流式输出中...",
	"status.sending":   "发送中...",

	// UI - 输入
	"input.placeholder": "输入消息... (Shift+Enter 换行)",

	// UI - 会话操作
	"session.new":            "新会话",
	"session.confirm_delete": "删除会话 %q？[y/N]",
	"session.deleted":        "会话已删除",

	// 工作区变体
	"variant.chat":    "聊天",
	"variant.builder": "插件构建器",

	// 构建器
	"builder.greeting":      "你好！告诉我插件要实现什么功能，我来生成代码。",
	"builder.code_marker":   "[代码已更新 — 请查看代码面板]",
	"builder.name_required": "请先用 /name 给插件命名，然后再开始构建。",

	// 错误
	"error.remote":         "抱歉，调用模型时出错了：%v",
	"error.no_credential":  "未配置 API key。请设置 provider.api_key 或导出 WORKBENCH_API_KEY。",
	"error.session_exists": "会话 %s 已存在",
}
