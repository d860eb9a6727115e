package workspace

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_+-]*)\\n(.*?)\\n?```")

// ExtractCode 从模型响应中提取代码产物。优先匹配围栏代码块：块内
// 内容成为新产物，展示文本中的围栏替换为 marker。没有围栏但正文以
// <?php 开头时走启发式回退——这只是尽力而为的猜测，不是可靠契约。
// ExtractCode pulls the code artifact out of a model response. A
// fenced code block wins: its body becomes the artifact and the fence
// is replaced by marker in the display text. With no fence, a body
// starting with <?php is accepted whole via a best-effort heuristic;
// this is a guess, not a reliable contract.
func ExtractCode(response, marker string) (code, display string, ok bool) {
	match := fenceRe.FindStringSubmatchIndex(response)
	if match != nil {
		code = response[match[2]:match[3]]
		display = strings.TrimSpace(response[:match[0]] + marker + response[match[1]:])
		return code, display, true
	}

	// 启发式回退：裸 PHP 载荷 / Heuristic fallback: bare PHP payload
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "<?php") {
		return trimmed, marker, true
	}

	return "", response, false
}
