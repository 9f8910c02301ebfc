package transform

import "strings"

// FallbackProcess 本地启发式加工：在 LLM 不可用时从原始内容中提取
// 标题与摘要，分类固定为默认值。输出格式与 LLM 单条返回保持一致。
func FallbackProcess(content string) string {
	lines := strings.Split(content, "\n")

	// 提取标题：优先带"标题"标记的行，否则取第一条长度合适的行
	var title string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len([]rune(line)) <= 5 {
			continue
		}
		if strings.Contains(line, "标题") {
			title = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "标题："), "标题:"))
			break
		}
		if len([]rune(line)) < 100 {
			title = line
			break
		}
	}
	if title == "" {
		title = "AI行业最新动态"
	}

	// 提取摘要：去重后保留前3行，最长200字
	var contentLines []string
	seen := make(map[string]bool)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len([]rune(line)) <= 10 || seen[line] {
			continue
		}
		seen[line] = true
		contentLines = append(contentLines, line)
		if len(contentLines) >= 3 {
			break
		}
	}
	summary := strings.Join(contentLines, " ")
	if r := []rune(summary); len(r) > 200 {
		summary = string(r[:200]) + "..."
	}
	if summary == "" {
		summary = "暂无详细摘要"
	}

	return "标题：" + title + "\n摘要：" + summary + "\n分类：技术突破"
}
