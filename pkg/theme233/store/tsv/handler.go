package tsv

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// TsvHandler TSV 格式处理器
// 每行 "key<TAB>value"，"#" 开头的行为注释，首行为 "key<TAB>value" 表头时跳过
type TsvHandler struct{}

// TypeName 返回处理器类型名
// 返回值:
//
//	string: "tsv"
func (h *TsvHandler) TypeName() string {
	return "tsv"
}

// Parse 解析 TSV 内容
func (h *TsvHandler) Parse(name string, data []byte) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "\t")
		key = strings.TrimSpace(key)
		if !found {
			return nil, fmt.Errorf("%s 第 %d 行缺少制表符分隔", name, lineNo)
		}
		if lineNo == 1 && strings.EqualFold(key, "key") && strings.EqualFold(strings.TrimSpace(value), "value") {
			continue
		}
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", name, err)
	}
	return out, nil
}
