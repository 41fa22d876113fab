package properties

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// PropertiesHandler properties 格式处理器
// 支持 "#" 和 "!" 注释、"="、":" 或空白分隔符以及行尾反斜杠续行
// 除续行外不处理转义，值中的 "\{" 原样交给引用解析
type PropertiesHandler struct{}

// TypeName 返回处理器类型名
func (h *PropertiesHandler) TypeName() string {
	return "properties"
}

// Parse 解析 properties 内容
func (h *PropertiesHandler) Parse(name string, data []byte) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending strings.Builder
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if pending.Len() > 0 {
			line = strings.TrimLeft(line, " \t\f")
		} else {
			trimmed := strings.TrimLeft(line, " \t\f")
			if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '!' {
				continue
			}
			line = trimmed
		}

		if continues(line) {
			pending.WriteString(line[:len(line)-1])
			continue
		}
		pending.WriteString(line)
		key, value := splitEntry(pending.String())
		pending.Reset()
		if key == "" {
			return nil, fmt.Errorf("%s 第 %d 行缺少 key", name, lineNo)
		}
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", name, err)
	}
	if pending.Len() > 0 {
		key, value := splitEntry(pending.String())
		if key != "" {
			out[key] = value
		}
	}
	return out, nil
}

// continues 行尾有奇数个反斜杠时表示续行
func continues(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func splitEntry(line string) (string, string) {
	sep := -1
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' {
			i++
			continue
		}
		if c == '=' || c == ':' || c == ' ' || c == '\t' || c == '\f' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return line, ""
	}
	key := line[:sep]
	rest := strings.TrimLeft(line[sep:], " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = strings.TrimLeft(rest[1:], " \t\f")
	}
	return key, rest
}
