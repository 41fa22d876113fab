package theme233

import (
	"fmt"
	"strconv"
	"strings"
)

// CoreVersion 当前核心版本，扩展包通过版本表达式声明兼容范围
const CoreVersion = 0.4

// IsVersionCompatible 判断版本表达式是否兼容当前核心版本
// 表达式由逗号分隔，任意一项满足即兼容。每项形如 ">=0.1"、"<=0.5"、"==0.4" 或 "0.4"
func IsVersionCompatible(expr string) (bool, error) {
	return matchVersion(expr, CoreVersion)
}

func matchVersion(expr string, version float64) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return false, fmt.Errorf("版本表达式为空")
	}
	matched := false
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		op := "=="
		for _, candidate := range []string{">=", "<=", "=="} {
			if strings.HasPrefix(token, candidate) {
				op = candidate
				token = strings.TrimSpace(token[len(candidate):])
				break
			}
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return false, fmt.Errorf("无法解析版本 %q: %w", token, err)
		}
		switch op {
		case ">=":
			matched = matched || version >= v
		case "<=":
			matched = matched || version <= v
		default:
			matched = matched || version == v
		}
	}
	return matched, nil
}
