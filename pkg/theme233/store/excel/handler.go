package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelHandler Excel 格式处理器
// 读取所有工作表，A 列为 key，B 列为 value
// 表头行（A 列为 "key"）、空 key 与 "#" 开头的注释行会被跳过
type ExcelHandler struct{}

// TypeName 返回处理器类型名
// 返回值:
//
//	string: "excel"
func (h *ExcelHandler) TypeName() string {
	return "excel"
}

// Parse 解析 xlsx 内容
func (h *ExcelHandler) Parse(name string, data []byte) (map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("打开 Excel %s 失败: %w", name, err)
	}
	defer f.Close()

	out := make(map[string]string)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("读取 Excel %s 工作表 %s 失败: %w", name, sheet, err)
		}
		for i, row := range rows {
			if len(row) == 0 {
				continue
			}
			key := strings.TrimSpace(row[0])
			if key == "" || strings.HasPrefix(key, "#") {
				continue
			}
			if i == 0 && strings.EqualFold(key, "key") {
				continue
			}
			value := ""
			if len(row) > 1 {
				value = row[1]
			}
			out[key] = value
		}
	}
	return out, nil
}
