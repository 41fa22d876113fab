package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/neko233-com/theme233-go/pkg/theme233/store/excel"
	"github.com/neko233-com/theme233-go/pkg/theme233/store/hcl"
	"github.com/neko233-com/theme233-go/pkg/theme233/store/json"
	"github.com/neko233-com/theme233-go/pkg/theme233/store/properties"
	"github.com/neko233-com/theme233-go/pkg/theme233/store/tsv"
	"github.com/neko233-com/theme233-go/pkg/theme233/store/yaml"
)

// Handler 资源文件格式处理器
// 每个处理器负责把一种格式的文件内容解析为扁平的 key/value
type Handler interface {
	// TypeName 处理器类型名，如 "json", "yaml", "excel" 等
	TypeName() string

	// Parse 解析文件内容
	// 参数:
	//   name: 来源名称，用于错误信息
	//   data: 文件内容
	// 返回值:
	//   map[string]string: 扁平的资源
	//   error: 解析错误
	Parse(name string, data []byte) (map[string]string, error)
}

var (
	handlersMu sync.RWMutex
	handlers   = map[string]Handler{
		"properties": &properties.PropertiesHandler{},
		"yaml":       &yaml.YamlHandler{},
		"yml":        &yaml.YamlHandler{},
		"json":       &json.JsonHandler{},
		"tsv":        &tsv.TsvHandler{},
		"xlsx":       &excel.ExcelHandler{},
		"hcl":        &hcl.HclHandler{},
	}
)

// RegisterHandler 注册文件后缀对应的处理器，后缀不含点
func RegisterHandler(suffix string, h Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[strings.ToLower(suffix)] = h
}

// HandlerFor 查找文件后缀对应的处理器
func HandlerFor(suffix string) (Handler, bool) {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	h, ok := handlers[strings.ToLower(strings.TrimPrefix(suffix, "."))]
	return h, ok
}

// IsSupported 判断文件是否有可用的处理器
func IsSupported(path string) bool {
	_, ok := HandlerFor(filepath.Ext(path))
	return ok
}

type fileSource struct {
	path    string
	handler Handler
}

func (f *fileSource) Name() string { return f.path }

func (f *fileSource) Read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	return f.handler.Parse(f.path, data)
}

// File 创建文件资源来源，根据后缀选择处理器
// 文件在每次 Read 时重新读取，因此同一个来源可以用于热重载
func File(path string) (Source, error) {
	h, ok := HandlerFor(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("不支持的资源文件格式: %s", path)
	}
	return &fileSource{path: path, handler: h}, nil
}

type bytesSource struct {
	name    string
	data    []byte
	handler Handler
}

func (b *bytesSource) Name() string { return b.name }

func (b *bytesSource) Read() (map[string]string, error) {
	return b.handler.Parse(b.name, b.data)
}

// Bytes 以内存中的内容作为资源来源
// 参数:
//
//	name: 来源名称
//	suffix: 格式后缀，如 "yaml"
//	data: 文件内容
func Bytes(name, suffix string, data []byte) (Source, error) {
	h, ok := HandlerFor(suffix)
	if !ok {
		return nil, fmt.Errorf("不支持的资源格式: %s", suffix)
	}
	return &bytesSource{name: name, data: data, handler: h}, nil
}

// Dir 递归扫描目录，返回所有受支持的资源文件来源
// 结果按路径排序，保证合并顺序稳定
// 参数:
//
//	dir: 资源目录
//	excludeFileNames: 需要跳过的文件名
func Dir(dir string, excludeFileNames ...string) ([]Source, error) {
	exclude := make(map[string]bool, len(excludeFileNames))
	for _, name := range excludeFileNames {
		exclude[name] = true
	}

	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := info.Name()
		if exclude[name] || strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			return nil
		}
		if IsSupported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("扫描资源目录 %s 失败: %w", dir, err)
	}

	sort.Strings(paths)
	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		src, err := File(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
