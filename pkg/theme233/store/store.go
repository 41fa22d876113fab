// Package store 主题资源的扁平 key/value 存储以及各种格式的资源来源
package store

import (
	"fmt"
	"sort"
	"sync"
)

// Source 资源来源
// 一次 Read 返回一批扁平的 key/value，key 形如 "Type.attr" 或 "*.attr"
type Source interface {
	// Name 来源名称，用于错误信息与日志
	Name() string

	// Read 读取来源中的全部资源
	Read() (map[string]string, error)
}

// Reader 只读的资源视图
type Reader interface {
	Get(key string) (string, bool)
	Keys() []string
}

// MapStore 基于 map 的线程安全资源存储
type MapStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMapStore 创建空的资源存储
func NewMapStore() *MapStore {
	return &MapStore{values: make(map[string]string)}
}

// Load 按顺序读取所有来源并合并，后读取的覆盖先读取的
// 任意来源读取失败时存储保持不变
func (s *MapStore) Load(sources ...Source) error {
	merged := make(map[string]string)
	for _, src := range sources {
		values, err := src.Read()
		if err != nil {
			return fmt.Errorf("读取资源来源 %s 失败: %w", src.Name(), err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range merged {
		s.values[k] = v
	}
	return nil
}

// Get 获取原始值
func (s *MapStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Put 写入单个资源
func (s *MapStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Keys 返回排序后的全部 key
func (s *MapStore) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len 资源数量
func (s *MapStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Clear 清空存储
func (s *MapStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
}

type mapSource struct {
	name   string
	values map[string]string
}

func (m *mapSource) Name() string { return m.name }

func (m *mapSource) Read() (map[string]string, error) {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

// MapSource 以内存 map 作为资源来源，读取时复制
func MapSource(values map[string]string) Source {
	return &mapSource{name: "map", values: values}
}

type readerSource struct {
	name string
	r    Reader
}

func (s *readerSource) Name() string { return s.name }

func (s *readerSource) Read() (map[string]string, error) {
	keys := s.r.Keys()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.r.Get(k); ok {
			out[k] = v
		}
	}
	return out, nil
}

// ReaderSource 将另一个存储的快照作为资源来源
func ReaderSource(name string, r Reader) Source {
	return &readerSource{name: name, r: r}
}
