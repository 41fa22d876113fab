// Package watch 监听资源文件变化并批量重新加载
package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/neko233-com/theme233-go/pkg/theme233/store"
)

const (
	// ReloadBatchDelay 批量重载延迟时间（收集变更文件）
	ReloadBatchDelay = 500 * time.Millisecond

	// ReloadCooldown 重载冷却时间（避免频繁重载）
	ReloadCooldown = 300 * time.Millisecond
)

// Reloader 重新加载全部资源的目标，*theme233.Hive 与 *theme233.Injector 都满足
type Reloader interface {
	Reload(sources ...store.Source) error
}

// Watcher 资源文件监听器
// 监听文件所在目录，任意被跟踪的文件变化后，在批量延迟内收集所有变化，
// 然后按原顺序重新读取全部文件并调用 Reloader.Reload
type Watcher struct {
	target Reloader
	paths  []string

	// BatchDelay 与 Cooldown 需在 Start 前设置
	BatchDelay time.Duration
	Cooldown   time.Duration
	Logger     logr.Logger
	// OnReload 每次重载完成后调用，err 为重载错误
	OnReload func(changed []string, err error)

	watcher *fsnotify.Watcher
	state   *reloadState
	done    chan struct{}
}

// New 创建监听器，paths 为资源文件路径，顺序即合并顺序
func New(target Reloader, paths ...string) *Watcher {
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		if a, err := filepath.Abs(p); err == nil {
			p = a
		}
		abs = append(abs, filepath.Clean(p))
	}
	return &Watcher{
		target:     target,
		paths:      abs,
		BatchDelay: ReloadBatchDelay,
		Cooldown:   ReloadCooldown,
		Logger:     logr.Discard(),
	}
}

// Sources 按路径创建资源来源
func (w *Watcher) Sources() ([]store.Source, error) {
	sources := make([]store.Source, 0, len(w.paths))
	for _, p := range w.paths {
		src, err := store.File(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// Start 启动文件监听
// 返回值:
//
//	error: 创建监听器或添加监听目录失败
func (w *Watcher) Start() error {
	if w.watcher != nil {
		w.Logger.Info("文件监听已启动")
		return nil
	}
	if _, err := w.Sources(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}

	dirs := map[string]bool{}
	for _, p := range w.paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("添加监听目录 %s 失败: %w", dir, err)
		}
	}

	w.watcher = watcher
	w.state = newReloadState(w)
	w.done = make(chan struct{})
	go w.loop()

	w.Logger.Info("文件监听已启动（批量重载模式）",
		"files", len(w.paths),
		"batchDelay", w.BatchDelay.Milliseconds(),
		"cooldown", w.Cooldown.Milliseconds())
	return nil
}

// Close 停止监听，等待事件循环退出
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	w.state.stop()
	w.watcher = nil
	return err
}

func (w *Watcher) tracked(name string) bool {
	name = filepath.Clean(name)
	for _, p := range w.paths {
		if p == name {
			return true
		}
	}
	return false
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// 编辑器保存时可能以重命名方式替换文件
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			base := filepath.Base(event.Name)
			if strings.HasPrefix(base, "~$") || strings.HasSuffix(base, "~") || strings.Contains(base, "#") {
				continue
			}
			if w.tracked(event.Name) {
				w.Logger.V(1).Info("检测到资源文件变化", "file", event.Name, "op", event.Op.String())
				w.state.addPending(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.Logger.Error(err, "文件监听错误")
		}
	}
}

// reload 重新读取全部文件
func (w *Watcher) reload(changed []string) {
	start := time.Now()
	sources, err := w.Sources()
	if err == nil {
		err = w.target.Reload(sources...)
	}
	if err != nil {
		w.Logger.Error(err, "重载资源失败", "changed", changed)
	} else {
		w.Logger.Info("批量热重载完成", "changed", changed, "elapsedMs", time.Since(start).Milliseconds())
	}
	if w.OnReload != nil {
		w.OnReload(changed, err)
	}
}

// reloadState 热重载状态管理
type reloadState struct {
	w *Watcher

	mutex          sync.Mutex
	pending        map[string]bool // 待重载的文件集合
	timer          *time.Timer     // 批量重载定时器
	lastReloadTime time.Time       // 上次重载时间
	isReloading    bool            // 是否正在重载
	stopped        bool
}

func newReloadState(w *Watcher) *reloadState {
	return &reloadState{w: w, pending: make(map[string]bool)}
}

// addPending 添加待重载文件并重置批量定时器
func (s *reloadState) addPending(path string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stopped {
		return
	}
	s.pending[path] = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.w.BatchDelay, s.trigger)
}

// trigger 触发批量重载，冷却期内或重载进行中时延后
func (s *reloadState) trigger() {
	s.mutex.Lock()
	if s.stopped {
		s.mutex.Unlock()
		return
	}

	if since := time.Since(s.lastReloadTime); since < s.w.Cooldown {
		remaining := s.w.Cooldown - since
		s.w.Logger.V(1).Info("热重载冷却中，延迟重载", "remainingMs", remaining.Milliseconds())
		s.timer = time.AfterFunc(remaining, s.trigger)
		s.mutex.Unlock()
		return
	}
	if s.isReloading {
		s.timer = time.AfterFunc(100*time.Millisecond, s.trigger)
		s.mutex.Unlock()
		return
	}

	changed := make([]string, 0, len(s.pending))
	for p := range s.pending {
		changed = append(changed, p)
	}
	sort.Strings(changed)
	s.pending = make(map[string]bool)
	s.isReloading = true
	s.mutex.Unlock()

	if len(changed) > 0 {
		s.w.reload(changed)
	}

	s.mutex.Lock()
	s.lastReloadTime = time.Now()
	s.isReloading = false
	s.mutex.Unlock()
}

func (s *reloadState) stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
