package theme233

import "weak"

// handle 槽位索引加代数，槽位复用后旧句柄失效
type handle struct {
	index uint32
	gen   uint32
}

type slot[T any] struct {
	ref       weak.Pointer[T]
	gen       uint32
	used      bool
	hierarchy bool
}

// arena 以弱引用跟踪组件，不阻止组件被回收
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

type tracked[T any] struct {
	h         handle
	ref       weak.Pointer[T]
	hierarchy bool
}

// add 跟踪组件，已跟踪时只更新 hierarchy 标记
func (a *arena[T]) add(p *T, hierarchy bool) handle {
	ref := weak.Make(p)
	for i := range a.slots {
		s := &a.slots[i]
		if s.used && s.ref == ref {
			s.hierarchy = hierarchy
			return handle{index: uint32(i), gen: s.gen}
		}
	}

	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.ref = ref
	s.used = true
	s.hierarchy = hierarchy
	a.count++
	return handle{index: idx, gen: s.gen}
}

// contains 按身份判断是否已跟踪，不会复活已回收的组件
func (a *arena[T]) contains(p *T) bool {
	ref := weak.Make(p)
	for i := range a.slots {
		if a.slots[i].used && a.slots[i].ref == ref {
			return true
		}
	}
	return false
}

func (a *arena[T]) snapshot() []tracked[T] {
	out := make([]tracked[T], 0, a.count)
	for i, s := range a.slots {
		if s.used {
			out = append(out, tracked[T]{h: handle{index: uint32(i), gen: s.gen}, ref: s.ref, hierarchy: s.hierarchy})
		}
	}
	return out
}

func (a *arena[T]) remove(h handle) bool {
	if int(h.index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.index]
	if !s.used || s.gen != h.gen {
		return false
	}
	*s = slot[T]{gen: s.gen + 1}
	a.free = append(a.free, h.index)
	a.count--
	return true
}

func (a *arena[T]) removeRef(ref weak.Pointer[T]) bool {
	for i := range a.slots {
		if a.slots[i].used && a.slots[i].ref == ref {
			return a.remove(handle{index: uint32(i), gen: a.slots[i].gen})
		}
	}
	return false
}

// pruneExpired 删除所有已回收组件的槽位
func (a *arena[T]) pruneExpired() int {
	n := 0
	for i := range a.slots {
		s := &a.slots[i]
		if s.used && s.ref.Value() == nil {
			a.remove(handle{index: uint32(i), gen: s.gen})
			n++
		}
	}
	return n
}

func (a *arena[T]) len() int {
	return a.count
}

func weakRef[T any](p *T) weak.Pointer[T] {
	return weak.Make(p)
}
