package orderedset

// Set 插入有序去重集合
// 引擎中所有"并集"语义的列表字段（讲师、时间、地点、先修等）都经由它合并，
// 保证去重的同时保留首次出现顺序。零值不可直接使用，请通过 New 创建。
type Set[T comparable] struct {
	seen  map[T]bool
	items []T
}

// New 创建空集合并预置初始元素
func New[T comparable](items ...T) *Set[T] {
	s := &Set[T]{seen: make(map[T]bool, len(items))}
	s.Add(items...)
	return s
}

// Add 追加元素，重复元素忽略
func (s *Set[T]) Add(items ...T) {
	for _, it := range items {
		if s.seen[it] {
			continue
		}
		s.seen[it] = true
		s.items = append(s.items, it)
	}
}

// Contains 是否已包含
func (s *Set[T]) Contains(item T) bool {
	return s.seen[item]
}

// Len 元素个数
func (s *Set[T]) Len() int {
	return len(s.items)
}

// Items 按插入顺序返回元素切片（副本）
func (s *Set[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
