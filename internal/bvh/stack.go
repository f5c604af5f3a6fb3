package bvh

// inlineStackSize covers the depth of any reasonably balanced tree, so most
// traversals never grow onto the heap.
const inlineStackSize = 64

// stack is the LIFO of node indices used by every traversal in place of
// recursion. Each traversal owns its own stack, so traversals may nest.
type stack struct {
	inline [inlineStackSize]int32
	items  []int32
}

func (s *stack) init() {
	s.items = s.inline[:0]
}

func (s *stack) push(i int32) {
	if i == nilNode {
		return
	}
	s.items = append(s.items, i)
}

func (s *stack) pop() int32 {
	last := len(s.items) - 1
	i := s.items[last]
	s.items = s.items[:last]
	return i
}

func (s *stack) empty() bool {
	return len(s.items) == 0
}
