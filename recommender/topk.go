package recommender

// scoredItem pairs a score with its original index.
type scoredItem struct {
	score float64
	index int
}

// topKSelector finds the K largest entries of a dense score vector
// without sorting the whole vector. A min-heap of size K keeps the
// best seen so far; any score not beating its root is skipped, so one
// pass costs O(n log k). The selector reuses its heap across calls.
type topKSelector struct {
	heap []scoredItem
}

func newTopKSelector(maxK int) *topKSelector {
	return &topKSelector{
		heap: make([]scoredItem, 0, maxK),
	}
}

// Select returns the indices and scores of the k largest entries of
// scores, in no particular order. Ties at the heap boundary keep the
// earlier index; the result is deterministic for identical input.
func (s *topKSelector) Select(scores []float64, k int) []scoredItem {
	if k <= 0 || len(scores) == 0 {
		return nil
	}
	if k > len(scores) {
		k = len(scores)
	}

	s.heap = s.heap[:0]
	for i := 0; i < k; i++ {
		s.heap = append(s.heap, scoredItem{scores[i], i})
	}
	for i := k/2 - 1; i >= 0; i-- {
		s.siftDown(i, k-1)
	}

	for i := k; i < len(scores); i++ {
		if scores[i] > s.heap[0].score {
			s.heap[0] = scoredItem{scores[i], i}
			s.siftDown(0, k-1)
		}
	}

	result := make([]scoredItem, k)
	copy(result, s.heap)
	return result
}

// siftDown restores the min-heap property from root down to end.
func (s *topKSelector) siftDown(root, end int) {
	for {
		child := root*2 + 1
		if child > end {
			return
		}
		if child+1 <= end && s.heap[child].score > s.heap[child+1].score {
			child++
		}
		if s.heap[root].score <= s.heap[child].score {
			return
		}
		s.heap[root], s.heap[child] = s.heap[child], s.heap[root]
		root = child
	}
}
