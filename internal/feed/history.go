package feed

// History is a fixed-capacity ring buffer of recent prices for one token.
// When full, the oldest price is overwritten first.
type History struct {
	prices []float64
	head   int // next write position
	count  int
}

// NewHistory creates a buffer holding at most capacity prices.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{prices: make([]float64, capacity)}
}

// Push appends a price, evicting the oldest one when the buffer is full.
func (h *History) Push(price float64) {
	h.prices[h.head] = price
	h.head = (h.head + 1) % len(h.prices)
	if h.count < len(h.prices) {
		h.count++
	}
}

// Len returns the number of stored prices
func (h *History) Len() int {
	return h.count
}

// Values returns the stored prices, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, 0, h.count)
	// head points at the oldest slot once the buffer has wrapped
	start := 0
	if h.count == len(h.prices) {
		start = h.head
	}
	for i := 0; i < h.count; i++ {
		out = append(out, h.prices[(start+i)%len(h.prices)])
	}
	return out
}

// Last returns the most recent price.
func (h *History) Last() (float64, bool) {
	if h.count == 0 {
		return 0, false
	}
	idx := h.head - 1
	if idx < 0 {
		idx = len(h.prices) - 1
	}
	return h.prices[idx], true
}
