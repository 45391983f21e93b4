package uci

// outputBuffer keeps the last lines of engine output that did not match
// what the client was waiting for.
type outputBuffer struct {
	lines []string
	start int
	size  int
}

func newOutputBuffer(capacity int) *outputBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &outputBuffer{lines: make([]string, capacity)}
}

func (b *outputBuffer) Add(line string) {
	var capacity = len(b.lines)
	if b.size < capacity {
		b.lines[(b.start+b.size)%capacity] = line
		b.size++
		return
	}
	b.lines[b.start] = line
	b.start = (b.start + 1) % capacity
}

func (b *outputBuffer) Reset() {
	b.start = 0
	b.size = 0
}

func (b *outputBuffer) Lines() []string {
	var result = make([]string, b.size)
	for i := range result {
		result[i] = b.lines[(b.start+i)%len(b.lines)]
	}
	return result
}
