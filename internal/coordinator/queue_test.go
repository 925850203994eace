package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventQueue(t *testing.T) {
	q := newEventQueue()
	var order []int
	for i := range 3 {
		assert.True(t, q.push(func() { order = append(order, i) }))
	}

	select {
	case <-q.signal:
	default:
		t.Fatal("push did not signal")
	}

	for _, task := range q.drain() {
		task()
	}
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Empty(t, q.drain())

	q.push(func() {})
	q.close()
	assert.Empty(t, q.drain())
	assert.False(t, q.push(func() {}))
}
