package helpers

import (
	"testing"
	"time"

	"github.com/fcrepo/Fedora-API-Test-Suite-sub001/framework/opt"

	"github.com/stretchr/testify/assert"
)

func TestNonBlockingSend(t *testing.T) {
	ch1 := make(chan string)
	assert.False(t, NonBlockingSend(ch1, "a"))

	ch2 := make(chan string, 1)
	assert.True(t, NonBlockingSend(ch2, "a"))
	assert.Equal(t, "a", <-ch2)
}

func TestTryReceive(t *testing.T) {
	ch := make(chan string, 1)
	assert.Equal(t, opt.None[string](), TryReceive(ch, time.Millisecond))

	ch <- "a"
	assert.Equal(t, opt.Some("a"), TryReceive(ch, time.Millisecond))

	go func() {
		time.Sleep(time.Millisecond * 50)
		ch <- "b"
	}()
	assert.Equal(t, opt.Some("b"), TryReceive(ch, time.Second))

	close(ch)
	assert.Equal(t, opt.None[string](), TryReceive(ch, time.Second))
}
