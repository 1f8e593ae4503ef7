package ui

import (
	"sync"

	"github.com/eiannone/keyboard"
)

// One buffered channel fed by one reader goroutine, so repeated prompts never
// reopen the terminal and DrainKeys can discard stale presses.
var (
	keyCh     chan rune
	startOnce sync.Once
)

// StartKeyEvents returns a channel that emits single-key runes read without Enter.
//
// The reader is started on first use. When the keyboard cannot be opened (no
// TTY, CI) or reading fails later, the channel is closed so prompts can stop
// waiting instead of blocking forever.
func StartKeyEvents() <-chan rune {
	startOnce.Do(func() {
		keyCh = make(chan rune, 64)
		if err := keyboard.Open(); err != nil {
			close(keyCh)
			return
		}
		go readKeys(keyCh)
	})
	return keyCh
}

func readKeys(ch chan<- rune) {
	defer keyboard.Close()
	defer close(ch)
	for {
		char, key, err := keyboard.GetKey()
		if err != nil {
			return
		}
		r, ok := translateKey(char, key)
		if !ok {
			continue
		}
		// Drop presses nobody is waiting for once the buffer is full.
		select {
		case ch <- r:
		default:
		}
	}
}

// translateKey maps a keyboard event to the rune prompts switch on.
func translateKey(char rune, key keyboard.Key) (rune, bool) {
	switch {
	case key == 0:
		return char, true
	case key == keyboard.KeyEsc:
		return Esc, true
	case key == keyboard.KeyEnter:
		return '\r', true
	default:
		return 0, false
	}
}

// DrainKeys consumes any immediately available keys to avoid accidental triggers.
func DrainKeys() {
	ch := StartKeyEvents()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
