package ui

import "fmt"

// Esc is the rune delivered for the escape key.
const Esc = 27

// NextContinueOrExit shows a green prompt and waits for 'C' (continue) or ESC.
// It returns 'C' or Esc.
func NextContinueOrExit(message string) rune {
	fmt.Printf("\033[32m%s\033[0m\n", message)
	DrainKeys()
	keyEvents := StartKeyEvents()
	for {
		k, ok := <-keyEvents
		if !ok {
			// Keyboard went away; behave as if the user left.
			return Esc
		}
		if k == 'C' || k == 'c' {
			return 'C'
		}
		if k == Esc {
			return Esc
		}
	}
}

// NextYN shows a green prompt and waits for single-key Y/N (case-insensitive).
// ESC returns Esc.
func NextYN(message string) rune {
	fmt.Printf("\033[32m%s\033[0m\n", message)
	DrainKeys()
	keyEvents := StartKeyEvents()
	for {
		k, ok := <-keyEvents
		if !ok {
			return Esc
		}
		if k == 'Y' || k == 'y' {
			return 'Y'
		}
		if k == 'N' || k == 'n' {
			return 'N'
		}
		if k == Esc {
			return Esc
		}
	}
}
