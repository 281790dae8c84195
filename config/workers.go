package config

import "runtime"

// numWorkers leaves two logical CPUs free for the OS and the main
// goroutine, but never drops below one worker.
func numWorkers() int {
	n := runtime.NumCPU() - 2
	if n < 1 {
		n = 1
	}
	return n
}
