// The memsim command simulates fixed-size-page memory management for a
// workload of processes.
package main

import "github.com/tebeka/atexit"

func main() {
	Execute()
	atexit.Exit(0)
}
