package coordinator

import "runtime"

// runtimeGosched is the coordinator's cooperative yield point, called every
// yieldEvery entries; broken out to a one-line indirection so it reads as
// an intentional policy rather than an inline runtime call.
func runtimeGosched() {
	runtime.Gosched()
}
