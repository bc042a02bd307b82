package internal

import "sync"

// DoneChan closes once whatever it represents has finished; lcBase's
// Stop blocks on one to know when a Worker/Supervisor/UnstickWorker's
// background goroutine(s) have actually exited.
type DoneChan chan struct{}

// DoneFunc starts a shutdown and returns the DoneChan that will close
// when it completes.
type DoneFunc func() DoneChan

// WrapWaitGroup returns a DoneChan that closes once wg.Wait returns.
func WrapWaitGroup(wg *sync.WaitGroup) DoneChan {
	ret := make(DoneChan)
	go func() {
		wg.Wait()
		close(ret)
	}()
	return ret
}
