package simulator

import (
	"sync"

	"go.uber.org/atomic"
)

// pool runs the calculators of a wave. Every worker parks on its own wake
// channel; a wave wakes as many workers as it has entries, up to the pool
// size. Woken workers claim entries through a shared index and the last one
// to finish reports on done.
type pool struct {
	wc   []chan struct{}
	wg   sync.WaitGroup
	done chan struct{}

	batch     []*orderedCalc
	claim     atomic.Int64
	remaining atomic.Int32

	run func(c *orderedCalc)
}

func newPool(workers int, run func(c *orderedCalc)) *pool {
	p := &pool{
		done: make(chan struct{}, 1),
		run:  run,
	}
	p.start(workers)
	return p
}

func (p *pool) start(workers int) {
	p.wc = make([]chan struct{}, workers)
	for i := range p.wc {
		wc := make(chan struct{}, 1)
		p.wc[i] = wc
		p.wg.Add(1)
		go p.worker(wc)
	}
}

func (p *pool) worker(wc <-chan struct{}) {
	defer p.wg.Done()
	for range wc {
		for {
			i := p.claim.Inc() - 1
			if i >= int64(len(p.batch)) {
				break
			}
			p.run(p.batch[i])
		}
		if p.remaining.Dec() == 0 {
			p.done <- struct{}{}
		}
	}
}

// execute runs batch and blocks until every entry has been calculated.
func (p *pool) execute(batch []*orderedCalc) {
	if len(batch) == 0 {
		return
	}
	n := min(len(p.wc), len(batch))
	p.batch = batch
	p.claim.Store(0)
	p.remaining.Store(int32(n))
	for _, wc := range p.wc[:n] {
		wc <- struct{}{}
	}
	<-p.done
	p.batch = nil
}

func (p *pool) stop() {
	for _, wc := range p.wc {
		close(wc)
	}
	p.wg.Wait()
	p.wc = nil
}

func (p *pool) running() bool { return len(p.wc) > 0 }
