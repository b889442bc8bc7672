package handlers

import (
	"context"
	"log/slog"
	"sync"
)

const publishQueueSize = 64

// publisher runs publication jobs in the background, one worker per guild, so a guild's
// events leave in the order its engine calls returned.
type publisher struct {
	mu     sync.Mutex
	queues map[string]chan func(context.Context)
	closed bool
	wg     sync.WaitGroup
	logger *slog.Logger
}

func newPublisher(logger *slog.Logger) *publisher {
	return &publisher{
		queues: make(map[string]chan func(context.Context)),
		logger: logger,
	}
}

// enqueue schedules job for guildID. After close the job runs inline.
func (p *publisher) enqueue(guildID string, job func(context.Context)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.run(job)
		return
	}
	q, ok := p.queues[guildID]
	if !ok {
		q = make(chan func(context.Context), publishQueueSize)
		p.queues[guildID] = q
		p.wg.Add(1)
		go p.work(q)
	}
	q <- job
	p.mu.Unlock()
}

func (p *publisher) work(q <-chan func(context.Context)) {
	defer p.wg.Done()
	for job := range q {
		p.run(job)
	}
}

func (p *publisher) run(job func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	job(ctx)
}

// close stops accepting queued work and waits until every queued job finished.
func (p *publisher) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		for guildID, q := range p.queues {
			close(q)
			delete(p.queues, guildID)
		}
	}
	p.mu.Unlock()
	p.wg.Wait()
}
