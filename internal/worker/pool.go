package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mindcare-backend/internal/models"
)

const ChatLogQueue = "queue:chat-logs"

const (
	popTimeout  = 5 * time.Second
	saveTimeout = 5 * time.Second
)

type logWriter interface {
	Save(ctx context.Context, entry *models.ChatLog) error
}

// Pool persists chat turns off the request path. Producers RPUSH entries
// onto a Redis list and workers BLPOP them into Postgres.
type Pool struct {
	redis       *redis.Client
	logs        logWriter
	workerCount int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(redisClient *redis.Client, logs logWriter, workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		redis:       redisClient,
		logs:        logs,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Printf("[worker] started %d chat-log workers", p.workerCount)
}

// Stop interrupts blocked pops and waits for in-flight saves.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Enqueue never fails the caller. When the queue is unreachable the entry
// is written directly.
func (p *Pool) Enqueue(ctx context.Context, entry *models.ChatLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err == nil {
		err = p.redis.RPush(ctx, ChatLogQueue, data).Err()
	}
	if err == nil {
		return
	}

	log.Printf("[worker] enqueue failed, writing chat log directly: %v", err)
	p.save(entry)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		if p.ctx.Err() != nil {
			log.Printf("[worker] %d shutting down", id)
			return
		}

		result, err := p.redis.BLPop(p.ctx, popTimeout, ChatLogQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if p.ctx.Err() != nil {
				continue
			}
			log.Printf("[worker] %d: pop failed: %v", id, err)
			select {
			case <-p.ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		if len(result) < 2 {
			continue
		}

		p.process(id, result[1])
	}
}

func (p *Pool) process(id int, payload string) {
	var entry models.ChatLog
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		log.Printf("[worker] %d: failed to parse chat log: %v", id, err)
		return
	}
	p.save(&entry)
}

// save uses its own deadline so entries popped just before shutdown still land.
func (p *Pool) save(entry *models.ChatLog) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := p.logs.Save(ctx, entry); err != nil {
		log.Printf("[worker] failed to save chat log for session %s: %v", entry.SessionID, err)
	}
}
