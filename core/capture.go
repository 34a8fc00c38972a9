package core

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"pawphysio/config"
	"pawphysio/models"
)

// Capturer persists user-reported errors through an asynchronous queue.
//
// Capture is best-effort by design: the reporting path must never slow down
// or break the primary user flow, so enqueueing is non-blocking and a full
// queue drops the event (counted, not retried).
type Capturer struct {
	db *gorm.DB

	stateMu sync.RWMutex
	running bool

	queueMu      sync.RWMutex
	queue        chan *models.UserError
	wg           sync.WaitGroup
	droppedTotal uint64
}

// CaptureInstance is the global capture pipeline, set up in main.
var CaptureInstance *Capturer

// InitCapture creates the global capture pipeline bound to the database.
func InitCapture(db *gorm.DB) {
	CaptureInstance = NewCapturer(db)
}

// NewCapturer constructs a capture pipeline. Start must be called before
// events are accepted.
func NewCapturer(db *gorm.DB) *Capturer {
	return &Capturer{db: db}
}

// Start begins draining the capture queue.
func (c *Capturer) Start() {
	if !config.Settings.CaptureEnabled {
		return
	}

	c.stateMu.Lock()
	if c.running {
		c.stateMu.Unlock()
		return
	}
	c.running = true
	c.stateMu.Unlock()

	size := config.Settings.CaptureQueueSize
	if size < 1 {
		size = 1
	}

	c.queueMu.Lock()
	c.queue = make(chan *models.UserError, size)
	q := c.queue
	c.queueMu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for ue := range q {
			if err := c.db.Create(ue).Error; err != nil {
				// Deliberately swallowed: losing one telemetry row must not
				// cascade into the serving path.
				log.Printf("capture: failed to persist user error: %v", err)
			}
		}
	}()
}

// Stop drains remaining queued events and shuts the worker down.
func (c *Capturer) Stop() {
	c.stateMu.Lock()
	if !c.running {
		c.stateMu.Unlock()
		return
	}
	c.running = false
	c.stateMu.Unlock()

	// The write lock excludes every in-flight Capture send, so closing
	// the channel here cannot race an enqueue.
	c.queueMu.Lock()
	if c.queue != nil {
		close(c.queue)
		c.queue = nil
	}
	c.queueMu.Unlock()

	c.wg.Wait()
}

func (c *Capturer) isRunning() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.running
}

// Capture enqueues a user error with status pending.
//
// It silently no-ops when the message is empty or there is no authenticated
// user, and reports false (with the drop counted) when the queue is full or
// the pipeline is stopped. At-most-once, no retry.
func (c *Capturer) Capture(userID uint, userEmail, userRole, message, userAgent string, context map[string]interface{}) bool {
	if message == "" || userEmail == "" {
		return false
	}
	if !c.isRunning() {
		return false
	}

	ue := &models.UserError{
		UserID:       userID,
		UserEmail:    userEmail,
		UserRole:     userRole,
		ErrorMessage: message,
		UserAgent:    userAgent,
		Status:       models.UserErrorPending,
	}

	if context == nil {
		context = map[string]interface{}{}
	}
	if _, ok := context["timestamp"]; !ok {
		context["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	}
	ue.SetContext(context)

	// The read lock is held across the send: Stop cannot close the
	// channel between the nil check and the enqueue.
	c.queueMu.RLock()
	defer c.queueMu.RUnlock()
	if c.queue == nil {
		atomic.AddUint64(&c.droppedTotal, 1)
		return false
	}

	select {
	case c.queue <- ue:
		return true
	default:
		atomic.AddUint64(&c.droppedTotal, 1)
		return false
	}
}

// QueueLen returns the number of buffered capture events.
func (c *Capturer) QueueLen() int {
	c.queueMu.RLock()
	defer c.queueMu.RUnlock()
	if c.queue == nil {
		return 0
	}
	return len(c.queue)
}

// QueueCap returns the capture queue capacity.
func (c *Capturer) QueueCap() int {
	c.queueMu.RLock()
	defer c.queueMu.RUnlock()
	if c.queue == nil {
		return 0
	}
	return cap(c.queue)
}

// DroppedTotal returns how many capture events were dropped under backpressure.
func (c *Capturer) DroppedTotal() uint64 {
	return atomic.LoadUint64(&c.droppedTotal)
}
