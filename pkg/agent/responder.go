package agent

import (
	"log"
	"sync"
	"time"

	"banter/models"
	"banter/pkg/config"
)

// Store is the persistence surface the responder needs.
type Store interface {
	SendMessage(chatID, text string, kind models.Kind, sender models.Sender, att *models.Attachment, ts int64) (*models.Message, error)
}

// Options tune the reply pipeline.
type Options struct {
	// Debounce is how long after a user message the responder waits before
	// evaluating whether to reply. A newer user message restarts it.
	Debounce time.Duration
	// ThinkDelay simulates the agent typing before the reply lands.
	ThinkDelay time.Duration
	// ThresholdMin/Max bound the uniform draw of how many user messages
	// accumulate before a reply fires.
	ThresholdMin int
	ThresholdMax int
	// TextProbability is the chance a reply is text rather than an image.
	TextProbability float64
	Rand            Rand
}

// DefaultOptions reads the tunables from the environment config.
func DefaultOptions() Options {
	return Options{
		Debounce:        time.Duration(config.AgentDebounceMS) * time.Millisecond,
		ThinkDelay:      time.Duration(config.AgentThinkMS) * time.Millisecond,
		ThresholdMin:    config.AgentThresholdMin,
		ThresholdMax:    config.AgentThresholdMax,
		TextProbability: config.AgentTextProbability,
		Rand:            DefaultRand(),
	}
}

// Event is a responder-emitted notification, delivered in the order the
// underlying state transitions happened.
type Event struct {
	ChatID string
	// Typing is meaningful when Message is nil: the typing indicator
	// turned on or off. When Message is set, an agent reply was persisted
	// (typing is implicitly off).
	Typing  bool
	Message *models.Message
}

// Responder decides whether, when and what the simulated agent replies.
// One pending decision pipeline exists per chat: a newer user message
// supersedes an unresolved older one, it never queues behind it.
type Responder struct {
	store    Store
	opts     Options
	callback func(Event)

	mu    sync.Mutex
	chats map[string]*chatState

	qmu    sync.Mutex
	qcond  *sync.Cond
	queue  []Event
	closed bool
	done   chan struct{}
}

type chatState struct {
	counter   int // user messages since the last agent reply
	threshold int
	gen       uint64 // bumped on every supersede/cancel; timers check it before acting
	debounce  *time.Timer
	think     *time.Timer
	typing    bool
}

// New builds a responder. callback receives typing and reply events; it
// must not call back into the responder.
func New(store Store, opts Options, callback func(Event)) *Responder {
	if opts.Rand == nil {
		opts.Rand = DefaultRand()
	}
	if opts.ThresholdMax < opts.ThresholdMin {
		opts.ThresholdMax = opts.ThresholdMin
	}
	r := &Responder{
		store:    store,
		opts:     opts,
		callback: callback,
		chats:    make(map[string]*chatState),
		done:     make(chan struct{}),
	}
	r.qcond = sync.NewCond(&r.qmu)
	go r.dispatch()
	return r
}

// Close stops the event dispatcher and cancels all pending pipelines.
func (r *Responder) Close() {
	r.mu.Lock()
	for id := range r.chats {
		r.cancelLocked(id)
	}
	r.mu.Unlock()

	r.qmu.Lock()
	r.closed = true
	r.qmu.Unlock()
	r.qcond.Signal()
	<-r.done
}

// OnUserMessageSent records a user message in the chat and (re)starts the
// debounce window. Any pending decision for the chat is superseded.
func (r *Responder) OnUserMessageSent(chatID string) {
	r.mu.Lock()
	st := r.stateLocked(chatID)
	st.gen++
	gen := st.gen
	r.stopTimersLocked(st)
	if st.typing {
		st.typing = false
		r.emitLocked(Event{ChatID: chatID, Typing: false})
	}
	st.counter++
	st.debounce = time.AfterFunc(r.opts.Debounce, func() { r.decide(chatID, gen) })
	r.mu.Unlock()
}

// CancelPending discards any not-yet-materialized reply for the chat.
// Idempotent; already-persisted messages are unaffected.
func (r *Responder) CancelPending(chatID string) {
	r.mu.Lock()
	r.cancelLocked(chatID)
	r.mu.Unlock()
}

// Forget cancels pending work and drops the chat's counters, for chats
// that were deleted or closed.
func (r *Responder) Forget(chatID string) {
	r.mu.Lock()
	r.cancelLocked(chatID)
	delete(r.chats, chatID)
	r.mu.Unlock()
}

func (r *Responder) decide(chatID string, gen uint64) {
	r.mu.Lock()
	st := r.chats[chatID]
	if st == nil || st.gen != gen {
		r.mu.Unlock()
		return
	}
	if st.counter < st.threshold {
		// no reply this round; the counter keeps accumulating
		r.mu.Unlock()
		return
	}
	st.counter = 0
	st.threshold = r.drawThresholdLocked()
	st.typing = true
	r.emitLocked(Event{ChatID: chatID, Typing: true})
	st.think = time.AfterFunc(r.opts.ThinkDelay, func() { r.reply(chatID, gen) })
	r.mu.Unlock()
}

func (r *Responder) reply(chatID string, gen uint64) {
	r.mu.Lock()
	st := r.chats[chatID]
	if st == nil || st.gen != gen {
		r.mu.Unlock()
		return
	}
	st.typing = false
	st.think = nil

	// All draws happen under the lock so concurrent chats never interleave
	// the rand stream mid-decision.
	var (
		text string
		kind = models.KindText
		att  *models.Attachment
	)
	if r.opts.Rand.Float64() < r.opts.TextProbability {
		text = Responses[r.opts.Rand.IntN(len(Responses))]
	} else {
		kind = models.KindFile
		url := PlaceholderImages[r.opts.Rand.IntN(len(PlaceholderImages))]
		size := int64(minReplyFileSize + r.opts.Rand.IntN(maxReplyFileSize-minReplyFileSize+1))
		att = &models.Attachment{Path: url, FileSizeBytes: size, ThumbnailPath: url}
	}
	r.mu.Unlock()

	// Past the generation check the reply is materializing: a cancel from
	// here on must not retract it. Deleted chats degrade to a nil message.
	msg, err := r.store.SendMessage(chatID, text, kind, models.SenderAgent, att, 0)
	if err != nil {
		log.Printf("[agent] persisting reply for chat %s: %v", chatID, err)
	}

	r.mu.Lock()
	if msg == nil {
		r.emitLocked(Event{ChatID: chatID, Typing: false})
	} else {
		r.emitLocked(Event{ChatID: chatID, Message: msg})
	}
	r.mu.Unlock()
}

func (r *Responder) stateLocked(chatID string) *chatState {
	st := r.chats[chatID]
	if st == nil {
		st = &chatState{threshold: r.drawThresholdLocked()}
		r.chats[chatID] = st
	}
	return st
}

func (r *Responder) drawThresholdLocked() int {
	return r.opts.ThresholdMin + r.opts.Rand.IntN(r.opts.ThresholdMax-r.opts.ThresholdMin+1)
}

func (r *Responder) cancelLocked(chatID string) {
	st := r.chats[chatID]
	if st == nil {
		return
	}
	st.gen++
	r.stopTimersLocked(st)
	if st.typing {
		st.typing = false
		r.emitLocked(Event{ChatID: chatID, Typing: false})
	}
}

func (r *Responder) stopTimersLocked(st *chatState) {
	if st.debounce != nil {
		st.debounce.Stop()
		st.debounce = nil
	}
	if st.think != nil {
		st.think.Stop()
		st.think = nil
	}
}

// emitLocked queues an event while r.mu is held; the dispatcher delivers
// it without holding any responder lock, preserving emission order.
func (r *Responder) emitLocked(ev Event) {
	r.qmu.Lock()
	r.queue = append(r.queue, ev)
	r.qmu.Unlock()
	r.qcond.Signal()
}

func (r *Responder) dispatch() {
	defer close(r.done)
	for {
		r.qmu.Lock()
		for len(r.queue) == 0 && !r.closed {
			r.qcond.Wait()
		}
		if len(r.queue) == 0 && r.closed {
			r.qmu.Unlock()
			return
		}
		ev := r.queue[0]
		r.queue = r.queue[1:]
		r.qmu.Unlock()

		if r.callback != nil {
			r.callback(ev)
		}
	}
}
