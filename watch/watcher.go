package watch

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watcher delivers debounced file change events to subscriptions.
type Watcher struct {
	fsw    *fsnotify.Watcher
	config Config

	mu      sync.Mutex
	subs    map[string]map[string]*Subscription // file path -> subscription id
	dirs    map[string]int                      // watched directory refcounts
	pending map[string]*pendingEvent

	deliver  chan Event
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// pendingEvent accumulates a debounce window for one path.
type pendingEvent struct {
	timer *time.Timer
	ops   Op
	at    time.Time
}

// Subscription is one handler registration on a watched path.
type Subscription struct {
	id      string
	path    string
	handler Handler
	w       *Watcher
	once    sync.Once
}

// ID returns the unique identifier of the subscription.
func (s *Subscription) ID() string { return s.id }

// Path returns the absolute path the subscription watches.
func (s *Subscription) Path() string { return s.path }

// Unsubscribe removes the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() { s.w.drop(s) })
}

// New creates a watcher and starts its event goroutine.
func New(opts ...Option) (*Watcher, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		config:  config,
		subs:    make(map[string]map[string]*Subscription),
		dirs:    make(map[string]int),
		pending: make(map[string]*pendingEvent),
		deliver: make(chan Event, config.BufferSize),
		closeCh: make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch subscribes h to changes of the file at path. The parent
// directory is what gets registered with fsnotify, so the file itself
// may not exist yet and the subscription keeps working when the file
// is replaced by rename. A path can carry any number of independent
// subscriptions. Returns ErrWatcherClosed after Close.
func (w *Watcher) Watch(path string, h Handler) (*Subscription, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}

	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return nil, err
		}
	}
	w.dirs[dir]++

	sub := &Subscription{
		id:      uuid.New().String(),
		path:    abs,
		handler: h,
		w:       w,
	}
	if w.subs[abs] == nil {
		w.subs[abs] = make(map[string]*Subscription)
	}
	w.subs[abs][sub.id] = sub
	return sub, nil
}

// drop removes a subscription and releases its directory watch when
// no subscription needs it anymore.
func (w *Watcher) drop(s *Subscription) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	set := w.subs[s.path]
	delete(set, s.id)
	if len(set) == 0 {
		delete(w.subs, s.path)
	}

	dir := filepath.Dir(s.path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fsw.Remove(dir)
	}
}

// Paths returns the watched file paths, sorted.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.subs))
	for p := range w.subs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Close stops the watcher and waits for the event goroutine to
// finish. Pending debounce windows are discarded. Close is
// idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()
	return err
}

// processLoop owns all handler invocations.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case event := <-w.deliver:
			w.dispatch(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.config.OnError != nil {
				w.config.OnError(err)
			}
		}
	}
}

// handleFSEvent folds a raw fsnotify event into the debounce window
// of its path. Events for paths without subscriptions are dropped.
func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}
	path := filepath.Clean(fsEvent.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if _, ok := w.subs[path]; !ok {
		return
	}

	if p, exists := w.pending[path]; exists {
		p.ops |= op
		p.at = time.Now()
		p.timer.Reset(w.config.Debounce)
		return
	}

	p := &pendingEvent{ops: op, at: time.Now()}
	p.timer = time.AfterFunc(w.config.Debounce, func() { w.flush(path) })
	w.pending[path] = p
}

// flush closes the debounce window for path and queues its merged
// event for dispatch.
func (w *Watcher) flush(path string) {
	w.mu.Lock()
	p, exists := w.pending[path]
	if !exists || w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	event := Event{Path: path, Op: p.ops, Timestamp: p.at}
	w.mu.Unlock()

	select {
	case w.deliver <- event:
	case <-w.closeCh:
	default:
		// Buffer full, drop the event rather than block the timer.
	}
}

// dispatch runs the handlers subscribed to the event's path.
func (w *Watcher) dispatch(event Event) {
	w.mu.Lock()
	set := w.subs[event.Path]
	subs := make([]*Subscription, 0, len(set))
	for _, s := range set {
		subs = append(subs, s)
	}
	w.mu.Unlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// convertOp maps fsnotify operations onto Op bits.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}
