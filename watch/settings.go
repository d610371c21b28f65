package watch

import (
	"github.com/dshills/settle"
)

// reloadOps are the operations that can leave new content at a path.
const reloadOps = OpCreate | OpWrite | OpRename

// Settings watches the settings source at path and rebuilds a store
// through settle.Create whenever the file changes. apply receives the
// fresh store, or a nil store and the reload error, on the watcher's
// event goroutine; keep it short and hand slow work to another
// goroutine. opts are passed to settle.Create on every reload, so
// defaults, inference and descriptors carry over. Chmod-only and
// remove-only events do not trigger a reload.
func Settings(w *Watcher, path string, apply func(*settle.Store, error), opts ...settle.Option) (*Subscription, error) {
	return w.Watch(path, func(e Event) {
		if e.Op&reloadOps == 0 {
			return
		}
		st, err := settle.Create(path, opts...)
		apply(st, err)
	})
}
