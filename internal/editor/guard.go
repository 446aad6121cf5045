package editor

import (
	"errors"
	"sync"
)

var ErrBusy = errors.New("action already in progress")

// Action names a user action that must not overlap with itself.
type Action string

const (
	ActionPrint  Action = "print"
	ActionPNG    Action = "png"
	ActionSave   Action = "save"
	ActionLoad   Action = "load"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	ActionUpload Action = "upload"
	ActionImport Action = "import"
)

// Guard tracks which actions are in flight. Different actions may run at
// the same time; a second start of the same action is refused.
type Guard struct {
	mu       sync.Mutex
	inFlight map[Action]bool
}

// Begin marks action as in flight. The returned release must be called
// exactly once when the action settles.
func (g *Guard) Begin(action Action) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight[action] {
		return nil, ErrBusy
	}

	if g.inFlight == nil {
		g.inFlight = make(map[Action]bool)
	}

	g.inFlight[action] = true

	var once sync.Once

	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, action)
			g.mu.Unlock()
		})
	}, nil
}

func (g *Guard) Busy(action Action) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.inFlight[action]
}

// Run brackets fn with Begin and release.
func (g *Guard) Run(action Action, fn func() error) error {
	release, err := g.Begin(action)
	if err != nil {
		return err
	}
	defer release()

	return fn()
}
