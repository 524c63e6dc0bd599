package backend

import "github.com/valerio/jeebie-core/jeebie/input/action"

// ActionHandler is implemented by backends with local behavior for some
// actions, such as toggling a debug panel.
type ActionHandler interface {
	HandleAction(act action.Action)
}
