package command

import "fmt"

// DefaultHistoryLimit is used when NewHistory is given a non-positive limit.
const DefaultHistoryLimit = 256

// History is the undo/redo stack of a session. commands[:index] are applied,
// commands[index:] have been undone and can be redone. Pushing after undoing
// discards the undone commands. The oldest command is evicted once the
// history holds more than limit commands. Discarded and evicted commands
// that implement io.Closer are closed, since the history owns them.
type History struct {
	commands []Command
	index    int
	limit    int
	changed  func()
}

// NewHistory creates an empty history. changed, if not nil, is called every
// time the applied state changes (push, undo, redo).
func NewHistory(limit int, changed func()) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, changed: changed}
}

// Push records an already applied command.
func (h *History) Push(cmd Command) {
	for _, c := range h.commands[h.index:] {
		Discard(c)
	}
	clear(h.commands[h.index:])
	h.commands = append(h.commands[:h.index], cmd)
	if len(h.commands) > h.limit {
		evicted := len(h.commands) - h.limit
		for _, c := range h.commands[:evicted] {
			Discard(c)
		}
		n := copy(h.commands, h.commands[evicted:])
		clear(h.commands[n:])
		h.commands = h.commands[:n]
	}
	h.index = len(h.commands)
	h.notify()
}

// Undo reverts the most recently applied command. If its Undo fails, the
// history position does not move.
func (h *History) Undo() error {
	if h.index == 0 {
		return ErrNothingToUndo
	}
	cmd := h.commands[h.index-1]
	if err := cmd.Undo(); err != nil {
		return fmt.Errorf("undo %s: %w", cmd.Description(), err)
	}
	h.index--
	h.notify()
	return nil
}

// Redo applies again the most recently undone command.
func (h *History) Redo() error {
	if h.index == len(h.commands) {
		return ErrNothingToRedo
	}
	cmd := h.commands[h.index]
	if err := cmd.Do(); err != nil {
		return fmt.Errorf("redo %s: %w", cmd.Description(), err)
	}
	h.index++
	h.notify()
	return nil
}

func (h *History) CanUndo() bool { return h.index > 0 }
func (h *History) CanRedo() bool { return h.index < len(h.commands) }
func (h *History) Len() int { return len(h.commands) }
func (h *History) Index() int { return h.index }

func (h *History) UndoDescription() string {
	if !h.CanUndo() {
		return ""
	}
	return h.commands[h.index-1].Description()
}

func (h *History) RedoDescription() string {
	if !h.CanRedo() {
		return ""
	}
	return h.commands[h.index].Description()
}

// Descriptions lists the descriptions of all commands, oldest first.
func (h *History) Descriptions() []string {
	ret := make([]string, len(h.commands))
	for i, c := range h.commands {
		ret[i] = c.Description()
	}
	return ret
}

// Clear closes and forgets all commands without undoing them.
func (h *History) Clear() {
	for _, c := range h.commands {
		Discard(c)
	}
	h.commands = nil
	h.index = 0
}

func (h *History) notify() {
	if h.changed != nil {
		h.changed()
	}
}
