package core

import "slices"

// ClipManager keeps the clip selection of a session.
type ClipManager struct {
	session  *Session
	selected []*AudioClip
}

func (m *ClipManager) Select(c *AudioClip) {
	if c.selected {
		return
	}
	c.selected = true
	m.selected = append(m.selected, c)
}

func (m *ClipManager) Deselect(c *AudioClip) {
	if !c.selected {
		return
	}
	c.selected = false
	if i := slices.Index(m.selected, c); i >= 0 {
		m.selected = slices.Delete(m.selected, i, i+1)
	}
}

// Toggle flips the selection state of c.
func (m *ClipManager) Toggle(c *AudioClip) {
	if c.selected {
		m.Deselect(c)
	} else {
		m.Select(c)
	}
}

// SelectAll selects every clip on every track of the session.
func (m *ClipManager) SelectAll() {
	for _, t := range m.session.tracks {
		for _, c := range t.clips {
			m.Select(c)
		}
	}
}

func (m *ClipManager) DeselectAll() {
	for _, c := range m.selected {
		c.selected = false
	}
	m.selected = m.selected[:0]
}

// Selected returns the selected clips in the order they were selected.
func (m *ClipManager) Selected() []*AudioClip { return slices.Clone(m.selected) }

// SetSelection replaces the selection with clips.
func (m *ClipManager) SetSelection(clips []*AudioClip) {
	m.DeselectAll()
	for _, c := range clips {
		m.Select(c)
	}
}

// Prune deselects clips that are no longer on a track of the session.
func (m *ClipManager) Prune() {
	for _, c := range slices.Clone(m.selected) {
		if c.track == nil || !m.session.HasTrack(c.track) {
			m.Deselect(c)
		}
	}
}
