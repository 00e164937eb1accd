package core

import (
	"errors"
	"fmt"

	"github.com/vsariola/traverso"
)

type (
	// AudioClipGroup is a set of clips together with the track each clip
	// belongs to and the position it started at, so that the clips can be
	// removed, reinserted and moved as one unit.
	AudioClipGroup struct {
		members []clipMember
	}

	clipMember struct {
		clip  *AudioClip
		track *Track
		start traverso.TimeRef
		index int // position in the track's clip list when removed, -1 to append
	}
)

// NewAudioClipGroup creates a group of clips that are already on tracks,
// remembering their current tracks and positions.
func NewAudioClipGroup(clips ...*AudioClip) *AudioClipGroup {
	g := &AudioClipGroup{}
	for _, c := range clips {
		g.Add(c, c.track)
	}
	return g
}

// Add puts clip into the group, associated with track.
func (g *AudioClipGroup) Add(clip *AudioClip, track *Track) {
	g.members = append(g.members, clipMember{clip: clip, track: track, start: clip.TrackStart(), index: -1})
}

func (g *AudioClipGroup) Len() int { return len(g.members) }

func (g *AudioClipGroup) Clips() []*AudioClip {
	ret := make([]*AudioClip, len(g.members))
	for i, m := range g.members {
		ret[i] = m.clip
	}
	return ret
}

// Tracks returns the track associated with each clip, in the order of Clips.
func (g *AudioClipGroup) Tracks() []*Track {
	ret := make([]*Track, len(g.members))
	for i, m := range g.members {
		ret[i] = m.track
	}
	return ret
}

// Start returns the earliest recorded start position of the group.
func (g *AudioClipGroup) Start() traverso.TimeRef {
	if len(g.members) == 0 {
		return 0
	}
	start := g.members[0].start
	for _, m := range g.members[1:] {
		start = min(start, m.start)
	}
	return start
}

// End returns the latest end position of the group at the recorded positions.
func (g *AudioClipGroup) End() traverso.TimeRef {
	var end traverso.TimeRef
	for _, m := range g.members {
		end = max(end, m.start+m.clip.Length())
	}
	return end
}

// AddToTracks adds every clip to its associated track, at the position it
// had when RemoveFromTracks took it off. If one of the clips cannot be added,
// the clips added so far are removed again.
func (g *AudioClipGroup) AddToTracks() error {
	if err := g.reserve(len(g.members)); err != nil {
		return err
	}
	order := g.addOrder()
	for n, i := range order {
		m := g.members[i]
		if m.track == nil {
			return g.rollbackAdd(order[:n], fmt.Errorf("clip %v has no track", m.clip.name))
		}
		if err := m.track.AddClipAt(m.clip, m.index); err != nil {
			return g.rollbackAdd(order[:n], err)
		}
	}
	return nil
}

// RemoveFromTracks removes every clip from the track it is on. If one of the
// clips cannot be removed, the clips removed so far are added back.
func (g *AudioClipGroup) RemoveFromTracks() error {
	if err := g.reserve(len(g.members)); err != nil {
		return err
	}
	for i := range g.members {
		m := &g.members[i]
		if m.clip.track == nil {
			return g.rollbackRemove(i, fmt.Errorf("%w: %v", ErrClipNotOnTrack, m.clip.name))
		}
		m.track = m.clip.track
		index, err := m.track.RemoveClip(m.clip)
		if err != nil {
			return g.rollbackRemove(i, err)
		}
		m.index = index
	}
	return nil
}

// Offset moves every clip to its recorded position plus delta, clamped to the
// start of the timeline.
func (g *AudioClipGroup) Offset(delta traverso.TimeRef) {
	for _, m := range g.members {
		m.clip.SetTrackStart(m.start + delta)
	}
}

// ShiftTracks moves every clip from the track it is on to the track shift
// positions away from its associated track, clamped to the session's tracks.
// A shift of zero returns the clips to their associated tracks, at the
// positions they left them from. Either all clips move or, on error, none
// do.
func (g *AudioClipGroup) ShiftTracks(shift int) error {
	moves := g.planShift(shift)
	if len(moves) == 0 {
		return nil
	}
	if err := moves[0].from.session.tsar.Reserve(2 * len(moves)); err != nil {
		return err
	}
	for n := range moves {
		if err := moves[n].apply(); err != nil {
			errs := []error{err}
			for i := n - 1; i >= 0; i-- {
				errs = append(errs, moves[i].revert())
			}
			return errors.Join(errs...)
		}
	}
	return nil
}

// clipMove takes one member from one track to another.
type clipMove struct {
	member   *clipMember
	from, to *Track
	index    int // index on from before the move
	saved    int // member.index before the move
}

func (g *AudioClipGroup) planShift(shift int) []clipMove {
	var moves []clipMove
	for n := range g.members {
		i := n
		if shift == 0 {
			i = len(g.members) - 1 - n
		}
		m := &g.members[i]
		if m.track == nil || m.clip.track == nil {
			continue
		}
		s := m.track.session
		home := s.TrackIndex(m.track)
		if home < 0 {
			continue
		}
		target := s.tracks[max(min(home+shift, len(s.tracks)-1), 0)]
		if target == m.clip.track {
			continue
		}
		moves = append(moves, clipMove{member: m, from: m.clip.track, to: target})
	}
	return moves
}

func (mv *clipMove) apply() error {
	m := mv.member
	mv.saved = m.index
	index, err := mv.from.RemoveClip(m.clip)
	if err != nil {
		return err
	}
	mv.index = index
	if mv.from == m.track {
		m.index = index
	}
	to := -1
	if mv.to == m.track {
		to = m.index
	}
	if err := mv.to.AddClipAt(m.clip, to); err != nil {
		m.index = mv.saved
		return errors.Join(err, mv.from.AddClipAt(m.clip, index))
	}
	return nil
}

func (mv *clipMove) revert() error {
	if _, err := mv.to.RemoveClip(mv.member.clip); err != nil {
		return err
	}
	mv.member.index = mv.saved
	return mv.from.AddClipAt(mv.member.clip, mv.index)
}

// reserve makes room in the Tsar for n operations on the group's tracks.
func (g *AudioClipGroup) reserve(n int) error {
	for _, m := range g.members {
		if t := m.track; t != nil {
			return t.session.tsar.Reserve(n)
		}
		if t := m.clip.track; t != nil {
			return t.session.tsar.Reserve(n)
		}
	}
	return nil
}

// Close closes the clips of the group.
func (g *AudioClipGroup) Close() error {
	var errs []error
	for _, m := range g.members {
		errs = append(errs, m.clip.Close())
	}
	return errors.Join(errs...)
}

// addOrder undoes removals in reverse so that recorded indices are valid;
// fresh clips are appended in group order.
func (g *AudioClipGroup) addOrder() []int {
	order := make([]int, 0, len(g.members))
	for i := len(g.members) - 1; i >= 0; i-- {
		if g.members[i].index >= 0 {
			order = append(order, i)
		}
	}
	for i, m := range g.members {
		if m.index < 0 {
			order = append(order, i)
		}
	}
	return order
}

func (g *AudioClipGroup) rollbackAdd(added []int, err error) error {
	errs := []error{err}
	for n := len(added) - 1; n >= 0; n-- {
		m := g.members[added[n]]
		_, rerr := m.track.RemoveClip(m.clip)
		errs = append(errs, rerr)
	}
	return errors.Join(errs...)
}

func (g *AudioClipGroup) rollbackRemove(n int, err error) error {
	errs := []error{err}
	for i := n - 1; i >= 0; i-- {
		m := g.members[i]
		errs = append(errs, m.track.AddClipAt(m.clip, m.index))
	}
	return errors.Join(errs...)
}
