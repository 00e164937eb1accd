package commands

import (
	"path/filepath"
	"strings"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/command"
	"github.com/vsariola/traverso/core"
)

// DefaultSilenceLength is the length of the clip created by InsertSilence
// when no length is given.
const DefaultSilenceLength = 10 * traverso.Second

// Import opens a read source and places a new clip playing it on a track.
// The source is opened in Prepare; until the clip has been put on the track
// the command owns it and closes it when discarded.
type Import struct {
	command.Base
	provider traverso.SourceProvider
	track    *core.Track
	fileName string
	position traverso.TimeRef

	silent bool
	length traverso.TimeRef

	source  traverso.ReadSource
	clip    *core.AudioClip
	applied bool
}

// NewImport creates a command importing fileName, located through provider,
// onto track at position.
func NewImport(provider traverso.SourceProvider, track *core.Track, fileName string, position traverso.TimeRef) *Import {
	return &Import{
		Base:     command.NewBase("Import Audio", true),
		provider: provider,
		track:    track,
		fileName: fileName,
		position: position,
	}
}

// NewInsertSilence creates a command that puts a silent clip of the given
// length on track at position.
func NewInsertSilence(track *core.Track, length, position traverso.TimeRef) *Import {
	if length <= 0 {
		length = DefaultSilenceLength
	}
	return &Import{
		Base:     command.NewBase("Insert Silence", true),
		track:    track,
		position: position,
		silent:   true,
		length:   length,
	}
}

func (im *Import) Prepare() error {
	if im.track == nil {
		return command.Preconditionf("import: no track given")
	}
	session := im.track.Session()
	if !session.HasTrack(im.track) {
		return command.Preconditionf("import: track %v is not in the session", im.track.Name())
	}
	var name string
	if im.silent {
		im.source = traverso.NewSilentSource(im.length, session.Rate())
		name = "Silence"
	} else {
		if im.provider == nil {
			return command.Preconditionf("import: no source provider")
		}
		if !im.provider.Exists(im.fileName) {
			return command.Preconditionf("import: file %q does not exist", im.fileName)
		}
		src, err := im.provider.Open(im.fileName)
		if err != nil {
			return command.Preconditionf("import: open %q: %v", im.fileName, err)
		}
		if src.Rate() != session.Rate() {
			src.Close()
			return command.Preconditionf("import: %q has sample rate %d, session runs at %d", im.fileName, src.Rate(), session.Rate())
		}
		im.source = src
		name = strings.TrimSuffix(filepath.Base(im.fileName), filepath.Ext(im.fileName))
	}
	im.clip = core.NewAudioClip(name, im.source)
	im.clip.SetTrackStart(im.position)
	return nil
}

func (im *Import) Do() error {
	if err := im.track.AddClip(im.clip); err != nil {
		return err
	}
	im.applied = true
	return nil
}

func (im *Import) Undo() error {
	if _, err := im.track.RemoveClip(im.clip); err != nil {
		return err
	}
	im.applied = false
	return nil
}

// ReadSource returns the source opened by Prepare, or nil.
func (im *Import) ReadSource() traverso.ReadSource { return im.source }

// Clip returns the clip created by Prepare, or nil.
func (im *Import) Clip() *core.AudioClip { return im.clip }

// Close releases the clip and its source unless the clip is on the track, in
// which case the track owns it.
func (im *Import) Close() error {
	if im.clip == nil || im.applied {
		return nil
	}
	clip := im.clip
	im.clip = nil
	var err error
	im.track.Session().Tsar().DestroyWhenSettled(clip, func() { err = clip.Close() })
	return err
}
