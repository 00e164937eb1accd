/*
Package core contains the object graph of a session: the Session with its
tracks and master bus, the tracks with their audio clips, and the helpers
commands use to manipulate them.

Every object whose membership the audio goroutine can see keeps two lists: the
GUI list, changed immediately by the GUI goroutine, and the realtime list,
changed only by Tsar operations between audio blocks. The GUI goroutine reads
and writes only the GUI lists; Process and the functions it calls read only the
realtime lists. Scalar properties read while rendering (positions, gains,
mute) are stored in atomics so that commands can change them at any time.

The closed set of objects a command can be dispatched on is expressed by the
ContextItem interface, which only *Session, *Track and *AudioClip implement.
*/
package core
