// Package audio plays a cue once per connection lifecycle.
//
// A new Cue is created for every connection. It buffers a fixed asset, fires
// a one-shot ready signal once the asset can play through, and hands it to a
// Player. Playback is best effort: a missing asset or a rejected player is
// logged and never reaches the caller.
package audio
