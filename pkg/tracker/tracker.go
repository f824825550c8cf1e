// Package tracker implements the monotonic request-token pattern used to
// discard stale asynchronous work.
//
// Each top-level operation (a simplification run, a voice session turn)
// issues a token at its start. Whenever a newer operation of the same
// workflow begins, it issues the next token, implicitly invalidating every
// earlier one. In-flight operations check IsCurrent immediately on entry and
// again after every suspension point (a provider call, a sandbox call) before
// publishing any side effect; a failed check means the work is stale and must
// be abandoned silently.
package tracker

import "sync/atomic"

// Token is an opaque monotonically increasing request identifier.
// Tokens are never reused and never decremented.
type Token uint64

// Tracker issues strictly increasing tokens for one logical workflow.
// The zero value is ready to use. A Tracker must not be copied after first
// use.
type Tracker struct {
	latest atomic.Uint64
}

// Issue returns the next token, invalidating all previously issued tokens.
func (t *Tracker) Issue() Token {
	return Token(t.latest.Add(1))
}

// IsCurrent reports whether tok is still the latest issued token.
func (t *Tracker) IsCurrent(tok Token) bool {
	return Token(t.latest.Load()) == tok
}

// Latest returns the most recently issued token, or zero if none has been
// issued yet.
func (t *Tracker) Latest() Token {
	return Token(t.latest.Load())
}
