//go:build mfudebug

package sequence

// Built with -tags mfudebug: every mutation validates the whole sequence.
const debugChecks = true
