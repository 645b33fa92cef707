//go:build !mfudebug

package sequence

const debugChecks = false
