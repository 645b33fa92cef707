package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowDeny(t *testing.T) {
	t.Parallel()

	assert.True(t, Allow[string, int]()("a", 1))
	assert.False(t, Deny[string, int]()("a", 1))
}

func TestOlderThan(t *testing.T) {
	t.Parallel()

	p := OlderThan[int, string](30 * time.Second)
	assert.False(t, p(1, "v", 30*time.Second), "exactly maxAge is not expired")
	assert.True(t, p(1, "v", 31*time.Second))

	never := OlderThan[int, string](0)
	assert.False(t, never(1, "v", 24*time.Hour))
}

func TestCombinators(t *testing.T) {
	t.Parallel()

	even := Keys[int, string](func(k int) bool { return k%2 == 0 })
	small := Keys[int, string](func(k int) bool { return k < 50 })
	short := Values[int, string](func(v string) bool { return len(v) < 5 })

	both := All(even, small)
	assert.True(t, both(34, "Java"))
	assert.False(t, both(94, "Buda"))
	assert.False(t, both(13, "Kyiv"))
	assert.True(t, All[int, string]()(1, "x"), "empty All allows")
	assert.True(t, All(even, nil)(2, "x"), "nil entries are skipped")

	either := Any(even, short)
	assert.True(t, either(13, "Kyiv"))
	assert.False(t, either(13, "Wrong value"))
	assert.False(t, Any[int, string]()(1, "x"), "empty Any denies")

	assert.True(t, Not(even)(13, ""))

	tenant := Keys[string, int](func(k string) bool { return strings.HasPrefix(k, "acme:") })
	assert.True(t, tenant("acme:1", 0))
	assert.False(t, tenant("globex:1", 0))
}
