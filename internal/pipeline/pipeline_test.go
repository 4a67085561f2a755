package pipeline

import (
	"replisync/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIgnorerMatch(t *testing.T) {
	ig := NewIgnorer("/src", []string{".git", "*.swp", ".DS_Store"})

	assert.True(t, ig.Match("/src/.git/HEAD"))
	assert.True(t, ig.Match("/src/dir/file.swp"))
	assert.True(t, ig.Match("/src/.DS_Store"))
	assert.False(t, ig.Match("/src/dir/file.txt"))
	assert.False(t, ig.Match("/src/.github/ci.yml"))
	assert.False(t, ig.Match("/src"))
	assert.False(t, NewIgnorer("/src", nil).Match("/src/file.txt"))
}

func TestIgnorerOnlyMatchesBelowRoot(t *testing.T) {
	ig := NewIgnorer("/work/build.tmp/src", []string{"*.tmp"})

	assert.False(t, ig.Match("/work/build.tmp/src/a.txt"))
	assert.True(t, ig.Match("/work/build.tmp/src/cache.tmp"))
	assert.False(t, ig.Match("/elsewhere/x.tmp"))
}

func TestIgnorerDropsMalformedPatterns(t *testing.T) {
	ig := NewIgnorer("/src", []string{"[", "*.swp"})

	assert.Equal(t, []string{"*.swp"}, ig.patterns)
	assert.True(t, ig.Match("/src/a.swp"))
	assert.False(t, ig.Match("/src/[.txt"))
}

func TestFilter(t *testing.T) {
	in := make(chan model.ChangeNotice, 4)
	in <- model.ChangeNotice{Path: "/src/a.txt"}
	in <- model.ChangeNotice{Path: "/src/.git/index"}
	in <- model.ChangeNotice{Path: "/src/b.swp"}
	in <- model.ChangeNotice{Path: "/src/c.txt"}
	close(in)

	var got []string
	for n := range Filter(in, NewIgnorer("/src", []string{".git", "*.swp"})) {
		got = append(got, n.Path)
	}
	assert.Equal(t, []string{"/src/a.txt", "/src/c.txt"}, got)
}

func TestDebounceCollapsesBurst(t *testing.T) {
	in := make(chan model.ChangeNotice)
	out := Debounce(in, 20*time.Millisecond)

	for i := 0; i < 5; i++ {
		in <- model.ChangeNotice{Path: "/src/a.txt"}
	}

	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("no signal after burst")
	}

	select {
	case <-out:
		t.Fatal("burst produced more than one signal")
	case <-time.After(100 * time.Millisecond):
	}

	close(in)
	_, ok := <-out
	assert.False(t, ok)
}

func TestDebounceFlushesOnClose(t *testing.T) {
	in := make(chan model.ChangeNotice)
	out := Debounce(in, time.Hour)

	in <- model.ChangeNotice{Path: "/src/a.txt"}
	close(in)

	_, ok := <-out
	assert.True(t, ok)
	_, ok = <-out
	assert.False(t, ok)
}
