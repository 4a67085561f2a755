package pipeline

import (
	"path/filepath"
	"replisync/internal/logger"
	"replisync/internal/model"
	"strings"

	"go.uber.org/zap"
)

// Ignorer matches paths under root against glob patterns. A pattern matches
// when it matches any single component of the path relative to root, so
// folders above root never cause a match.
type Ignorer struct {
	root     string
	patterns []string
}

// NewIgnorer drops malformed patterns with a warning.
func NewIgnorer(root string, patterns []string) *Ignorer {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			logger.Log.Warn("ignoring malformed pattern",
				zap.String("pattern", p),
				zap.Error(err))
			continue
		}
		valid = append(valid, p)
	}

	return &Ignorer{root: filepath.Clean(root), patterns: valid}
}

func (ig *Ignorer) Match(path string) bool {
	rel, err := filepath.Rel(ig.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, p := range ig.patterns {
			if ok, _ := filepath.Match(p, part); ok {
				return true
			}
		}
	}

	return false
}

// Filter forwards the notices ig does not match.
func Filter(inCh <-chan model.ChangeNotice, ig *Ignorer) <-chan model.ChangeNotice {
	outCh := make(chan model.ChangeNotice, cap(inCh))

	go func() {
		defer close(outCh)
		for notice := range inCh {
			if !ig.Match(notice.Path) {
				outCh <- notice
			}
		}
	}()

	return outCh
}
