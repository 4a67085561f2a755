package eventlog

import (
	"errors"
	"replisync/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFanoutPreservesOrder(t *testing.T) {
	first, second := NewRecorder(), NewRecorder()
	var seen []model.Action
	sink := Fanout{first, nil, second, SinkFunc(func(e model.Event) {
		seen = append(seen, e.Action)
	})}

	sink.Emit(model.Event{Action: model.ActionRunStart})
	sink.Emit(model.Event{Action: model.ActionCopyFile, RelPath: "a.txt"})

	exp := []model.Action{model.ActionRunStart, model.ActionCopyFile}
	assert.Equal(t, exp, first.Actions())
	assert.Equal(t, exp, second.Actions())
	assert.Equal(t, exp, seen)
}

func TestRecorderReset(t *testing.T) {
	r := NewRecorder()
	r.Emit(model.Event{Action: model.ActionRunStart})
	assert.Len(t, r.Events(), 1)

	r.Reset()
	assert.Empty(t, r.Events())
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(zap.New(core))

	sink.Emit(model.Event{Action: model.ActionRunStart})
	sink.Emit(model.Event{Action: model.ActionCopyFile, RelPath: "a/b.txt", FullPath: "/replica/a/b.txt"})

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "SYNC START", entries[0].Message)
		assert.Empty(t, entries[0].Context)

		assert.Equal(t, "COPIED FILE", entries[1].Message)
		ctx := entries[1].ContextMap()
		assert.Equal(t, "a/b.txt", ctx["rel"])
		assert.Equal(t, "/replica/a/b.txt", ctx["path"])
		assert.Equal(t, "Copied file 'a/b.txt' to '/replica/a/b.txt'", ctx["detail"])
	}
}

type fakeSaver struct {
	saved []model.Event
	err   error
}

func (f *fakeSaver) SaveEvent(runID uint, event model.Event) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, event)
	return nil
}

func TestHistorySink(t *testing.T) {
	saver := &fakeSaver{}
	NewHistorySink(saver, 7).Emit(model.Event{Action: model.ActionDeleteFile})
	assert.Len(t, saver.saved, 1)

	failing := &fakeSaver{err: errors.New("disk full")}
	assert.NotPanics(t, func() {
		NewHistorySink(failing, 7).Emit(model.Event{Action: model.ActionDeleteFile})
	})
}
