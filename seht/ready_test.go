package seht

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/seht/dom"
)

func TestReadyDefersWhileLoading(t *testing.T) {
	for _, policy := range []ReadyPolicy{ReadyRunIfLoaded, ReadyDeferOnly} {
		t.Run(policy.String(), func(t *testing.T) {
			s := newTestSeht(t, WithReadyPolicy(policy))
			require.Equal(t, dom.ReadyStateLoading, s.Document().ReadyState())

			calls := 0
			s.Ready(func() { calls++ })
			assert.Equal(t, 0, calls)

			s.Document().FinishLoading()
			assert.Equal(t, 1, calls)

			s.Document().AsNode().DispatchEvent(dom.NewEvent("DOMContentLoaded", dom.EventInit{}))
			assert.Equal(t, 1, calls, "ready callbacks run once")
		})
	}
}

func TestReadyAfterLoad(t *testing.T) {
	t.Run("run-if-loaded runs synchronously", func(t *testing.T) {
		s := newTestSeht(t)
		s.Document().FinishLoading()

		calls := 0
		s.Ready(func() { calls++ })
		assert.Equal(t, 1, calls)
	})

	t.Run("defer-only never runs", func(t *testing.T) {
		s := newTestSeht(t, WithReadyPolicy(ReadyDeferOnly))
		s.Document().FinishLoading()

		calls := 0
		s.Ready(func() { calls++ })
		assert.Equal(t, 0, calls)
	})

	t.Run("interactive counts as loaded", func(t *testing.T) {
		s := New(dom.NewHTMLDocument())
		calls := 0
		s.Ready(func() { calls++ })
		assert.Equal(t, 1, calls)
	})
}

func TestReadyCancel(t *testing.T) {
	s := newTestSeht(t)
	calls := 0
	cancel := s.Ready(func() { calls++ })
	cancel()
	s.Document().FinishLoading()
	assert.Equal(t, 0, calls)

	s.Ready(nil)()
}

func TestParseReadyPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ReadyPolicy
		wantErr bool
	}{
		{"", ReadyRunIfLoaded, false},
		{"run-if-loaded", ReadyRunIfLoaded, false},
		{" Defer-Only ", ReadyDeferOnly, false},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseReadyPolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParsePolicy(t, got.String()))
	}
}

func mustParsePolicy(t *testing.T, s string) ReadyPolicy {
	t.Helper()
	p, err := ParseReadyPolicy(s)
	require.NoError(t, err)
	return p
}
