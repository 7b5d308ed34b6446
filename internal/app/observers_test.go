package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

func TestNewMultiObserver_Collapses(t *testing.T) {
	assert.Nil(t, NewMultiObserver())
	assert.Nil(t, NewMultiObserver(nil, nil))

	single := &recordingObserver{}
	assert.Same(t, single, NewMultiObserver(nil, single))

	_, ok := NewMultiObserver(&recordingObserver{}, &recordingObserver{}).(*MultiObserver)
	assert.True(t, ok)
}

func TestMultiObserver_FansOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	observer := NewMultiObserver(a, b)
	event := domain.AssetEvent{Type: domain.EventDownloaded, Asset: domain.Asset{UID: "u1"}}

	require.NoError(t, observer.OnStored(context.Background(), event))
	require.NoError(t, observer.OnRemoved(context.Background(), domain.AssetEvent{Type: domain.EventDeleted}))

	for _, o := range []*recordingObserver{a, b} {
		require.Len(t, o.stored, 1)
		assert.Equal(t, "u1", o.stored[0].Asset.UID)
		require.Len(t, o.removed, 1)
		assert.Equal(t, domain.EventDeleted, o.removed[0].Type)
	}
}

func TestMultiObserver_CombinesErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ok := &recordingObserver{}
	observer := NewMultiObserver(&recordingObserver{err: errA}, ok, &recordingObserver{err: errB})

	err := observer.OnStored(context.Background(), domain.AssetEvent{Type: domain.EventDownloaded})

	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, ok.stored, 1, "healthy observers still run")
}
