package onboarding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puremark/puremark-go/internal/onboarding"
)

// fakeKV is an in-memory stand-in for the device store.
type fakeKV struct {
	data    map[string]string
	failGet error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	if f.failGet != nil {
		return "", false, f.failGet
	}
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeKV) Close() error { return nil }

func TestFlagLifecycle(t *testing.T) {
	flag := onboarding.NewFlag(newFakeKV())
	ctx := context.Background()

	assert.False(t, flag.Completed(ctx), "A fresh store means onboarding has not run")

	require.NoError(t, flag.SetCompleted(ctx, true))
	assert.True(t, flag.Completed(ctx))

	require.NoError(t, flag.SetCompleted(ctx, false))
	assert.False(t, flag.Completed(ctx))

	require.NoError(t, flag.SetCompleted(ctx, true))
	require.NoError(t, flag.Clear(ctx))
	assert.False(t, flag.Completed(ctx), "Clearing should force the first-run experience")
}

func TestCompleted_DegradesOnReadFailure(t *testing.T) {
	kv := newFakeKV()
	kv.failGet = errors.New("disk gone")
	flag := onboarding.NewFlag(kv)

	assert.False(t, flag.Completed(context.Background()),
		"A failing store should read as not completed, not error")
}
