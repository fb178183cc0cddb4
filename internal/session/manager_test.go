package session

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webpuppet/internal/driver"
)

type stubLauncher struct {
	err      error
	launched int
}

func (s *stubLauncher) Launch(_ context.Context, _ driver.Type, _ driver.Options) (*driver.Driver, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.launched++
	return new(driver.Driver), nil
}

func newTestManager(l Launcher) *Manager {
	return NewManager(l, zap.NewNop())
}

func TestManagerOpen(t *testing.T) {
	stub := &stubLauncher{}
	m := newTestManager(stub)

	sess, err := m.Open(context.Background(), driver.TypeChrome, driver.DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, driver.TypeChrome, sess.Type)
	assert.NotNil(t, sess.Driver)
	assert.WithinDuration(t, time.Now(), sess.CreatedAt, time.Minute)
	assert.Equal(t, 1, stub.launched)
}

func TestManagerOpen_LaunchError(t *testing.T) {
	stub := &stubLauncher{err: errors.New("no browser installed")}
	m := newTestManager(stub)

	_, err := m.Open(context.Background(), driver.TypeChrome, driver.DefaultOptions())
	require.Error(t, err)
	assert.Empty(t, m.List())
}

func TestManagerGet(t *testing.T) {
	m := newTestManager(&stubLauncher{})

	sess, err := m.Open(context.Background(), driver.TypeChromium, driver.DefaultOptions())
	require.NoError(t, err)

	got, err := m.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	_, err = m.Get("missing")
	require.Error(t, err)
	code, ok := driver.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, driver.CodeSessionNotFound, code)
}

func TestManagerList_Ordered(t *testing.T) {
	m := newTestManager(&stubLauncher{})

	var ids []string
	for i := 0; i < 3; i++ {
		sess, err := m.Open(context.Background(), driver.TypeChrome, driver.DefaultOptions())
		require.NoError(t, err)
		sess.CreatedAt = time.Now().Add(time.Duration(-3+i) * time.Hour)
		ids = append(ids, sess.ID)
	}

	list := m.List()
	require.Len(t, list, 3)
	for i, sess := range list {
		assert.Equal(t, ids[i], sess.ID)
	}
}

func TestManagerClose(t *testing.T) {
	m := newTestManager(&stubLauncher{})

	sess, err := m.Open(context.Background(), driver.TypeChrome, driver.DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, m.Close(sess.ID))
	assert.Empty(t, m.List())

	err = m.Close(sess.ID)
	require.Error(t, err)
	code, ok := driver.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, driver.CodeSessionNotFound, code)
}

func TestManagerCloseAll(t *testing.T) {
	m := newTestManager(&stubLauncher{})

	for i := 0; i < 3; i++ {
		_, err := m.Open(context.Background(), driver.TypeChrome, driver.DefaultOptions())
		require.NoError(t, err)
	}
	require.Len(t, m.List(), 3)

	m.CloseAll()
	assert.Empty(t, m.List())

	// idempotent
	m.CloseAll()
}
