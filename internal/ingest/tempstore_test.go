package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestSave_TimestampPrefix(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewTempStore(dir, nil)
	s.now = fixedClock(1700000000123)

	tf, err := s.Save("invoice.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "1700000000123-invoice.png"), tf.Path)
	assert.Equal(t, int64(4), tf.Size)
	assert.Equal(t, "invoice.png", tf.OriginalName)

	b, err := os.ReadFile(tf.Path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestSave_StripsDirectories(t *testing.T) {
	s := NewTempStore(t.TempDir(), nil)
	s.now = fixedClock(1)

	tf, err := s.Save("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "1-passwd", filepath.Base(tf.Path))
	assert.Equal(t, s.Dir(), filepath.Dir(tf.Path))

	tf, err = s.Save(`C:\Users\me\book.xlsx`, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "1-book.xlsx", filepath.Base(tf.Path))
}

func TestSave_SameMillisecondDoesNotCollide(t *testing.T) {
	s := NewTempStore(t.TempDir(), nil)
	s.now = fixedClock(42)

	a, err := s.Save("same.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save("same.pdf", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
	assert.True(t, strings.HasPrefix(filepath.Base(b.Path), "42-"))
	assert.True(t, strings.HasSuffix(b.Path, "same.pdf"))
}

func TestRelease_Idempotent(t *testing.T) {
	s := NewTempStore(t.TempDir(), nil)
	tf, err := s.Save("a.txt", strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, tf.Release())
	_, statErr := os.Stat(tf.Path)
	assert.True(t, os.IsNotExist(statErr))
	require.NoError(t, tf.Release())

	var nilFile *TempFile
	require.NoError(t, nilFile.Release())
}

func TestRelease_AlreadyRemoved(t *testing.T) {
	s := NewTempStore(t.TempDir(), nil)
	tf, err := s.Save("a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(tf.Path))
	require.NoError(t, tf.Release())
}

func TestWith_ReleasesOnSuccessAndFailure(t *testing.T) {
	s := NewTempStore(t.TempDir(), nil)

	var seen string
	err := s.With("ok.png", strings.NewReader("ok"), func(tf *TempFile) error {
		seen = tf.Path
		_, err := os.Stat(tf.Path)
		return err
	})
	require.NoError(t, err)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))

	boom := errors.New("boom")
	err = s.With("bad.png", strings.NewReader("bad"), func(tf *TempFile) error {
		seen = tf.Path
		// already deleted by the callee: release must not mask boom
		require.NoError(t, os.Remove(tf.Path))
		return boom
	})
	require.ErrorIs(t, err, boom)
	_, statErr = os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
