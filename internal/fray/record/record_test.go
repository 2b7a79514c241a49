package record

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var buf bytes.Buffer

	rec := NewWriter(&buf)
	entries := []Entry{
		{Session: "s1", Dir: DirRecv, Op: 1, Unique: 10, Len: 50, Time: time.Unix(100, 0).UTC()},
		{Session: "s1", Dir: DirSend, Op: 1, Unique: 10, Errno: -2, Len: 16, Time: time.Unix(101, 0).UTC()},
	}
	for _, e := range entries {
		require.NoError(t, rec.Record(e))
	}
	require.NoError(t, rec.Close())

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(entries))
	for i := range entries {
		// Decoded times come back in a different location; compare the
		// instant, then the rest of the entry.
		require.True(t, got[i].Time.Equal(entries[i].Time), "entry %d decoded to a different instant", i)
		got[i].Time, entries[i].Time = time.Time{}, time.Time{}
		require.Equal(t, entries[i], got[i])
	}
}

func TestRecorder_File(t *testing.T) {
	path := t.TempDir() + "/activity.rec"

	rec, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, rec.Record(Entry{Session: "s2", Dir: DirRecv, Op: 26, Unique: 1, Time: time.Unix(0, 0).UTC()}))
	require.NoError(t, rec.Close())

	// Appending reopens the same stream.
	rec, err = NewFile(path)
	require.NoError(t, err)
	require.NoError(t, rec.Record(Entry{Session: "s2", Dir: DirSend, Op: 26, Unique: 1, Time: time.Unix(1, 0).UTC()}))
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := Read(f)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, DirRecv, got[0].Dir)
	require.Equal(t, DirSend, got[1].Dir)
}
