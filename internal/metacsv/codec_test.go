package metacsv

import (
	"bytes"
	"testing"
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/stretchr/testify/require"
)

func TestWriter_QuotingScenario(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 'x')
	require.NoError(t, w.Field("0"))
	require.NoError(t, w.Field("1"))
	require.NoError(t, w.Field("2"))
	require.NoError(t, w.EndRecord())
	require.Equal(t, "0x1x2\n", buf.String())

	buf.Reset()
	w2 := NewWriter(&buf, ';')
	require.NoError(t, w2.Field("hello;world"))
	require.NoError(t, w2.Field("with space"))
	require.NoError(t, w2.EndRecord())
	require.Equal(t, "\"hello;world\";\"with space\"\n", buf.String())
}

func TestReader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, ';')
	require.NoError(t, w.Field("hello;world"))
	require.NoError(t, w.Field("with space"))
	require.NoError(t, w.EndRecord())

	r := NewReader(&buf, ';')
	fields, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, []string{"hello;world", "with space"}, fields)
}

func TestWriteMeta_ReadMeta_RoundTrip(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := MetaRecord{
		Schedule: "s1",
		Action:   "a1",
		Task:     "t1",
		TaskOptions: []*model.Option{
			{ID: "o1", Name: model.Some("--count"), Value: model.Some("5")},
		},
		Tags:  []string{"tag1", "tag2"},
		Event: now,
		Start: now,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMeta(&buf, rec))

	got, err := ReadMeta(&buf)
	require.NoError(t, err)
	require.Equal(t, "s1", got.Schedule)
	require.Equal(t, "a1", got.Action)
	require.Equal(t, "t1", got.Task)
	require.Equal(t, []string{"tag1", "tag2"}, got.Tags)
	require.True(t, got.Event.Equal(now))
	require.Len(t, got.Options, 1)
	require.Equal(t, "o1", got.Options[0].ID)
}
