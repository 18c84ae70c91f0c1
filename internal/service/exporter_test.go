package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"SNCatalog/internal/dbtest"
	"SNCatalog/internal/metrics"
	"SNCatalog/internal/model"
	"SNCatalog/internal/repository"
	"SNCatalog/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink 记录写入的 key
type memorySink struct {
	keys   []string
	failAt int
}

func (m *memorySink) Name() string { return "memory" }

func (m *memorySink) Put(_ context.Context, key string, _ []byte) error {
	if m.failAt > 0 && len(m.keys)+1 == m.failAt {
		return errors.New("sink full")
	}
	m.keys = append(m.keys, key)
	return nil
}

func TestExporter_WritesOneFilePerEvent(t *testing.T) {
	gdb := dbtest.New(t)
	f := seedCatalog(t, gdb, []string{"S1"}, []string{"Ia"}, []string{"G1"})
	for i := 1; i <= 5; i++ {
		createEvent(t, gdb, &model.Event{
			Name:         fmt.Sprintf("SN-%d", i),
			ClaimedTypes: []model.ClaimedType{f.claim("Ia", "S1")},
			HostGalaxies: []model.HostGalaxy{f.host("G1", "S1")},
		})
	}

	dir := t.TempDir()
	sink, err := storage.NewDirSink(dir)
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	x := NewExporter(repository.NewEventRepository(gdb), m, quietLogger(), 2)
	n, err := x.Export(context.Background(), sink)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, float64(5), testutil.ToFloat64(m.ExportedEvents))

	raw, err := os.ReadFile(filepath.Join(dir, "SN-3.json"))
	require.NoError(t, err)
	var catalog model.OSCCatalog
	require.NoError(t, json.Unmarshal(raw, &catalog))
	doc := catalog["SN-3"]
	require.NotNil(t, doc)
	assert.Equal(t, []model.NamedClaim{{Source: "2", Name: "G1"}}, doc.HostGalaxy)
	assert.Equal(t, []model.NamedClaim{{Source: "2", Name: "Ia"}}, doc.ClaimedType)
}

func TestExporter_EmptyCatalog(t *testing.T) {
	sink := &memorySink{}
	n, err := NewExporter(repository.NewEventRepository(dbtest.New(t)), nil, quietLogger(), 0).Export(context.Background(), sink)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sink.keys)
}

func TestExporter_SinkError(t *testing.T) {
	gdb := dbtest.New(t)
	for _, name := range []string{"SN-a", "SN-b", "SN-c"} {
		createEvent(t, gdb, &model.Event{Name: name})
	}
	sink := &memorySink{failAt: 2}
	n, err := NewExporter(repository.NewEventRepository(gdb), nil, quietLogger(), 10).Export(context.Background(), sink)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"SN-a.json"}, sink.keys)
}
