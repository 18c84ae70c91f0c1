package service

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"SNCatalog/internal/model"
	"SNCatalog/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func strPtr(s string) *string { return &s }

// catalogFixture 按名称索引的参考数据
type catalogFixture struct {
	sources  map[string]*model.Source
	subTypes map[string]*model.SubType
	galaxies map[string]*model.Galaxy
}

func seedCatalog(t *testing.T, gdb *gorm.DB, sources, subTypes, galaxies []string) catalogFixture {
	t.Helper()
	f := catalogFixture{
		sources:  map[string]*model.Source{},
		subTypes: map[string]*model.SubType{},
		galaxies: map[string]*model.Galaxy{},
	}
	for _, name := range sources {
		s := &model.Source{Name: name, URL: strPtr("https://example.org/" + name)}
		require.NoError(t, gdb.Create(s).Error)
		f.sources[name] = s
	}
	for _, name := range subTypes {
		s := &model.SubType{Name: name}
		require.NoError(t, gdb.Create(s).Error)
		f.subTypes[name] = s
	}
	for _, name := range galaxies {
		g := &model.Galaxy{Name: name}
		require.NoError(t, gdb.Create(g).Error)
		f.galaxies[name] = g
	}
	return f
}

// claim / host 简写，便于构造事件
func (f catalogFixture) claim(subType, source string) model.ClaimedType {
	return model.ClaimedType{SubTypeID: f.subTypes[subType].ID, SourceID: f.sources[source].ID}
}

func (f catalogFixture) host(galaxy, source string) model.HostGalaxy {
	return model.HostGalaxy{GalaxyID: f.galaxies[galaxy].ID, SourceID: f.sources[source].ID}
}

func (f catalogFixture) attr(name model.AttributeName, value float64, unit, source string) model.Attribute {
	return model.Attribute{Name: name, Value: value, Unit: unit, SourceID: f.sources[source].ID}
}

func createEvent(t *testing.T, gdb *gorm.DB, ev *model.Event) {
	t.Helper()
	require.NoError(t, repository.NewEventRepository(gdb).Create(context.Background(), ev))
}

func writeJSON(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	raw, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), raw, 0o644))
}
