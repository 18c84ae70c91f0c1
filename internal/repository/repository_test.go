package repository

import (
	"context"
	"testing"

	"SNCatalog/internal/dbtest"
	"SNCatalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	src1, src2 *model.Source
	ia, ib     *model.SubType
	ngc1, ngc2 *model.Galaxy
}

func seedReferences(t *testing.T, gdb *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		src1: &model.Source{Name: "Source One", URL: strPtr("https://one"), Bibcode: strPtr("2024ApJ...001A")},
		src2: &model.Source{Name: "Source Two"},
		ia:   &model.SubType{Name: "Ia"},
		ib:   &model.SubType{Name: "Ib"},
		ngc1: &model.Galaxy{Name: "NGC 1"},
		ngc2: &model.Galaxy{Name: "NGC 2"},
	}
	for _, row := range []interface{}{f.src1, f.src2, f.ia, f.ib, f.ngc1, f.ngc2} {
		require.NoError(t, gdb.Create(row).Error)
	}
	return f
}

func newEvent(name string, f fixture) *model.Event {
	return &model.Event{
		Name: name,
		ClaimedTypes: []model.ClaimedType{
			{SubTypeID: f.ia.ID, SourceID: f.src1.ID},
			{SubTypeID: f.ib.ID, SourceID: f.src2.ID},
		},
		HostGalaxies: []model.HostGalaxy{
			{GalaxyID: f.ngc1.ID, SourceID: f.src1.ID},
		},
		Attributes: []model.Attribute{
			{Name: model.AttrRedshift, Value: 0.01, SourceID: f.src1.ID},
			{Name: model.AttrRedshift, Value: 0.01, SourceID: f.src2.ID},
		},
	}
}

func TestEventRepository_CreateAndGet(t *testing.T) {
	gdb := dbtest.New(t)
	f := seedReferences(t, gdb)
	repo := NewEventRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newEvent("SN2024a", f)))

	ev, err := repo.GetByName(ctx, "SN2024a")
	require.NoError(t, err)
	require.Len(t, ev.ClaimedTypes, 2)
	assert.Equal(t, "Ia", ev.ClaimedTypes[0].SubType.Name)
	assert.Equal(t, "Source One", ev.ClaimedTypes[0].Source.Name)
	assert.Equal(t, "Ib", ev.ClaimedTypes[1].SubType.Name)
	require.Len(t, ev.HostGalaxies, 1)
	assert.Equal(t, "NGC 1", ev.HostGalaxies[0].Galaxy.Name)
	require.Len(t, ev.Attributes, 2)
	assert.Equal(t, "", ev.Attributes[0].Unit)
	assert.NotNil(t, ev.Attributes[1].Source)

	byID, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "SN2024a", byID.Name)
}

func TestEventRepository_NotFound(t *testing.T) {
	repo := NewEventRepository(dbtest.New(t))

	_, err := repo.GetByName(context.Background(), "SN1999zz")
	require.ErrorIs(t, err, ErrEventNotFound)
	assert.Equal(t, `Event with name "SN1999zz" not found.`, err.Error())

	_, err = repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.DeleteByName(context.Background(), "SN1999zz")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventRepository_DuplicateName(t *testing.T) {
	gdb := dbtest.New(t)
	f := seedReferences(t, gdb)
	repo := NewEventRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Event{Name: "SN2024dup"}))
	err := repo.Create(ctx, newEvent("SN2024dup", f))
	assert.ErrorIs(t, err, ErrDuplicate)

	// 事务回滚，第二次写入的声明不应残留
	var claims int64
	require.NoError(t, gdb.Model(&model.ClaimedType{}).Count(&claims).Error)
	assert.Zero(t, claims)
}

func TestEventRepository_List(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewEventRepository(gdb)
	ctx := context.Background()

	for _, name := range []string{"SN-a", "SN-b", "SN-c", "SN-d", "SN-e"} {
		require.NoError(t, repo.Create(ctx, &model.Event{Name: name}))
	}

	page, total, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "SN-a", page[0].Name)
	assert.Equal(t, "SN-b", page[1].Name)

	last, _, err := repo.List(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "SN-e", last[0].Name)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestEventRepository_DeleteCascades(t *testing.T) {
	gdb := dbtest.New(t)
	f := seedReferences(t, gdb)
	repo := NewEventRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newEvent("SN2024del", f)))
	require.NoError(t, repo.DeleteByName(ctx, "SN2024del"))

	for _, m := range []interface{}{&model.Event{}, &model.ClaimedType{}, &model.HostGalaxy{}, &model.Attribute{}} {
		var n int64
		require.NoError(t, gdb.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
	// 参考数据保留
	var sources int64
	require.NoError(t, gdb.Model(&model.Source{}).Count(&sources).Error)
	assert.EqualValues(t, 2, sources)
}

func TestReferenceRepository_DeleteProtected(t *testing.T) {
	gdb := dbtest.New(t)
	f := seedReferences(t, gdb)
	require.NoError(t, NewEventRepository(gdb).Create(context.Background(), newEvent("SN2024ref", f)))
	repo := NewReferenceRepository(gdb)
	ctx := context.Background()

	assert.ErrorIs(t, repo.DeleteSource(ctx, f.src1.ID), ErrProtected)
	assert.ErrorIs(t, repo.DeleteSubType(ctx, f.ia.ID), ErrProtected)
	assert.ErrorIs(t, repo.DeleteGalaxy(ctx, f.ngc1.ID), ErrProtected)

	// 未被引用的可以删除
	require.NoError(t, repo.DeleteGalaxy(ctx, f.ngc2.ID))
	_, err := repo.GetGalaxy(ctx, f.ngc2.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteSource(ctx, 9999), ErrNotFound)
}

func TestReferenceRepository_DuplicateBibcode(t *testing.T) {
	gdb := dbtest.New(t)
	seedReferences(t, gdb)
	repo := NewReferenceRepository(gdb)

	err := repo.CreateSource(context.Background(), &model.Source{Name: "Copy", Bibcode: strPtr("2024ApJ...001A")})
	assert.ErrorIs(t, err, ErrDuplicate)

	// bibcode 为空的来源可以重复
	require.NoError(t, repo.CreateSource(context.Background(), &model.Source{Name: "No Bibcode"}))
	sources, total, err := repo.ListSources(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, sources, 3)
}

func TestImportRepository_FindAndClear(t *testing.T) {
	gdb := dbtest.New(t)
	f := seedReferences(t, gdb)
	require.NoError(t, NewEventRepository(gdb).Create(context.Background(), newEvent("SN2024imp", f)))
	store := NewImportRepository(gdb)
	ctx := context.Background()

	got, err := store.FindSource(ctx, "Source One", strPtr("https://one"))
	require.NoError(t, err)
	assert.Equal(t, f.src1.ID, got.ID)

	got, err = store.FindSource(ctx, "Source Two", nil)
	require.NoError(t, err)
	assert.Equal(t, f.src2.ID, got.ID)

	_, err = store.FindSource(ctx, "Source One", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	g, err := store.FindGalaxyByName(ctx, "NGC 2")
	require.NoError(t, err)
	assert.Equal(t, f.ngc2.ID, g.ID)

	_, err = store.FindSubTypeByName(ctx, "IIn")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Clear(ctx))
	for _, m := range clearOrder {
		var n int64
		require.NoError(t, gdb.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
}

func TestImportRepository_CreateInBatches(t *testing.T) {
	gdb := dbtest.New(t)
	store := NewImportRepository(gdb)
	ctx := context.Background()

	galaxies := make([]*model.Galaxy, 0, 7)
	for _, name := range []string{"G1", "G2", "G3", "G4", "G5", "G6", "G7"} {
		galaxies = append(galaxies, &model.Galaxy{Name: name})
	}
	require.NoError(t, store.CreateGalaxies(ctx, galaxies, 3))
	require.NoError(t, store.CreateSubTypes(ctx, nil, 3))

	var n int64
	require.NoError(t, gdb.Model(&model.Galaxy{}).Count(&n).Error)
	assert.EqualValues(t, 7, n)
	for _, g := range galaxies {
		assert.NotZero(t, g.ID)
	}
}

func TestImportRunRepository(t *testing.T) {
	gdb := dbtest.New(t)
	repo := NewImportRunRepository(gdb)
	ctx := context.Background()

	first := &model.ImportRun{RunUUID: "run-1", DataDir: "./data", Status: model.ImportStatusRunning}
	second := &model.ImportRun{RunUUID: "run-2", DataDir: "./data", Status: model.ImportStatusRunning}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	msg := "boom"
	require.NoError(t, repo.Finish(ctx, "run-1", model.ImportStatusFailed, nil, &msg))

	got, err := repo.GetByUUID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.ImportStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "boom", *got.Error)
	assert.NotNil(t, got.FinishedAt)

	runs, err := repo.Latest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunUUID)

	_, err = repo.GetByUUID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsRepository(t *testing.T) {
	gdb := dbtest.New(t)
	f := seedReferences(t, gdb)
	events := NewEventRepository(gdb)
	ctx := context.Background()

	require.NoError(t, events.Create(ctx, newEvent("SN-both", f)))
	require.NoError(t, events.Create(ctx, &model.Event{
		Name: "SN-host",
		HostGalaxies: []model.HostGalaxy{
			{GalaxyID: f.ngc1.ID, SourceID: f.src1.ID},
			{GalaxyID: f.ngc1.ID, SourceID: f.src2.ID},
		},
	}))
	require.NoError(t, events.Create(ctx, &model.Event{Name: "SN-bare"}))

	repo := NewStatsRepository(gdb)

	counts, err := repo.SourceCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, EventSourceCountView{EventID: counts[0].EventID, EventName: "SN-both", SubTypeSources: 2, HostSources: 1}, counts[0])
	assert.Equal(t, 0, counts[1].SubTypeSources)
	assert.Equal(t, 2, counts[1].HostSources)
	assert.Equal(t, 0, counts[2].SubTypeSources+counts[2].HostSources)

	pairs, err := repo.ClaimPairs(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "Ia", pairs[0].SubTypeName)
	assert.Equal(t, "Ib", pairs[1].SubTypeName)

	galaxyEvents, err := repo.GalaxyEvents(ctx)
	require.NoError(t, err)
	require.Len(t, galaxyEvents, 2)
	assert.Equal(t, "NGC 1", galaxyEvents[0].GalaxyName)
	assert.Equal(t, "SN-both", galaxyEvents[0].EventName)
	assert.Equal(t, "SN-host", galaxyEvents[1].EventName)

	galaxySubTypes, err := repo.GalaxySubTypes(ctx)
	require.NoError(t, err)
	require.Len(t, galaxySubTypes, 2)
	assert.Equal(t, "Ia", galaxySubTypes[0].SubTypeName)
	assert.Equal(t, "Ib", galaxySubTypes[1].SubTypeName)
}
