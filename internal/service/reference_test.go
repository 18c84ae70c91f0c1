package service

import (
	"context"
	"strings"
	"testing"

	"SNCatalog/internal/dbtest"
	"SNCatalog/internal/model"
	"SNCatalog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceService_CreateSource(t *testing.T) {
	svc := NewReferenceService(repository.NewReferenceRepository(dbtest.New(t)), quietLogger())
	ctx := context.Background()

	src, err := svc.CreateSource(ctx, SourceInput{Name: "ATel 3581", URL: strPtr(""), Bibcode: strPtr(" "), DOI: strPtr("")})
	require.NoError(t, err)
	assert.NotZero(t, src.ID)
	assert.Nil(t, src.URL)
	assert.Nil(t, src.Bibcode)
	assert.Nil(t, src.DOI)

	// 空 bibcode 不触发唯一约束
	_, err = svc.CreateSource(ctx, SourceInput{Name: "Another", Bibcode: strPtr("")})
	require.NoError(t, err)

	_, err = svc.CreateSource(ctx, SourceInput{Name: "Long", Bibcode: strPtr(strings.Repeat("x", 20))})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateSource(ctx, SourceInput{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateSource(ctx, SourceInput{Name: "First", DOI: strPtr("10.1038/nature10644")})
	require.NoError(t, err)
	_, err = svc.CreateSource(ctx, SourceInput{Name: "Second", DOI: strPtr("10.1038/nature10644")})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	page, err := svc.ListSources(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
}

func TestReferenceService_DeleteInUse(t *testing.T) {
	gdb := dbtest.New(t)
	f := seedCatalog(t, gdb, []string{"S1"}, []string{"Ia", "II"}, []string{"M101"})
	createEvent(t, gdb, &model.Event{
		Name:         "SN-ref",
		ClaimedTypes: []model.ClaimedType{f.claim("Ia", "S1")},
		HostGalaxies: []model.HostGalaxy{f.host("M101", "S1")},
	})
	svc := NewReferenceService(repository.NewReferenceRepository(gdb), quietLogger())
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteSubType(ctx, f.subTypes["Ia"].ID), repository.ErrProtected)
	assert.ErrorIs(t, svc.DeleteGalaxy(ctx, f.galaxies["M101"].ID), repository.ErrProtected)
	assert.ErrorIs(t, svc.DeleteSource(ctx, f.sources["S1"].ID), repository.ErrProtected)
	require.NoError(t, svc.DeleteSubType(ctx, f.subTypes["II"].ID))

	// 删除事件后引用解除
	require.NoError(t, repository.NewEventRepository(gdb).DeleteByName(ctx, "SN-ref"))
	assert.NoError(t, svc.DeleteSource(ctx, f.sources["S1"].ID))
}

func TestReferenceService_Galaxies(t *testing.T) {
	svc := NewReferenceService(repository.NewReferenceRepository(dbtest.New(t)), quietLogger())
	ctx := context.Background()

	dec := 54.349
	g, err := svc.CreateGalaxy(ctx, GalaxyInput{Name: "M101", HostRA: strPtr("14:03:12.5"), HostDec: &dec})
	require.NoError(t, err)

	got, err := svc.GetGalaxy(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "14:03:12.5", *got.HostRA)
	assert.Equal(t, dec, *got.HostDec)

	_, err = svc.GetGalaxy(ctx, g.ID+1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	st, err := svc.CreateSubType(ctx, NameInput{Name: "Ia"})
	require.NoError(t, err)
	subTypes, err := svc.ListSubTypes(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, subTypes.Results, 1)
	assert.Equal(t, st.ID, subTypes.Results[0].ID)
}
