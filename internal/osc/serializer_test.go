package osc

import (
	"encoding/json"
	"testing"

	"SNCatalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureEvent 三个来源、两种分类、两个宿主星系、四条属性（两条 redshift 同值）
func fixtureEvent() *model.Event {
	s1 := &model.Source{ID: 11, Name: "Source One", URL: strPtr("https://one"), DOI: strPtr("10.1000/one")}
	s2 := &model.Source{ID: 12, Name: "Source Two"}
	s3 := &model.Source{ID: 13, Name: "Source Three", Secondary: true}
	ia := &model.SubType{ID: 1, Name: "Type Ia"}
	ib := &model.SubType{ID: 2, Name: "Type Ib"}
	g1 := &model.Galaxy{ID: 1, Name: "NGC 1234"}
	g2 := &model.Galaxy{ID: 2, Name: "NGC 5678"}

	return &model.Event{
		ID:   7,
		Name: "SN2024test",
		ClaimedTypes: []model.ClaimedType{
			{SubType: ia, Source: s1},
			{SubType: ib, Source: s2},
		},
		HostGalaxies: []model.HostGalaxy{
			{Galaxy: g1, Source: s1},
			{Galaxy: g2, Source: s3},
		},
		Attributes: []model.Attribute{
			{Name: model.AttrRedshift, Value: 0.05, Unit: "", Source: s1},
			{Name: model.AttrRedshift, Value: 0.05, Unit: "", Source: s2},
			{Name: model.AttrVelocity, Value: 15000, Unit: "km/s", Source: s3},
			{Name: model.AttrLumDist, Value: 200, Unit: "Mpc", Source: s1},
		},
	}
}

func TestSerialize_Document(t *testing.T) {
	catalog, err := Serialize(fixtureEvent())
	require.NoError(t, err)
	require.Contains(t, catalog, "SN2024test")

	doc := catalog["SN2024test"]
	assert.Equal(t, model.OSCSchemaURL, doc.Schema)
	assert.Equal(t, "SN2024test", doc.Name)

	// hostgalaxy 先处理：s1 -> 2, s3 -> 3；claimedtype 中 s2 -> 4
	require.Len(t, doc.Sources, 3)
	assert.Equal(t, "Source One", doc.Sources[0].Name)
	assert.Equal(t, "2", doc.Sources[0].Alias)
	assert.Equal(t, "Source Three", doc.Sources[1].Name)
	assert.Equal(t, "3", doc.Sources[1].Alias)
	assert.True(t, doc.Sources[1].Secondary)
	assert.Equal(t, "Source Two", doc.Sources[2].Name)
	assert.Equal(t, "4", doc.Sources[2].Alias)

	assert.Equal(t, []model.NamedClaim{
		{Source: "2", Name: "NGC 1234"},
		{Source: "3", Name: "NGC 5678"},
	}, doc.HostGalaxy)
	assert.Equal(t, []model.NamedClaim{
		{Source: "2", Name: "Type Ia"},
		{Source: "4", Name: "Type Ib"},
	}, doc.ClaimedType)

	require.Len(t, doc.Redshift, 1)
	assert.Equal(t, "2,4", doc.Redshift[0].Source)
	assert.Equal(t, model.AttrRedshift, doc.Redshift[0].Name)
	assert.Equal(t, 0.05, doc.Redshift[0].Value)

	require.Len(t, doc.Velocity, 1)
	assert.Equal(t, "3", doc.Velocity[0].Source)
	assert.Equal(t, "km/s", doc.Velocity[0].Unit)

	require.Len(t, doc.LumDist, 1)
	assert.Equal(t, "2", doc.LumDist[0].Source)

	assert.NotNil(t, doc.MaxAbsMag)
	assert.Empty(t, doc.MaxAbsMag)
	assert.NotNil(t, doc.MaxAppMag)
	assert.Empty(t, doc.MaxAppMag)
}

func TestSerialize_EmptyFamiliesAreArrays(t *testing.T) {
	catalog, err := Serialize(&model.Event{Name: "SN2024empty"})
	require.NoError(t, err)

	raw, err := json.Marshal(catalog)
	require.NoError(t, err)

	var decoded map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	doc := decoded["SN2024empty"]
	for _, key := range []string{"sources", "hostgalaxy", "claimedtype", "lumdist", "velocity", "redshift", "maxabsmag", "maxappmag"} {
		assert.Equal(t, "[]", string(doc[key]), key)
	}
}

func TestSerialize_JSONShape(t *testing.T) {
	catalog, err := Serialize(fixtureEvent())
	require.NoError(t, err)
	raw, err := json.Marshal(catalog)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	doc := decoded["SN2024test"]

	sources := doc["sources"].([]interface{})
	for _, s := range sources {
		rec := s.(map[string]interface{})
		for _, key := range []string{"id", "name", "url", "doi", "secondary", "alias"} {
			assert.Contains(t, rec, key)
		}
	}
	for _, ct := range doc["claimedtype"].([]interface{}) {
		entry := ct.(map[string]interface{})
		assert.Contains(t, entry, "name")
		assert.Regexp(t, `^\d+(,\d+)*$`, entry["source"])
	}
}

func TestSerialize_SharedRegistryAcrossFamilies(t *testing.T) {
	s := &model.Source{ID: 5, Name: "only"}
	ev := &model.Event{
		Name:         "SN2024shared",
		HostGalaxies: []model.HostGalaxy{{Galaxy: &model.Galaxy{Name: "G1"}, Source: s}},
		ClaimedTypes: []model.ClaimedType{{SubType: &model.SubType{Name: "II"}, Source: s}},
		Attributes:   []model.Attribute{{Name: model.AttrMaxAppMag, Value: 17.2, Unit: "mag", Source: s}},
	}
	doc, err := SerializeDocument(ev)
	require.NoError(t, err)
	assert.Len(t, doc.Sources, 1)
	assert.Equal(t, "2", doc.HostGalaxy[0].Source)
	assert.Equal(t, "2", doc.ClaimedType[0].Source)
	assert.Equal(t, "2", doc.MaxAppMag[0].Source)
}

func TestSerialize_RelationNotLoaded(t *testing.T) {
	ev := &model.Event{
		Name:         "SN2024bad",
		ClaimedTypes: []model.ClaimedType{{SubTypeID: 1, SourceID: 1}},
	}
	_, err := Serialize(ev)
	assert.ErrorIs(t, err, ErrRelationNotLoaded)
}

func TestFamilyOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"hostgalaxy", "claimedtype", "lumdist", "velocity", "redshift", "maxabsmag", "maxappmag"},
		FamilyOrder())
}

func TestToImportDocument_FansBackOut(t *testing.T) {
	doc, err := SerializeDocument(fixtureEvent())
	require.NoError(t, err)

	imp := ToImportDocument(doc)
	assert.Equal(t, "SN2024test", imp.Name)
	assert.Len(t, imp.Sources, 3)
	assert.Len(t, imp.HostGalaxy, 2)
	assert.Len(t, imp.SubType, 2)
	require.Len(t, imp.Attributes, 3)

	// 属性按固定顺序：lumdist, velocity, redshift
	assert.Equal(t, model.AttrLumDist, imp.Attributes[0].Name)
	assert.Equal(t, model.AttrVelocity, imp.Attributes[1].Name)
	assert.Equal(t, model.AttrRedshift, imp.Attributes[2].Name)
	assert.Equal(t, []string{"2", "4"}, SplitAliases(imp.Attributes[2].Source))
	require.NotNil(t, imp.Attributes[1].Unit)
	assert.Equal(t, "km/s", *imp.Attributes[1].Unit)
}
