package osc

import (
	"testing"

	"SNCatalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAliasRegistry_FirstAliasIsTwo(t *testing.T) {
	reg := NewAliasRegistry()
	s1 := &model.Source{ID: 41, Name: "Source One", URL: strPtr("https://example.com/1")}

	assert.Equal(t, "2", reg.Alias(s1))
	require.Len(t, reg.Records(), 1)

	rec := reg.Records()[0]
	assert.Equal(t, uint64(41), rec.ID)
	assert.Equal(t, "Source One", rec.Name)
	assert.Equal(t, "https://example.com/1", *rec.URL)
	assert.Nil(t, rec.DOI)
	assert.Equal(t, "2", rec.Alias)
}

func TestAliasRegistry_StableWithinCall(t *testing.T) {
	reg := NewAliasRegistry()
	s1 := &model.Source{ID: 1, Name: "a"}
	s2 := &model.Source{ID: 2, Name: "b"}
	s3 := &model.Source{ID: 3, Name: "c"}

	assert.Equal(t, "2", reg.Alias(s2))
	assert.Equal(t, "3", reg.Alias(s1))
	assert.Equal(t, "2", reg.Alias(s2))
	assert.Equal(t, "4", reg.Alias(s3))
	assert.Equal(t, "3", reg.Alias(&model.Source{ID: 1, Name: "a (copy)"}))

	assert.Equal(t, 3, reg.Len())
	aliases := []string{}
	for _, r := range reg.Records() {
		aliases = append(aliases, r.Alias)
	}
	assert.Equal(t, []string{"2", "3", "4"}, aliases)
}

func TestAliasRegistry_ScopedPerInstance(t *testing.T) {
	s := &model.Source{ID: 9, Name: "x"}
	first := NewAliasRegistry()
	first.Alias(&model.Source{ID: 1})
	assert.Equal(t, "3", first.Alias(s))

	second := NewAliasRegistry()
	assert.Equal(t, "2", second.Alias(s))
}
