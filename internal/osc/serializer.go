package osc

import (
	"errors"
	"fmt"

	"SNCatalog/internal/model"
)

// ErrRelationNotLoaded 事件关联数据未预加载（Source/SubType/Galaxy 为空）
var ErrRelationNotLoaded = errors.New("osc: relation not preloaded")

// family 一类声明的合并规则：从事件中筛选、按键合并、写回文档
type family struct {
	name  string
	apply func(ev *model.Event, reg *AliasRegistry, doc *model.OSCDocument)
}

// families 固定的处理顺序。别名编号取决于所有类别合并后的首次出现顺序，顺序不可调整
var families = buildFamilies()

func buildFamilies() []family {
	fs := []family{
		{name: "hostgalaxy", apply: mergeHostGalaxies},
		{name: "claimedtype", apply: mergeClaimedTypes},
	}
	for _, kind := range model.AttributeNames {
		kind := kind
		fs = append(fs, family{
			name: string(kind),
			apply: func(ev *model.Event, reg *AliasRegistry, doc *model.OSCDocument) {
				*doc.AttributeSlot(kind) = mergeAttributes(ev.Attributes, kind, reg)
			},
		})
	}
	return fs
}

// FamilyOrder 序列化时各类别的处理顺序
func FamilyOrder() []string {
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.name)
	}
	return names
}

// Serialize 将一个已预加载关联数据的事件转换为 OSC 文档集合 {"<name>": doc}
func Serialize(ev *model.Event) (model.OSCCatalog, error) {
	doc, err := SerializeDocument(ev)
	if err != nil {
		return nil, err
	}
	return model.OSCCatalog{ev.Name: doc}, nil
}

// SerializeDocument 构建单个事件的 OSC 文档。五类属性与宿主星系、分类共用同一个别名表
func SerializeDocument(ev *model.Event) (*model.OSCDocument, error) {
	if err := checkLoaded(ev); err != nil {
		return nil, err
	}
	reg := NewAliasRegistry()
	doc := &model.OSCDocument{
		Schema:      model.OSCSchemaURL,
		Name:        ev.Name,
		HostGalaxy:  []model.NamedClaim{},
		ClaimedType: []model.NamedClaim{},
	}
	for _, f := range families {
		f.apply(ev, reg, doc)
	}
	doc.Sources = reg.Records()
	return doc, nil
}

func mergeHostGalaxies(ev *model.Event, reg *AliasRegistry, doc *model.OSCDocument) {
	groups := Merge(ev.HostGalaxies, reg,
		func(h model.HostGalaxy) string { return h.Galaxy.Name },
		func(h model.HostGalaxy) *model.Source { return h.Source },
	)
	for _, g := range groups {
		doc.HostGalaxy = append(doc.HostGalaxy, model.NamedClaim{Source: g.Aliases, Name: g.First.Galaxy.Name})
	}
}

func mergeClaimedTypes(ev *model.Event, reg *AliasRegistry, doc *model.OSCDocument) {
	groups := Merge(ev.ClaimedTypes, reg,
		func(c model.ClaimedType) string { return c.SubType.Name },
		func(c model.ClaimedType) *model.Source { return c.Source },
	)
	for _, g := range groups {
		doc.ClaimedType = append(doc.ClaimedType, model.NamedClaim{Source: g.Aliases, Name: g.First.SubType.Name})
	}
}

// mergeAttributes 同一属性内按数值精确相等合并，不做容差
func mergeAttributes(attrs []model.Attribute, kind model.AttributeName, reg *AliasRegistry) []model.AttributeEntry {
	matched := make([]model.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if a.Name == kind {
			matched = append(matched, a)
		}
	}
	groups := Merge(matched, reg,
		func(a model.Attribute) float64 { return a.Value },
		func(a model.Attribute) *model.Source { return a.Source },
	)
	out := make([]model.AttributeEntry, 0, len(groups))
	for _, g := range groups {
		out = append(out, model.AttributeEntry{
			Source: g.Aliases,
			Name:   kind,
			Value:  g.First.Value,
			Unit:   g.First.Unit,
		})
	}
	return out
}

func checkLoaded(ev *model.Event) error {
	for i, h := range ev.HostGalaxies {
		if h.Galaxy == nil || h.Source == nil {
			return fmt.Errorf("%w: host_galaxies[%d] of %s", ErrRelationNotLoaded, i, ev.Name)
		}
	}
	for i, c := range ev.ClaimedTypes {
		if c.SubType == nil || c.Source == nil {
			return fmt.Errorf("%w: claimed_types[%d] of %s", ErrRelationNotLoaded, i, ev.Name)
		}
	}
	for i, a := range ev.Attributes {
		if a.Source == nil {
			return fmt.Errorf("%w: attributes[%d] of %s", ErrRelationNotLoaded, i, ev.Name)
		}
	}
	return nil
}
