package model

// OSCSchemaURL OSC 文档固定的 schema 字段
const OSCSchemaURL = "https://github.com/astrocatalogs/supernovae/blob/d3ef5fc/SCHEMA.md"

// OSCCatalog 以事件名为键的 OSC 文档集合，即 {"<event_name>": {...}}
type OSCCatalog map[string]*OSCDocument

// OSCDocument 单个事件的 OSC 反范式文档（字段顺序与旧版 OSC 输出一致）
type OSCDocument struct {
	Schema      string           `json:"schema"`
	Name        string           `json:"name"`
	Sources     []SourceRecord   `json:"sources"`
	HostGalaxy  []NamedClaim     `json:"hostgalaxy"`
	ClaimedType []NamedClaim     `json:"claimedtype"`
	LumDist     []AttributeEntry `json:"lumdist"`
	Velocity    []AttributeEntry `json:"velocity"`
	Redshift    []AttributeEntry `json:"redshift"`
	MaxAbsMag   []AttributeEntry `json:"maxabsmag"`
	MaxAppMag   []AttributeEntry `json:"maxappmag"`
}

// SourceRecord sources 数组中的一项，alias 在单个文档内唯一
type SourceRecord struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	URL       *string `json:"url"`
	DOI       *string `json:"doi"`
	Secondary bool    `json:"secondary"`
	Alias     string  `json:"alias"`
}

// NamedClaim 合并后的宿主星系 / 分类声明，source 为逗号分隔的别名列表
type NamedClaim struct {
	Source string `json:"source"`
	Name   string `json:"name"`
}

// AttributeEntry 合并后的属性测量
type AttributeEntry struct {
	Source string        `json:"source"`
	Name   AttributeName `json:"name"`
	Value  float64       `json:"value"`
	Unit   string        `json:"unit"`
}

// AttributeSlot 返回指定属性在文档中的数组位置，未知属性返回 nil
func (d *OSCDocument) AttributeSlot(name AttributeName) *[]AttributeEntry {
	switch name {
	case AttrLumDist:
		return &d.LumDist
	case AttrVelocity:
		return &d.Velocity
	case AttrRedshift:
		return &d.Redshift
	case AttrMaxAbsMag:
		return &d.MaxAbsMag
	case AttrMaxAppMag:
		return &d.MaxAppMag
	}
	return nil
}
