package model

// 导入数据集文件名（data 目录下）
const (
	SourcesFile   = "sources.json"
	SubTypesFile  = "subtypes.json"
	GalaxiesFile  = "galaxies.json"
	SupernovaFile = "supernova.json"
)

// ReferenceSource sources.json 中的一项
type ReferenceSource struct {
	Name      string  `json:"name"`
	URL       *string `json:"url"`
	Bibcode   *string `json:"bibcode"`
	DOI       *string `json:"doi"`
	Secondary bool    `json:"secondary"`
}

// ReferenceName subtypes.json / galaxies.json 中的一项
type ReferenceName struct {
	Name string `json:"name"`
}

// ImportSource 事件文档内的来源及其别名
type ImportSource struct {
	Name      string  `json:"name"`
	URL       *string `json:"url"`
	Bibcode   *string `json:"bibcode,omitempty"`
	DOI       *string `json:"doi"`
	Secondary bool    `json:"secondary"`
	Alias     string  `json:"alias"`
}

// ImportClaim 宿主星系或分类声明，source 为逗号分隔的别名
type ImportClaim struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// ImportAttribute 属性测量，unit 可能为 null
type ImportAttribute struct {
	Name   AttributeName `json:"name"`
	Value  float64       `json:"value"`
	Unit   *string       `json:"unit"`
	Source string        `json:"source"`
}

// ImportDocument supernova.json 中的单个事件（扁平列表形式）
type ImportDocument struct {
	Name       string            `json:"name"`
	Sources    []ImportSource    `json:"sources"`
	HostGalaxy []ImportClaim     `json:"hostgalaxy"`
	SubType    []ImportClaim     `json:"subtype"`
	Attributes []ImportAttribute `json:"attributes"`
}

// Dataset 一次全量导入的完整输入
type Dataset struct {
	Sources  []ReferenceSource
	SubTypes []ReferenceName
	Galaxies []ReferenceName
	Events   []ImportDocument
}
