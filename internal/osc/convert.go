package osc

import (
	"sort"

	"SNCatalog/internal/model"
)

// ToImportDocument 将导出的 OSC 文档还原为导入格式：
// claimedtype 对应 subtype，五类属性拼接为 attributes（按固定属性顺序）
func ToImportDocument(doc *model.OSCDocument) model.ImportDocument {
	out := model.ImportDocument{
		Name:       doc.Name,
		Sources:    make([]model.ImportSource, 0, len(doc.Sources)),
		HostGalaxy: make([]model.ImportClaim, 0, len(doc.HostGalaxy)),
		SubType:    make([]model.ImportClaim, 0, len(doc.ClaimedType)),
		Attributes: []model.ImportAttribute{},
	}
	for _, s := range doc.Sources {
		out.Sources = append(out.Sources, model.ImportSource{
			Name:      s.Name,
			URL:       s.URL,
			DOI:       s.DOI,
			Secondary: s.Secondary,
			Alias:     s.Alias,
		})
	}
	for _, h := range doc.HostGalaxy {
		out.HostGalaxy = append(out.HostGalaxy, model.ImportClaim{Name: h.Name, Source: h.Source})
	}
	for _, c := range doc.ClaimedType {
		out.SubType = append(out.SubType, model.ImportClaim{Name: c.Name, Source: c.Source})
	}
	for _, kind := range model.AttributeNames {
		for _, a := range *doc.AttributeSlot(kind) {
			unit := a.Unit
			out.Attributes = append(out.Attributes, model.ImportAttribute{
				Name:   kind,
				Value:  a.Value,
				Unit:   &unit,
				Source: a.Source,
			})
		}
	}
	return out
}

// CatalogToImportDocuments 按事件名排序后逐个转换
func CatalogToImportDocuments(catalog model.OSCCatalog) []model.ImportDocument {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	docs := make([]model.ImportDocument, 0, len(names))
	for _, name := range names {
		doc := ToImportDocument(catalog[name])
		doc.Name = name
		docs = append(docs, doc)
	}
	return docs
}
