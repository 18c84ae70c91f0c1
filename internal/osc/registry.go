// Package osc 实现关系数据与旧版 OSC（Open Supernova Catalog）JSON 之间的转换：
// 来源别名分配、同值声明合并以及单事件文档的序列化。
package osc

import (
	"strconv"

	"SNCatalog/internal/model"
)

// aliasOffset 第一个来源的别名为 "2"（OSC 约定，"1" 保留不用）
const aliasOffset = 2

// AliasRegistry 单次序列化内的来源别名表，按首次出现顺序分配别名。
// 每个事件一个实例，不可跨事件复用。
type AliasRegistry struct {
	records []model.SourceRecord
	index   map[uint64]int
}

// NewAliasRegistry 创建空的别名表
func NewAliasRegistry() *AliasRegistry {
	return &AliasRegistry{
		records: []model.SourceRecord{},
		index:   make(map[uint64]int),
	}
}

// Alias 返回来源的别名；首次出现时追加记录并分配新别名
func (r *AliasRegistry) Alias(src *model.Source) string {
	if i, ok := r.index[src.ID]; ok {
		return r.records[i].Alias
	}
	alias := strconv.Itoa(len(r.records) + aliasOffset)
	r.index[src.ID] = len(r.records)
	r.records = append(r.records, model.SourceRecord{
		ID:        src.ID,
		Name:      src.Name,
		URL:       src.URL,
		DOI:       src.DOI,
		Secondary: src.Secondary,
		Alias:     alias,
	})
	return alias
}

// Records 已分配别名的来源，按分配顺序
func (r *AliasRegistry) Records() []model.SourceRecord {
	return r.records
}

// Len 已分配别名的来源数量
func (r *AliasRegistry) Len() int {
	return len(r.records)
}
