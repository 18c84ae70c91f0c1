package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"SNCatalog/internal/model"

	"github.com/sirupsen/logrus"
)

// DefaultMaxRecords 抽取时的全局记录预算
const DefaultMaxRecords = 10000

// ErrRecordBudget 抽取的记录数超出预算；已处理部分仍会写出
var ErrRecordBudget = errors.New("超出抽取记录预算")

// Extractor 把原始 OSC 事件文件（每个文件一个事件）整理成导入数据集
type Extractor struct {
	logger     *logrus.Logger
	maxRecords int
}

// NewExtractor 创建 Extractor，maxRecords<=0 时使用默认预算
func NewExtractor(logger *logrus.Logger, maxRecords int) *Extractor {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Extractor{logger: logger, maxRecords: maxRecords}
}

// ExtractSummary 抽取结果计数
type ExtractSummary struct {
	Records   int
	Events    int
	Sources   int
	Galaxies  int
	SubTypes  int
	Truncated bool
}

type extractState struct {
	budget   int
	total    int
	events   []model.ImportDocument
	sources  []model.ReferenceSource
	galaxies []model.ReferenceName
	subTypes []model.ReferenceName
	seenSrc  map[string]struct{}
	seenHost map[string]struct{}
	seenType map[string]struct{}
}

func (st *extractState) bump(n int) error {
	st.total += n
	if st.total > st.budget {
		return fmt.Errorf("%w: %d > %d", ErrRecordBudget, st.total, st.budget)
	}
	return nil
}

// Extract 读取 inDir 下全部 .json（按文件名排序），写出四个数据集文件到 outDir。
// 出错时仍写出已处理的部分
func (x *Extractor) Extract(ctx context.Context, inDir, outDir string) (*ExtractSummary, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("读取目录 %s 失败: %w", inDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	st := &extractState{
		budget:   x.maxRecords,
		events:   []model.ImportDocument{},
		sources:  []model.ReferenceSource{},
		galaxies: []model.ReferenceName{},
		subTypes: []model.ReferenceName{},
		seenSrc:  make(map[string]struct{}),
		seenHost: make(map[string]struct{}),
		seenType: make(map[string]struct{}),
	}

	var runErr error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := x.extractFile(filepath.Join(inDir, name), st); err != nil {
			runErr = err
			break
		}
	}

	if err := writeDataset(outDir, st); err != nil {
		return nil, errors.Join(runErr, err)
	}

	summary := &ExtractSummary{
		Records:   st.total,
		Events:    len(st.events),
		Sources:   len(st.sources),
		Galaxies:  len(st.galaxies),
		SubTypes:  len(st.subTypes),
		Truncated: errors.Is(runErr, ErrRecordBudget),
	}
	x.logger.WithFields(logrus.Fields{
		"records":  summary.Records,
		"events":   summary.Events,
		"sources":  summary.Sources,
		"galaxies": summary.Galaxies,
		"subtypes": summary.SubTypes,
	}).Info("原始数据抽取完成")
	return summary, runErr
}

// firstRawEvent 按文件顺序解码第一个顶层键对应的事件，并返回顶层键总数
func firstRawEvent(raw []byte) (string, *model.RawOSCEvent, int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return "", nil, 0, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", nil, 0, fmt.Errorf("顶层不是 JSON 对象")
	}
	var (
		name  string
		first *model.RawOSCEvent
		keys  int
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", nil, 0, err
		}
		key, _ := tok.(string)
		if keys == 0 {
			name = key
			if err := dec.Decode(&first); err != nil {
				return "", nil, 0, err
			}
		} else {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return "", nil, 0, err
			}
		}
		keys++
	}
	if _, err := dec.Token(); err != nil {
		return "", nil, 0, err
	}
	return name, first, keys, nil
}

func (x *Extractor) extractFile(path string, st *extractState) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	name, sn, keys, err := firstRawEvent(raw)
	if err != nil {
		return fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	if keys == 0 {
		x.logger.WithField("file", path).Warn("空事件文件，跳过")
		return nil
	}
	// 每个文件只应有一个事件，多余的键按文件顺序忽略
	if keys > 1 {
		x.logger.WithFields(logrus.Fields{"file": path, "event": name, "keys": keys}).Warn("事件文件包含多个顶层键，只取第一个")
	}
	if sn == nil {
		sn = &model.RawOSCEvent{}
	}

	if err := st.bump(1); err != nil {
		return err
	}

	if err := st.bump(len(sn.Sources)); err != nil {
		return err
	}
	for _, s := range sn.Sources {
		key := s.Key()
		if key == "" {
			continue
		}
		if _, ok := st.seenSrc[key]; ok {
			continue
		}
		st.seenSrc[key] = struct{}{}
		st.sources = append(st.sources, model.ReferenceSource{
			Name:      s.Name,
			URL:       s.URL,
			Bibcode:   s.Bibcode,
			DOI:       s.DOI,
			Secondary: s.Secondary,
		})
		if err := st.bump(1); err != nil {
			return err
		}
	}

	if err := st.bump(len(sn.ClaimedType)); err != nil {
		return err
	}
	for _, t := range sn.ClaimedType {
		if err := addUniqueName(t.Text(), st.seenType, &st.subTypes, st); err != nil {
			return err
		}
	}

	if err := st.bump(len(sn.Host)); err != nil {
		return err
	}
	for _, h := range sn.Host {
		if err := addUniqueName(h.Text(), st.seenHost, &st.galaxies, st); err != nil {
			return err
		}
	}

	nonEmpty := 0
	for _, kind := range model.AttributeNames {
		if len(sn.Quantities(kind)) > 0 {
			nonEmpty++
		}
	}
	if err := st.bump(nonEmpty); err != nil {
		return err
	}

	st.events = append(st.events, buildImportDocument(name, sn))
	return nil
}

func addUniqueName(name string, seen map[string]struct{}, out *[]model.ReferenceName, st *extractState) error {
	if name == "" {
		return nil
	}
	if _, ok := seen[name]; ok {
		return nil
	}
	seen[name] = struct{}{}
	*out = append(*out, model.ReferenceName{Name: name})
	return st.bump(1)
}

// buildImportDocument 每类属性只取第一条，数值无法解析时丢弃
func buildImportDocument(name string, sn *model.RawOSCEvent) model.ImportDocument {
	doc := model.ImportDocument{
		Name:       name,
		Sources:    make([]model.ImportSource, 0, len(sn.Sources)),
		HostGalaxy: make([]model.ImportClaim, 0, len(sn.Host)),
		SubType:    make([]model.ImportClaim, 0, len(sn.ClaimedType)),
		Attributes: []model.ImportAttribute{},
	}
	for _, s := range sn.Sources {
		doc.Sources = append(doc.Sources, model.ImportSource{
			Name:      s.Name,
			URL:       s.URL,
			Bibcode:   s.Bibcode,
			DOI:       s.DOI,
			Secondary: s.Secondary,
			Alias:     s.Alias,
		})
	}
	for _, h := range sn.Host {
		doc.HostGalaxy = append(doc.HostGalaxy, model.ImportClaim{Name: h.Text(), Source: h.Source})
	}
	for _, t := range sn.ClaimedType {
		doc.SubType = append(doc.SubType, model.ImportClaim{Name: t.Text(), Source: t.Source})
	}
	for _, kind := range model.AttributeNames {
		quantities := sn.Quantities(kind)
		if len(quantities) == 0 {
			continue
		}
		first := quantities[0]
		value, err := first.Float()
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		doc.Attributes = append(doc.Attributes, model.ImportAttribute{
			Name:   kind,
			Value:  value,
			Unit:   first.UValue,
			Source: first.Source,
		})
	}
	return doc
}

func writeDataset(dir string, st *extractState) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	files := []struct {
		name string
		data interface{}
	}{
		{model.SupernovaFile, st.events},
		{model.SourcesFile, st.sources},
		{model.GalaxiesFile, st.galaxies},
		{model.SubTypesFile, st.subTypes},
	}
	for _, f := range files {
		raw, err := json.MarshalIndent(f.data, "", "  ")
		if err != nil {
			return fmt.Errorf("序列化 %s 失败: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), raw, 0o644); err != nil {
			return fmt.Errorf("写入 %s 失败: %w", f.name, err)
		}
	}
	return nil
}
