package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"SNCatalog/internal/interfaces"
	"SNCatalog/internal/metrics"
	"SNCatalog/internal/model"
	"SNCatalog/internal/osc"
	"SNCatalog/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// DefaultBatchSize 批量插入默认批大小
const DefaultBatchSize = 500

// Importer 全量导入：Clear 清空，Load 写入参考数据与事件文档。
// 不做幂等处理，重复导入会触发唯一约束错误；调用方需先 Clear
type Importer struct {
	store     interfaces.ImportStore
	runs      repository.ImportRunRepository
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	batchSize int
}

// NewImporter 创建 Importer；runs 与 m 可为 nil（不记录审计与指标）
func NewImporter(store interfaces.ImportStore, runs repository.ImportRunRepository, m *metrics.Metrics, logger *logrus.Logger, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{
		store:     store,
		runs:      runs,
		metrics:   m,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Clear 清空全部目录数据
func (im *Importer) Clear(ctx context.Context) error {
	if err := im.store.Clear(ctx); err != nil {
		return fmt.Errorf("清空目录数据失败: %w", err)
	}
	im.logger.Info("目录数据已清空")
	return nil
}

// Load 依次写入星系、分类、来源，再逐个导入事件文档
func (im *Importer) Load(ctx context.Context, ds *model.Dataset) (*model.ImportStats, error) {
	stats := &model.ImportStats{}
	if err := im.loadReferences(ctx, ds, stats); err != nil {
		return stats, err
	}
	if err := im.loadDocuments(ctx, ds.Events, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// FromOSC 导入导出的 OSC 文档（参考数据须已存在），按事件名顺序处理
func (im *Importer) FromOSC(ctx context.Context, catalog model.OSCCatalog) (*model.ImportStats, error) {
	stats := &model.ImportStats{}
	err := im.loadDocuments(ctx, osc.CatalogToImportDocuments(catalog), stats)
	return stats, err
}

// Run 从目录读取数据集，清空后全量导入，并写入一条 ImportRun 审计记录
func (im *Importer) Run(ctx context.Context, dataDir string) (*model.ImportRun, error) {
	return im.record(ctx, dataDir, model.ImportFormatDataset, func() (*model.ImportStats, error) {
		return im.runOnce(ctx, dataDir)
	})
}

// RunOSC 导入 oscDir 下导出的 <name>.json 文件，不清空目录数据。
// 参考数据须已存在，同名事件已存在时失败
func (im *Importer) RunOSC(ctx context.Context, oscDir string) (*model.ImportRun, error) {
	return im.record(ctx, oscDir, model.ImportFormatOSC, func() (*model.ImportStats, error) {
		catalog, err := ReadOSCDir(oscDir)
		if err != nil {
			return nil, err
		}
		return im.FromOSC(ctx, catalog)
	})
}

// record 执行一次导入并记录审计与指标
func (im *Importer) record(ctx context.Context, dir, format string, do func() (*model.ImportStats, error)) (*model.ImportRun, error) {
	runID := uuid.NewString()
	log := im.logger.WithFields(logrus.Fields{"run_id": runID, "data_dir": dir, "format": format})
	started := time.Now()

	run := &model.ImportRun{
		RunUUID:   runID,
		DataDir:   dir,
		Format:    format,
		Status:    model.ImportStatusRunning,
		StartedAt: started,
	}
	if im.runs != nil {
		if err := im.runs.Create(ctx, run); err != nil {
			return nil, fmt.Errorf("创建导入记录失败: %w", err)
		}
	}

	log.Info("开始导入")
	stats, err := do()
	if stats == nil {
		stats = &model.ImportStats{}
	}

	status := model.ImportStatusSuccess
	var errMsg *string
	if err != nil {
		status = model.ImportStatusFailed
		msg := err.Error()
		errMsg = &msg
		log.WithError(err).Error("导入失败")
	} else {
		log.WithFields(logrus.Fields{
			"events":     stats.Events,
			"attributes": stats.Attributes,
			"elapsed":    time.Since(started).String(),
		}).Info("导入完成")
	}

	im.metrics.ObserveImport(status, time.Since(started).Seconds(), map[string]int{
		"sources":       stats.Sources,
		"subtypes":      stats.SubTypes,
		"galaxies":      stats.Galaxies,
		"events":        stats.Events,
		"attributes":    stats.Attributes,
		"host_galaxies": stats.HostGalaxies,
		"claimed_types": stats.ClaimedTypes,
	})

	now := time.Now()
	run.Status = status
	run.Stats = auditJSON(stats, log)
	run.Error = errMsg
	run.FinishedAt = &now
	if im.runs != nil {
		// 导入失败时也要落审计记录，不使用可能已取消的 ctx
		if e := im.runs.Finish(context.WithoutCancel(ctx), runID, status, run.Stats, errMsg); e != nil {
			log.WithError(e).Warn("更新导入记录失败")
		}
	}
	return run, err
}

// auditJSON 序列化失败时记录告警并写入空对象，审计记录仍可落库
func auditJSON(v interface{}, log *logrus.Entry) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Warn("序列化导入统计失败")
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func (im *Importer) runOnce(ctx context.Context, dataDir string) (*model.ImportStats, error) {
	ds, err := ReadDataset(dataDir)
	if err != nil {
		return nil, err
	}
	if err := im.Clear(ctx); err != nil {
		return nil, err
	}
	return im.Load(ctx, ds)
}

func (im *Importer) loadReferences(ctx context.Context, ds *model.Dataset, stats *model.ImportStats) error {
	galaxies := make([]*model.Galaxy, 0, len(ds.Galaxies))
	for _, g := range ds.Galaxies {
		galaxies = append(galaxies, &model.Galaxy{Name: g.Name})
	}
	if err := im.store.CreateGalaxies(ctx, galaxies, im.batchSize); err != nil {
		return err
	}
	stats.Galaxies = len(galaxies)

	subTypes := make([]*model.SubType, 0, len(ds.SubTypes))
	for _, s := range ds.SubTypes {
		subTypes = append(subTypes, &model.SubType{Name: s.Name})
	}
	if err := im.store.CreateSubTypes(ctx, subTypes, im.batchSize); err != nil {
		return err
	}
	stats.SubTypes = len(subTypes)

	sources := make([]*model.Source, 0, len(ds.Sources))
	for _, s := range ds.Sources {
		sources = append(sources, &model.Source{
			Name:      s.Name,
			URL:       s.URL,
			Bibcode:   s.Bibcode,
			DOI:       s.DOI,
			Secondary: s.Secondary,
		})
	}
	if err := im.store.CreateSources(ctx, sources, im.batchSize); err != nil {
		return err
	}
	stats.Sources = len(sources)

	im.logger.WithFields(logrus.Fields{
		"galaxies": stats.Galaxies,
		"subtypes": stats.SubTypes,
		"sources":  stats.Sources,
	}).Info("参考数据导入完成")
	return nil
}

func (im *Importer) loadDocuments(ctx context.Context, docs []model.ImportDocument, stats *model.ImportStats) error {
	lookup := newReferenceCache(im.store)
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := im.loadDocument(ctx, &docs[i], lookup, stats); err != nil {
			return fmt.Errorf("导入事件 %s 失败: %w", docs[i].Name, err)
		}
	}
	return nil
}

// loadDocument 单个事件：解析别名，创建事件，把逗号拼接的别名展开为每来源一行，按族批量写入
func (im *Importer) loadDocument(ctx context.Context, doc *model.ImportDocument, lookup *referenceCache, stats *model.ImportStats) error {
	aliases := make(map[string]uint64, len(doc.Sources))
	for _, s := range doc.Sources {
		src, err := im.store.FindSource(ctx, s.Name, s.URL)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: source name=%q url=%s", ErrLookup, s.Name, derefOr(s.URL, "null"))
		}
		if err != nil {
			return err
		}
		aliases[s.Alias] = src.ID
	}
	resolve := func(alias string) (uint64, error) {
		id, ok := aliases[alias]
		if !ok {
			return 0, fmt.Errorf("%w: alias %q 未在 sources 中声明", ErrLookup, alias)
		}
		return id, nil
	}

	event := &model.Event{Name: doc.Name}
	if err := im.store.CreateEvent(ctx, event); err != nil {
		return err
	}

	attrs := []*model.Attribute{}
	for _, a := range doc.Attributes {
		if !a.Name.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidAttribute, a.Name)
		}
		for _, alias := range osc.SplitAliases(a.Source) {
			sourceID, err := resolve(alias)
			if err != nil {
				return err
			}
			attrs = append(attrs, &model.Attribute{
				EventID:  event.ID,
				Name:     a.Name,
				Value:    a.Value,
				Unit:     derefOr(a.Unit, ""),
				SourceID: sourceID,
			})
		}
	}
	if err := im.store.CreateAttributes(ctx, attrs, im.batchSize); err != nil {
		return err
	}

	hosts := []*model.HostGalaxy{}
	for _, h := range doc.HostGalaxy {
		galaxyID, err := lookup.galaxy(ctx, h.Name)
		if err != nil {
			return err
		}
		for _, alias := range osc.SplitAliases(h.Source) {
			sourceID, err := resolve(alias)
			if err != nil {
				return err
			}
			hosts = append(hosts, &model.HostGalaxy{EventID: event.ID, GalaxyID: galaxyID, SourceID: sourceID})
		}
	}
	if err := im.store.CreateHostGalaxies(ctx, hosts, im.batchSize); err != nil {
		return err
	}

	claims := []*model.ClaimedType{}
	for _, c := range doc.SubType {
		subTypeID, err := lookup.subType(ctx, c.Name)
		if err != nil {
			return err
		}
		for _, alias := range osc.SplitAliases(c.Source) {
			sourceID, err := resolve(alias)
			if err != nil {
				return err
			}
			claims = append(claims, &model.ClaimedType{EventID: event.ID, SubTypeID: subTypeID, SourceID: sourceID})
		}
	}
	if err := im.store.CreateClaimedTypes(ctx, claims, im.batchSize); err != nil {
		return err
	}

	stats.Events++
	stats.Attributes += len(attrs)
	stats.HostGalaxies += len(hosts)
	stats.ClaimedTypes += len(claims)
	return nil
}

// referenceCache 单次导入内缓存 星系/分类 名称到 id 的解析结果
type referenceCache struct {
	store    interfaces.ImportStore
	galaxies map[string]uint64
	subTypes map[string]uint64
}

func newReferenceCache(store interfaces.ImportStore) *referenceCache {
	return &referenceCache{
		store:    store,
		galaxies: make(map[string]uint64),
		subTypes: make(map[string]uint64),
	}
}

func (c *referenceCache) galaxy(ctx context.Context, name string) (uint64, error) {
	if id, ok := c.galaxies[name]; ok {
		return id, nil
	}
	g, err := c.store.FindGalaxyByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("%w: galaxy %q", ErrLookup, name)
	}
	if err != nil {
		return 0, err
	}
	c.galaxies[name] = g.ID
	return g.ID, nil
}

func (c *referenceCache) subType(ctx context.Context, name string) (uint64, error) {
	if id, ok := c.subTypes[name]; ok {
		return id, nil
	}
	s, err := c.store.FindSubTypeByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("%w: subtype %q", ErrLookup, name)
	}
	if err != nil {
		return 0, err
	}
	c.subTypes[name] = s.ID
	return s.ID, nil
}

// ReadDataset 读取 dir 下的 sources.json / subtypes.json / galaxies.json / supernova.json
func ReadDataset(dir string) (*model.Dataset, error) {
	ds := &model.Dataset{}
	files := []struct {
		name string
		dest interface{}
	}{
		{model.SourcesFile, &ds.Sources},
		{model.SubTypesFile, &ds.SubTypes},
		{model.GalaxiesFile, &ds.Galaxies},
		{model.SupernovaFile, &ds.Events},
	}
	for _, f := range files {
		if err := readJSONFile(filepath.Join(dir, f.name), f.dest); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// ReadOSCDir 递归读取 dir 下全部 *.json 导出文件（事件名含 / 时导出为子目录）并合并为一个 OSCCatalog；
// 同一事件出现在多个文件中视为错误
func ReadOSCDir(dir string) (model.OSCCatalog, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("读取 OSC 目录 %s 失败: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s 下没有 OSC 文件", ErrInvalidInput, dir)
	}
	sort.Strings(paths)

	catalog := make(model.OSCCatalog)
	for _, path := range paths {
		var file model.OSCCatalog
		if err := readJSONFile(path, &file); err != nil {
			return nil, err
		}
		for name, doc := range file {
			if doc == nil {
				return nil, fmt.Errorf("%w: %s 中事件 %s 为空", ErrInvalidInput, path, name)
			}
			if _, ok := catalog[name]; ok {
				return nil, fmt.Errorf("%w: 事件 %s 在多个文件中出现 (%s)", ErrInvalidInput, name, path)
			}
			catalog[name] = doc
		}
	}
	return catalog, nil
}

func readJSONFile(path string, dest interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
