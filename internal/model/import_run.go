package model

import (
	"time"

	"gorm.io/datatypes"
)

// 导入任务状态
const (
	ImportStatusRunning = "running"
	ImportStatusSuccess = "success"
	ImportStatusFailed  = "failed"
)

// 导入数据格式：dataset 为 sources/subtypes/galaxies/supernova 四个文件，osc 为导出的 <name>.json 目录
const (
	ImportFormatDataset = "dataset"
	ImportFormatOSC     = "osc"
)

// ImportRun 对应 import_runs 表，记录每次导入（全量数据集或 OSC 目录）的执行情况
type ImportRun struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RunUUID    string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null" json:"run_uuid"`
	DataDir    string         `gorm:"column:data_dir;type:varchar(512)" json:"data_dir"`
	Format     string         `gorm:"column:format;type:varchar(16);default:'dataset'" json:"format"`
	Status     string         `gorm:"column:status;type:varchar(16);default:'running'" json:"status"`
	Stats      datatypes.JSON `gorm:"column:stats" json:"stats"` // ImportStats 的 JSON
	Error      *string        `gorm:"column:error;type:text" json:"error"`
	StartedAt  time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt *time.Time     `gorm:"column:finished_at" json:"finished_at"`
}

func (ImportRun) TableName() string { return "import_runs" }

// ImportStats 单次导入的计数
type ImportStats struct {
	Sources      int `json:"sources"`
	SubTypes     int `json:"subtypes"`
	Galaxies     int `json:"galaxies"`
	Events       int `json:"events"`
	Attributes   int `json:"attributes"`
	HostGalaxies int `json:"host_galaxies"`
	ClaimedTypes int `json:"claimed_types"`
}
