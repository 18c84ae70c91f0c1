package model

// Event 超新星事件（聚合根），拥有分类声明、宿主星系声明与属性测量
type Event struct {
	ID           uint64        `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name         string        `gorm:"column:name;type:varchar(125);uniqueIndex;not null;comment:事件编号，如SN2024A001" json:"name"`
	ClaimedTypes []ClaimedType `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	HostGalaxies []HostGalaxy  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Attributes   []Attribute   `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

// Source 文献来源。bibcode/doi 非空时唯一，被任何声明引用时禁止删除
type Source struct {
	ID        uint64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name      string  `gorm:"column:name;type:varchar(256);not null;index;comment:来源名称" json:"name"`
	URL       *string `gorm:"column:url;type:varchar(512);index;comment:来源地址" json:"url"`
	Bibcode   *string `gorm:"column:bibcode;type:varchar(19);uniqueIndex;comment:ADS bibcode" json:"bibcode"`
	DOI       *string `gorm:"column:doi;type:varchar(256);uniqueIndex;comment:DOI" json:"doi"`
	Secondary bool    `gorm:"column:secondary;default:false;comment:是否二手来源" json:"secondary"`
}

// SubType 超新星分类标签（如 Ia）
type SubType struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name string `gorm:"column:name;type:varchar(126);not null;index;comment:分类名称" json:"name"`
}

// Galaxy 宿主星系
type Galaxy struct {
	ID      uint64   `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name    string   `gorm:"column:name;type:varchar(256);not null;index;comment:星系名称" json:"name"`
	HostRA  *string  `gorm:"column:hostra;type:varchar(16);comment:赤经 hh:mm:ss" json:"hostra"`
	HostDec *float64 `gorm:"column:hostdec;comment:赤纬（度）" json:"hostdec"`
}

// ClaimedType 单一来源对事件分类的声明
type ClaimedType struct {
	ID        uint64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventID   uint64   `gorm:"column:event_id;not null;uniqueIndex:uq_claimed_type,priority:1" json:"event_id"`
	SubTypeID uint64   `gorm:"column:sub_type_id;not null;uniqueIndex:uq_claimed_type,priority:2" json:"sub_type_id"`
	SourceID  uint64   `gorm:"column:source_id;not null;uniqueIndex:uq_claimed_type,priority:3" json:"source_id"`
	SubType   *SubType `gorm:"foreignKey:SubTypeID;constraint:OnDelete:RESTRICT" json:"sub_type,omitempty"`
	Source    *Source  `gorm:"foreignKey:SourceID;constraint:OnDelete:RESTRICT" json:"source,omitempty"`
}

// HostGalaxy 单一来源对事件宿主星系的声明
type HostGalaxy struct {
	ID       uint64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventID  uint64  `gorm:"column:event_id;not null;uniqueIndex:uq_host_galaxy,priority:1" json:"event_id"`
	GalaxyID uint64  `gorm:"column:galaxy_id;not null;uniqueIndex:uq_host_galaxy,priority:2" json:"galaxy_id"`
	SourceID uint64  `gorm:"column:source_id;not null;uniqueIndex:uq_host_galaxy,priority:3" json:"source_id"`
	Galaxy   *Galaxy `gorm:"foreignKey:GalaxyID;constraint:OnDelete:RESTRICT" json:"galaxy,omitempty"`
	Source   *Source `gorm:"foreignKey:SourceID;constraint:OnDelete:RESTRICT" json:"source,omitempty"`
}

// Attribute 单一来源给出的数值属性，同一事件同一属性可有多条不同来源的记录
type Attribute struct {
	ID       uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventID  uint64        `gorm:"column:event_id;not null;index:idx_attribute_event_name,priority:1" json:"event_id"`
	Name     AttributeName `gorm:"column:name;type:varchar(32);not null;index:idx_attribute_event_name,priority:2" json:"name"`
	SourceID uint64        `gorm:"column:source_id;not null" json:"source_id"`
	Value    float64       `gorm:"column:value;not null" json:"value"`
	Unit     string        `gorm:"column:unit;type:varchar(32);not null;default:''" json:"unit"`
	Source   *Source       `gorm:"foreignKey:SourceID;constraint:OnDelete:RESTRICT" json:"source,omitempty"`
}

func (Event) TableName() string       { return "events" }
func (Source) TableName() string      { return "sources" }
func (SubType) TableName() string     { return "subtypes" }
func (Galaxy) TableName() string      { return "galaxies" }
func (ClaimedType) TableName() string { return "claimed_types" }
func (HostGalaxy) TableName() string  { return "host_galaxies" }
func (Attribute) TableName() string   { return "attributes" }

// AllTables 按依赖顺序返回需要迁移的表
func AllTables() []interface{} {
	return []interface{}{
		&Source{},
		&SubType{},
		&Galaxy{},
		&Event{},
		&ClaimedType{},
		&HostGalaxy{},
		&Attribute{},
		&ImportRun{},
	}
}
