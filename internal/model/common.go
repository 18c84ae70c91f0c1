package model

// AttributeName 允许的属性名枚举
type AttributeName string

const (
	AttrLumDist   AttributeName = "lumdist"   // 光度距离
	AttrVelocity  AttributeName = "velocity"  // 退行速度
	AttrRedshift  AttributeName = "redshift"  // 红移
	AttrMaxAbsMag AttributeName = "maxabsmag" // 最大绝对星等
	AttrMaxAppMag AttributeName = "maxappmag" // 最大视星等
)

// AttributeNames 固定顺序，OSC 序列化与导入均按此顺序处理
var AttributeNames = []AttributeName{
	AttrLumDist,
	AttrVelocity,
	AttrRedshift,
	AttrMaxAbsMag,
	AttrMaxAppMag,
}

var attributeLabels = map[AttributeName]string{
	AttrLumDist:   "Luminosity distance",
	AttrVelocity:  "Recessional velocity",
	AttrRedshift:  "Redshift",
	AttrMaxAbsMag: "Max absolute magnitude",
	AttrMaxAppMag: "Max apparent magnitude",
}

// Valid 是否为允许的属性名
func (n AttributeName) Valid() bool {
	_, ok := attributeLabels[n]
	return ok
}

// Label 人类可读名称
func (n AttributeName) Label() string {
	return attributeLabels[n]
}
