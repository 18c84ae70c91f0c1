package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawOSCFile 原始 OSC 仓库中的单个事件文件：{"<event_name>": {...}}
type RawOSCFile map[string]*RawOSCEvent

// RawOSCEvent 原始 OSC 事件（只解析导入需要的字段）
type RawOSCEvent struct {
	Sources     []RawOSCSource   `json:"sources"`
	Host        []RawOSCQuantity `json:"host"`
	ClaimedType []RawOSCQuantity `json:"claimedtype"`
	LumDist     []RawOSCQuantity `json:"lumdist"`
	Velocity    []RawOSCQuantity `json:"velocity"`
	Redshift    []RawOSCQuantity `json:"redshift"`
	MaxAbsMag   []RawOSCQuantity `json:"maxabsmag"`
	MaxAppMag   []RawOSCQuantity `json:"maxappmag"`
}

// RawOSCSource 原始来源
type RawOSCSource struct {
	Name      string  `json:"name"`
	URL       *string `json:"url"`
	Bibcode   *string `json:"bibcode"`
	DOI       *string `json:"doi"`
	Secondary bool    `json:"secondary"`
	Alias     string  `json:"alias"`
}

// RawOSCQuantity 原始数量，value 可能是字符串也可能是数字
type RawOSCQuantity struct {
	Value  json.RawMessage `json:"value"`
	UValue *string         `json:"u_value"`
	Source string          `json:"source"`
}

// Quantities 按属性名取原始数组
func (e *RawOSCEvent) Quantities(name AttributeName) []RawOSCQuantity {
	switch name {
	case AttrLumDist:
		return e.LumDist
	case AttrVelocity:
		return e.Velocity
	case AttrRedshift:
		return e.Redshift
	case AttrMaxAbsMag:
		return e.MaxAbsMag
	case AttrMaxAppMag:
		return e.MaxAppMag
	}
	return nil
}

// Text value 的字符串形式，null 或缺失时返回空串
func (q RawOSCQuantity) Text() string {
	if len(q.Value) == 0 || string(q.Value) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(q.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(q.Value))
}

// Float 将 value 解析为浮点数
func (q RawOSCQuantity) Float() (float64, error) {
	text := q.Text()
	if text == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(text, 64)
}

// Key 来源去重键：bibcode 优先，其次 doi，最后 url
func (s RawOSCSource) Key() string {
	for _, v := range []*string{s.Bibcode, s.DOI, s.URL} {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
