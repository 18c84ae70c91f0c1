package service

import "errors"

var (
	// ErrLookup 导入文档中的别名、来源、星系或分类在库中找不到，整次导入失败
	ErrLookup = errors.New("导入数据引用的记录不存在")
	// ErrInvalidAttribute 属性名不在 lumdist/velocity/redshift/maxabsmag/maxappmag 之内
	ErrInvalidAttribute = errors.New("无效的属性名")
	// ErrInvalidInput 创建请求的参数无效（名称为空、引用的记录不存在等）
	ErrInvalidInput = errors.New("请求参数无效")
	// ErrInvalidPage 页码非法或超出最后一页
	ErrInvalidPage = errors.New("页码超出范围")
)
