package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 按主键查询的记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrEventNotFound 按名称查询的事件不存在
	ErrEventNotFound = errors.New("event not found")
	// ErrProtected 参考数据仍被声明或属性引用，禁止删除
	ErrProtected = errors.New("记录仍被引用，禁止删除")
	// ErrDuplicate 违反唯一约束（重复的 bibcode/doi、事件名或声明三元组）
	ErrDuplicate = errors.New("记录已存在")
)

// EventNotFoundError 携带查询名称的事件不存在错误，errors.Is(err, ErrEventNotFound) 为真
type EventNotFoundError struct {
	Name string
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("Event with name %q not found.", e.Name)
}

func (e *EventNotFoundError) Is(target error) bool {
	return target == ErrEventNotFound
}

// isUniqueViolation 兼容 PostgreSQL (23505) 与 SQLite 的唯一约束错误
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// wrapWrite 唯一约束错误包装为 ErrDuplicate，其余原样包装
func wrapWrite(action string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s失败: %w: %v", action, ErrDuplicate, err)
	}
	return fmt.Errorf("%s失败: %w", action, err)
}
