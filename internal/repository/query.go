package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// applyPagination 应用分页参数，pageSize <= 0 表示不分页（导出场景）。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// countAndPage 统计总数后应用分页，返回分页后的查询。
func countAndPage(query *gorm.DB, page, pageSize int) (*gorm.DB, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return applyPagination(query, page, pageSize), total, nil
}

// firstOrNil 查询单条记录，不存在时返回 nil, nil
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	item := new(T)
	if err := query.First(item, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

// listNewestFirst 统计总数并按 id 倒序分页读取
func listNewestFirst[T any](query *gorm.DB, page, pageSize int) ([]T, int64, error) {
	query, total, err := countAndPage(query, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]T, 0)
	if err := query.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// whereEq skip 为真时不追加条件
func whereEq(column string, value interface{}, skip bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skip {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

func createdBetween(from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("created_at >= ?", *from)
		}
		if to != nil {
			db = db.Where("created_at <= ?", *to)
		}
		return db
	}
}
