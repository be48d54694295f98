package repository

import (
	"strings"

	"gorm.io/gorm"
)

// applyReferenceFilter 参考数据通用过滤：启用状态 + 多列模糊搜索
func applyReferenceFilter(query *gorm.DB, filter ReferenceListFilter, searchColumns ...string) *gorm.DB {
	if filter.IsActive != nil {
		query = query.Where("active = ?", *filter.IsActive)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(query, searchColumns...)
		if condition != "" {
			query = query.Where(condition, repeatLikeArgs(containsPattern(search), argCount)...)
		}
	}
	return query
}

// existsByColumn 唯一性检查，excludeID 用于编辑时排除自身
func existsByColumn(db *gorm.DB, model interface{}, column, value string, excludeID uint) (bool, error) {
	query := db.Model(model).Where(column+" = ?", strings.TrimSpace(value))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// setActive 软停用/重新启用
func setActive(db *gorm.DB, model interface{}, id uint, active bool) (bool, error) {
	result := db.Model(model).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
