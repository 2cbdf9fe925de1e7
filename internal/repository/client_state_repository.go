package repository

import (
	"errors"

	"github.com/booky-next/internal/models"

	"gorm.io/gorm"
)

// ClientStateRepository 客户端本地状态数据访问接口
type ClientStateRepository interface {
	Get(key string) (*models.ClientState, error)
	Upsert(key, value string) error
	Delete(keys ...string) error
}

// GormClientStateRepository GORM 实现
type GormClientStateRepository struct {
	db *gorm.DB
}

// NewClientStateRepository 创建客户端状态仓库
func NewClientStateRepository(db *gorm.DB) *GormClientStateRepository {
	return &GormClientStateRepository{db: db}
}

// Get 按键读取，不存在时返回 nil
func (r *GormClientStateRepository) Get(key string) (*models.ClientState, error) {
	var state models.ClientState
	if err := r.db.Where("state_key = ?", key).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// Upsert 写入或覆盖
func (r *GormClientStateRepository) Upsert(key, value string) error {
	existing, err := r.Get(key)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.Create(&models.ClientState{Key: key, Value: value}).Error
	}
	existing.Value = value
	return r.db.Save(existing).Error
}

// Delete 删除若干键
func (r *GormClientStateRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.Where("state_key IN ?", keys).Delete(&models.ClientState{}).Error
}
