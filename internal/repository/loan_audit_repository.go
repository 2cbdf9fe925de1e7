package repository

import (
	"time"

	"github.com/booky-next/internal/models"

	"gorm.io/gorm"
)

// LoanAuditListFilter 借阅审计查询条件
type LoanAuditListFilter struct {
	Page        int
	PageSize    int
	UserID      string
	BookID      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LoanAuditRepository 借阅审计数据访问接口
type LoanAuditRepository interface {
	Create(audit *models.LoanAudit) error
	List(filter LoanAuditListFilter) ([]models.LoanAudit, int64, error)
	DeleteBefore(cutoff time.Time) (int64, error)
}

// GormLoanAuditRepository GORM 实现
type GormLoanAuditRepository struct {
	db *gorm.DB
}

// NewLoanAuditRepository 创建借阅审计仓库
func NewLoanAuditRepository(db *gorm.DB) *GormLoanAuditRepository {
	return &GormLoanAuditRepository{db: db}
}

// Create 写入审计记录
func (r *GormLoanAuditRepository) Create(audit *models.LoanAudit) error {
	if audit == nil {
		return nil
	}
	return r.db.Create(audit).Error
}

// List 分页查询审计记录
func (r *GormLoanAuditRepository) List(filter LoanAuditListFilter) ([]models.LoanAudit, int64, error) {
	query := r.db.Model(&models.LoanAudit{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.BookID != "" {
		query = query.Where("book_id = ?", filter.BookID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var audits []models.LoanAudit
	if err := query.Order("id desc").Find(&audits).Error; err != nil {
		return nil, 0, err
	}
	return audits, total, nil
}

// DeleteBefore 删除早于 cutoff 的审计记录
func (r *GormLoanAuditRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&models.LoanAudit{})
	return result.RowsAffected, result.Error
}
