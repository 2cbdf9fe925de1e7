package models

import "time"

// LoanAudit 借阅提交审计记录
// 说明：BFF 转发借阅请求成功后异步写入，用于排查重复提交与失败。
type LoanAudit struct {
	ID               uint      `gorm:"primarykey" json:"id"`                            // 主键
	RequestID        string    `gorm:"type:varchar(64);index" json:"request_id"`        // 请求追踪ID
	UserID           string    `gorm:"type:varchar(64);index" json:"user_id"`           // 令牌中的用户标识（未校验）
	BookID           string    `gorm:"type:varchar(64);index;not null" json:"book_id"`  // 图书ID
	Days             int       `gorm:"not null" json:"days"`                            // 借阅天数
	UpstreamStatus   int       `gorm:"not null" json:"upstream_status"`                 // 上游响应状态码
	TokenFingerprint string    `gorm:"type:varchar(64);index" json:"token_fingerprint"` // 令牌指纹
	ClientIP         string    `gorm:"type:varchar(64)" json:"client_ip"`               // 客户端IP
	Source           string    `gorm:"type:varchar(32);index" json:"source"`            // 记录来源
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                         // 记录时间
}

// TableName 指定表名
func (LoanAudit) TableName() string {
	return "loan_audits"
}
