package models

import "time"

// ClientState 客户端本地键值存储
// 说明：值为 JSON 文本，cartItems/checkoutItems 为数组，token 为字符串。
type ClientState struct {
	Key       string    `gorm:"column:state_key;primaryKey;type:varchar(64)" json:"key"` // 存储键
	Value     string    `gorm:"type:text;not null" json:"value"`                         // JSON 值
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (ClientState) TableName() string {
	return "client_states"
}
