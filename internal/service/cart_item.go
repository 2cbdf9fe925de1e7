package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const unknownCategoryName = "Unknown Category"

// Category 分类名，可能是纯字符串也可能是 {id,name} 记录
type Category struct {
	plain    string
	recordID int
	record   bool
}

// PlainCategory 纯字符串分类
func PlainCategory(name string) Category {
	return Category{plain: name}
}

// RecordCategory 结构化分类
func RecordCategory(id int, name string) Category {
	return Category{plain: name, recordID: id, record: true}
}

// IsRecord 是否结构化记录
func (c Category) IsRecord() bool {
	return c.record
}

// RecordID 结构化记录的 ID，纯字符串时为 0
func (c Category) RecordID() int {
	return c.recordID
}

// IsEmpty 没有可展示的名称
func (c Category) IsEmpty() bool {
	return strings.TrimSpace(c.plain) == ""
}

// DisplayName 所有展示位置统一使用
func (c Category) DisplayName() string {
	name := strings.TrimSpace(c.plain)
	if name == "" && c.record {
		return unknownCategoryName
	}
	return name
}

// MarshalJSON 按原始形态写回
func (c Category) MarshalJSON() ([]byte, error) {
	if c.record {
		return json.Marshal(struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}{ID: c.recordID, Name: c.plain})
	}
	return json.Marshal(c.plain)
}

// UnmarshalJSON 接受字符串或对象
func (c *Category) UnmarshalJSON(data []byte) error {
	parsed, err := ParseCategory(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory 解析原始 JSON，null 或空视为空分类
func ParseCategory(data []byte) (Category, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Category{}, nil
	}
	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return Category{}, err
		}
		return PlainCategory(name), nil
	case '{':
		var record struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &record); err != nil {
			return Category{}, err
		}
		return RecordCategory(record.ID, record.Name), nil
	default:
		return Category{}, fmt.Errorf("unsupported category value: %s", string(trimmed))
	}
}

// CartItem 购物车中的一本书
type CartItem struct {
	BookID       int      `json:"bookId"`
	BookName     string   `json:"bookName"`
	CategoryName Category `json:"categoryName"`
	AuthorName   string   `json:"authorName"`
	BookImage    string   `json:"bookImage"`
}

// CartItemInput 加入购物车的参数，空字段视为缺失
type CartItemInput struct {
	BookID       int
	BookName     string
	CategoryName Category
	AuthorName   string
	BookImage    string
}

func (in CartItemInput) complete() bool {
	return strings.TrimSpace(in.BookName) != "" &&
		!in.CategoryName.IsEmpty() &&
		strings.TrimSpace(in.AuthorName) != "" &&
		strings.TrimSpace(in.BookImage) != ""
}

// CheckoutSnapshot 离开购物车页时冻结的选中项
type CheckoutSnapshot struct {
	Items      []CartItem `json:"items"`
	CapturedAt time.Time  `json:"capturedAt"`
}

// LoanDraft 单条借阅请求草稿
type LoanDraft struct {
	BookID int
	Days   int
}
