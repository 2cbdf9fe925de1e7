package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Envelope 后端统一响应结构
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Failed 2xx 响应体显式声明失败
func (e *Envelope) Failed() bool {
	return e != nil && e.Success != nil && !*e.Success
}

// FlexibleID 兼容数字与字符串两种写法的标识
type FlexibleID string

// UnmarshalJSON 实现 json.Unmarshaler
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*id = FlexibleID(n.String())
	return nil
}

// Int 转为整数，无法转换时返回 0
func (id FlexibleID) Int() int {
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return 0
	}
	return n
}

// Author 作者
type Author struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Bio        string `json:"bio,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	BooksCount int    `json:"booksCount,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// CategoryRecord 分类
type CategoryRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Book 图书，category 可能是字符串也可能是对象，保留原始 JSON
type Book struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Author      Author          `json:"author"`
	Description string          `json:"description,omitempty"`
	Rating      float64         `json:"rating,omitempty"`
	Image       string          `json:"image,omitempty"`
	CoverImage  string          `json:"coverImage,omitempty"`
	Category    json.RawMessage `json:"category,omitempty"`
	Pages       int             `json:"pages,omitempty"`
	RatingCount int             `json:"ratingCount,omitempty"`
	ReviewCount int             `json:"reviewCount,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}

// ImageURL 封面优先，其次 image
func (b Book) ImageURL() string {
	if b.CoverImage != "" {
		return b.CoverImage
	}
	return b.Image
}

// BookPage 分页图书列表
type BookPage struct {
	Books      []Book `json:"books"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// UserSummary 登录用户摘要
type UserSummary struct {
	ID        FlexibleID `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Handphone string     `json:"handphone,omitempty"`
	Role      string     `json:"role,omitempty"`
}

// Review 图书评论
type Review struct {
	ID        FlexibleID  `json:"id"`
	User      UserSummary `json:"user"`
	Avatar    string      `json:"avatar,omitempty"`
	Rating    float64     `json:"rating"`
	Comment   string      `json:"comment"`
	CreatedAt string      `json:"createdAt,omitempty"`
}

// Loan 借阅记录
type Loan struct {
	ID         int     `json:"id"`
	UserID     int     `json:"userId"`
	BookID     int     `json:"bookId"`
	Status     string  `json:"status"`
	BorrowedAt string  `json:"borrowedAt"`
	DueAt      string  `json:"dueAt"`
	ReturnedAt *string `json:"returnedAt"`
	Book       Book    `json:"book"`
}

// Profile 个人资料
type Profile struct {
	ID        FlexibleID `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Handphone string     `json:"handphone,omitempty"`
	Role      string     `json:"role,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`
}

// PhoneNumber 兼容 phone/handphone
func (p Profile) PhoneNumber() string {
	if p.Phone != "" {
		return p.Phone
	}
	return p.Handphone
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Handphone       string `json:"handphone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthData 登录/注册返回的数据
type AuthData struct {
	Token string      `json:"token,omitempty"`
	User  UserSummary `json:"user"`
}

// AuthResponse 登录/注册响应
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    *AuthData `json:"data,omitempty"`
}

// LoanRequest 借阅请求体
type LoanRequest struct {
	BookID int `json:"bookId"`
	Days   int `json:"days"`
}
