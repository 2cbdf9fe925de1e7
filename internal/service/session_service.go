package service

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/logger"

	"github.com/go-playground/validator/v10"
)

// AuthGateway 登录/注册接口
type AuthGateway interface {
	Login(ctx context.Context, req apiclient.LoginRequest) (*apiclient.AuthResponse, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.AuthResponse, error)
}

// LoginInput 登录表单
type LoginInput struct {
	Email    string `json:"email" validate:"required,booky_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput 注册表单
type RegisterInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,booky_email"`
	Handphone       string `json:"handphone" validate:"required,booky_phone"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
	whitespace   = regexp.MustCompile(`\s`)
)

// fieldMessages 字段 + 规则 → 文案
var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "Name is required",
	},
	"email": {
		"required":    "Email is required",
		"booky_email": "Please enter a valid email address",
	},
	"handphone": {
		"required":    "Phone number is required",
		"booky_phone": "Please enter a valid phone number",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
	},
	"confirmPassword": {
		"required": "Please confirm your password",
		"eqfield":  "Passwords do not match",
	},
}

// SessionService 登录、注册、登出
type SessionService struct {
	store    *ClientStore
	gateway  AuthGateway
	validate *validator.Validate
}

// NewSessionService 创建会话服务
func NewSessionService(store *ClientStore, gateway AuthGateway) *SessionService {
	return &SessionService{
		store:    store,
		gateway:  gateway,
		validate: newFormValidator(),
	}
}

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("booky_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("booky_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(whitespace.ReplaceAllString(fl.Field().String(), ""))
	})
	return v
}

// ValidateLogin 校验登录表单
func (s *SessionService) ValidateLogin(input LoginInput) error {
	input.Email = strings.TrimSpace(input.Email)
	return s.check(input)
}

// ValidateRegister 校验注册表单
func (s *SessionService) ValidateRegister(input RegisterInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Handphone = strings.TrimSpace(input.Handphone)
	if strings.TrimSpace(input.Password) == "" {
		input.Password = ""
	}
	if strings.TrimSpace(input.ConfirmPassword) == "" {
		input.ConfirmPassword = ""
	}
	return s.check(input)
}

func (s *SessionService) check(form any) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	fields := FieldErrors{}
	for _, fe := range validationErrs {
		field := fe.Field()
		if _, exists := fields[field]; exists {
			continue
		}
		msg := fieldMessages[field][fe.Tag()]
		if msg == "" {
			msg = field + " is invalid"
		}
		fields[field] = msg
	}
	return fields
}

// Login 校验后登录，成功时保存令牌与用户
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*apiclient.AuthResponse, error) {
	if err := s.ValidateLogin(input); err != nil {
		return nil, err
	}
	resp, err := s.gateway.Login(ctx, apiclient.LoginRequest{
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Success {
		return resp, ErrLoginFailed
	}
	if err := s.persist(resp); err != nil {
		return resp, err
	}
	logger.Infow("session_login_succeeded", "email", strings.TrimSpace(input.Email))
	return resp, nil
}

// Register 校验后注册；返回令牌时直接视为已登录
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (*apiclient.AuthResponse, error) {
	if err := s.ValidateRegister(input); err != nil {
		return nil, err
	}
	resp, err := s.gateway.Register(ctx, apiclient.RegisterRequest{
		Name:            strings.TrimSpace(input.Name),
		Email:           strings.TrimSpace(input.Email),
		Handphone:       whitespace.ReplaceAllString(input.Handphone, ""),
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Success {
		return resp, ErrRegisterFailed
	}
	if err := s.persist(resp); err != nil {
		return resp, err
	}
	logger.Infow("session_register_succeeded", "email", strings.TrimSpace(input.Email))
	return resp, nil
}

// Logout 清除令牌与用户
func (s *SessionService) Logout() error {
	return s.store.ClearSession()
}

// CurrentUser 当前用户，未登录返回 nil
func (s *SessionService) CurrentUser() (*apiclient.UserSummary, error) {
	return s.store.User()
}

func (s *SessionService) persist(resp *apiclient.AuthResponse) error {
	if resp.Data == nil {
		logger.Warnw("session_response_without_data")
		return nil
	}
	if strings.TrimSpace(resp.Data.Token) == "" {
		logger.Warnw("session_response_without_token")
	}
	return s.store.SaveSession(resp.Data.Token, &resp.Data.User)
}
