package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/repository"
)

// ClientStore 客户端持久化键值存储
// 值按原样保存：token 为字符串，user/cartItems/checkoutItems 为 JSON
type ClientStore struct {
	repo repository.ClientStateRepository
}

// NewClientStore 创建客户端存储
func NewClientStore(repo repository.ClientStateRepository) *ClientStore {
	return &ClientStore{repo: repo}
}

// GetString 读取原始值，不存在时 ok 为 false
func (s *ClientStore) GetString(key string) (string, bool, error) {
	if s == nil || s.repo == nil {
		return "", false, ErrStoreUnavailable
	}
	state, err := s.repo.Get(key)
	if err != nil {
		return "", false, err
	}
	if state == nil {
		return "", false, nil
	}
	return state.Value, true, nil
}

// SetString 写入原始值
func (s *ClientStore) SetString(key, value string) error {
	if s == nil || s.repo == nil {
		return ErrStoreUnavailable
	}
	return s.repo.Upsert(key, value)
}

// GetJSON 读取并解码，不存在时 ok 为 false；内容损坏返回 ErrPersistenceRead
func (s *ClientStore) GetJSON(key string, dest any) (bool, error) {
	raw, ok, err := s.GetString(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("%w: key %s: %v", ErrPersistenceRead, key, err)
	}
	return true, nil
}

// SetJSON 编码后写入
func (s *ClientStore) SetJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetString(key, string(raw))
}

// Remove 删除若干键
func (s *ClientStore) Remove(keys ...string) error {
	if s == nil || s.repo == nil {
		return ErrStoreUnavailable
	}
	return s.repo.Delete(keys...)
}

// Token 当前令牌，未登录返回空串
func (s *ClientStore) Token() (string, error) {
	raw, _, err := s.GetString(constants.StoreKeyToken)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// SaveSession 保存令牌与用户摘要，令牌统一为 "Bearer <jwt>"
func (s *ClientStore) SaveSession(token string, user *apiclient.UserSummary) error {
	if normalized := apiclient.NormalizeBearer(token); normalized != "" {
		if err := s.SetString(constants.StoreKeyToken, normalized); err != nil {
			return err
		}
	}
	if user != nil {
		if err := s.SetJSON(constants.StoreKeyUser, user); err != nil {
			return err
		}
	}
	return nil
}

// User 当前用户摘要，未登录或内容损坏时返回 nil
func (s *ClientStore) User() (*apiclient.UserSummary, error) {
	var user apiclient.UserSummary
	ok, err := s.GetJSON(constants.StoreKeyUser, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// ClearSession 清除令牌与用户
func (s *ClientStore) ClearSession() error {
	return s.Remove(constants.StoreKeyToken, constants.StoreKeyUser)
}

// saveCart 写入购物车并同步旧的 cartCount 键
func (s *ClientStore) saveCart(items []CartItem) error {
	if err := s.SetJSON(constants.StoreKeyCartItems, items); err != nil {
		return err
	}
	return s.SetString(constants.StoreKeyCartCount, strconv.Itoa(len(items)))
}

// clearCart 删除购物车键
func (s *ClientStore) clearCart() error {
	return s.Remove(constants.StoreKeyCartItems, constants.StoreKeyCartCount)
}
