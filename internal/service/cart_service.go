package service

import (
	"errors"

	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/logger"
)

// CartService 购物车管理，持有内存列表并同步写回本地存储
// 单个命令内使用，不做加锁
type CartService struct {
	store       *ClientStore
	items       []CartItem
	loaded      bool
	subscribers map[int]func(ids []int)
	nextSubID   int
}

// NewCartService 创建购物车服务
func NewCartService(store *ClientStore) *CartService {
	return &CartService{
		store:       store,
		subscribers: make(map[int]func(ids []int)),
	}
}

// Load 读取持久化的购物车；缺失或损坏时置空，只记录日志
func (s *CartService) Load() []CartItem {
	var items []CartItem
	ok, err := s.store.GetJSON(constants.StoreKeyCartItems, &items)
	switch {
	case err != nil && errors.Is(err, ErrPersistenceRead):
		logger.Warnw("cart_load_corrupt", "error", err)
		items = nil
	case err != nil:
		logger.Warnw("cart_load_failed", "error", err)
		items = nil
	case !ok:
		items = nil
	}
	s.items = dedupeCartItems(items)
	s.loaded = true
	s.notify()
	return s.Items()
}

// Add 加入购物车；已存在或字段不全时静默忽略，返回是否新增
func (s *CartService) Add(input CartItemInput) (bool, error) {
	s.ensureLoaded()
	if s.indexOf(input.BookID) >= 0 {
		return false, nil
	}
	if !input.complete() {
		logger.Debugw("cart_add_incomplete_ignored", "book_id", input.BookID)
		return false, nil
	}
	next := append(s.Items(), CartItem{
		BookID:       input.BookID,
		BookName:     input.BookName,
		CategoryName: input.CategoryName,
		AuthorName:   input.AuthorName,
		BookImage:    input.BookImage,
	})
	if err := s.store.saveCart(next); err != nil {
		return false, err
	}
	s.items = next
	s.notify()
	return true, nil
}

// Count 不同图书数量
func (s *CartService) Count() int {
	s.ensureLoaded()
	return len(s.items)
}

// Items 按加入顺序返回副本
func (s *CartService) Items() []CartItem {
	s.ensureLoaded()
	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// IDs 按加入顺序返回图书ID
func (s *CartService) IDs() []int {
	s.ensureLoaded()
	ids := make([]int, 0, len(s.items))
	for _, item := range s.items {
		ids = append(ids, item.BookID)
	}
	return ids
}

// Clear 清空购物车（删除持久化键）
func (s *CartService) Clear() error {
	if err := s.store.clearCart(); err != nil {
		return err
	}
	s.items = nil
	s.loaded = true
	s.notify()
	return nil
}

// RemoveIDs 移除指定图书
func (s *CartService) RemoveIDs(ids []int) error {
	s.ensureLoaded()
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	next := make([]CartItem, 0, len(s.items))
	for _, item := range s.items {
		if _, ok := drop[item.BookID]; ok {
			continue
		}
		next = append(next, item)
	}
	if len(next) == len(s.items) {
		return nil
	}
	if len(next) == 0 {
		return s.Clear()
	}
	if err := s.store.saveCart(next); err != nil {
		return err
	}
	s.items = next
	s.notify()
	return nil
}

// Subscribe 订阅购物车ID集合变化，回调在持久化之后同步执行
func (s *CartService) Subscribe(fn func(ids []int)) func() {
	if fn == nil {
		return func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		delete(s.subscribers, id)
	}
}

func (s *CartService) notify() {
	if len(s.subscribers) == 0 {
		return
	}
	ids := make([]int, 0, len(s.items))
	for _, item := range s.items {
		ids = append(ids, item.BookID)
	}
	// 按订阅顺序回调
	for i := 0; i < s.nextSubID; i++ {
		if fn, ok := s.subscribers[i]; ok {
			fn(append([]int(nil), ids...))
		}
	}
}

func (s *CartService) ensureLoaded() {
	if !s.loaded {
		s.Load()
	}
}

func (s *CartService) indexOf(bookID int) int {
	for i, item := range s.items {
		if item.BookID == bookID {
			return i
		}
	}
	return -1
}

// dedupeCartItems 先入者保留
func dedupeCartItems(items []CartItem) []CartItem {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(items))
	out := make([]CartItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.BookID]; ok {
			continue
		}
		seen[item.BookID] = struct{}{}
		out = append(out, item)
	}
	return out
}
