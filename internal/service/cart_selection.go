package service

import (
	"time"

	"github.com/booky-next/internal/constants"
)

// CartSelection 购物车页的勾选状态
// selectAll 只在 ToggleSelectAll 时改变；复选框展示用 AllSelected 按集合相等推导
type CartSelection struct {
	selected  map[int]struct{}
	selectAll bool
	cartIDs   []int
}

// NewCartSelection 创建空选择
func NewCartSelection() *CartSelection {
	return &CartSelection{selected: make(map[int]struct{})}
}

// Bind 订阅购物车变化并立即同步一次，返回取消订阅函数
func (v *CartSelection) Bind(cart *CartService) func() {
	unsubscribe := cart.Subscribe(v.OnCartChanged)
	v.OnCartChanged(cart.IDs())
	return unsubscribe
}

// OnCartChanged 购物车ID集合变化：全选时整体同步，否则剔除已不存在的ID
func (v *CartSelection) OnCartChanged(ids []int) {
	v.cartIDs = append(v.cartIDs[:0], ids...)
	if v.selectAll {
		v.selected = idSet(ids)
		return
	}
	current := idSet(ids)
	for id := range v.selected {
		if _, ok := current[id]; !ok {
			delete(v.selected, id)
		}
	}
}

// ToggleSelectAll 切换全选；关闭时清空全部勾选
func (v *CartSelection) ToggleSelectAll() {
	v.selectAll = !v.selectAll
	if v.selectAll {
		v.selected = idSet(v.cartIDs)
		return
	}
	v.selected = make(map[int]struct{})
}

// ToggleItem 切换单本勾选，不在购物车中的ID忽略
func (v *CartSelection) ToggleItem(bookID int) {
	if _, ok := v.selected[bookID]; ok {
		delete(v.selected, bookID)
		return
	}
	for _, id := range v.cartIDs {
		if id == bookID {
			v.selected[bookID] = struct{}{}
			return
		}
	}
}

// IsSelected 是否勾选
func (v *CartSelection) IsSelected(bookID int) bool {
	_, ok := v.selected[bookID]
	return ok
}

// SelectedCount 勾选数量
func (v *CartSelection) SelectedCount() int {
	return len(v.selected)
}

// SelectAllFlag 存储的全选标记
func (v *CartSelection) SelectAllFlag() bool {
	return v.selectAll
}

// AllSelected 全选复选框的展示值：购物车非空且勾选集合与购物车集合相等
func (v *CartSelection) AllSelected() bool {
	if len(v.cartIDs) == 0 || len(v.selected) != len(v.cartIDs) {
		return false
	}
	for _, id := range v.cartIDs {
		if _, ok := v.selected[id]; !ok {
			return false
		}
	}
	return true
}

// SelectedIDs 按购物车顺序返回勾选ID
func (v *CartSelection) SelectedIDs() []int {
	ids := make([]int, 0, len(v.selected))
	for _, id := range v.cartIDs {
		if _, ok := v.selected[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Selected 按购物车顺序返回勾选项
func (v *CartSelection) Selected(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(v.selected))
	for _, item := range items {
		if _, ok := v.selected[item.BookID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// TakeSnapshot 冻结勾选项并写入 checkoutItems，与购物车互不影响
func (v *CartSelection) TakeSnapshot(store *ClientStore, items []CartItem, now time.Time) (*CheckoutSnapshot, error) {
	selected := v.Selected(items)
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	snapshot := &CheckoutSnapshot{Items: selected, CapturedAt: now}
	if err := store.SetJSON(constants.StoreKeyCheckoutItems, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func idSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
