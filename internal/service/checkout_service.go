package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/booky-next/internal/apiclient"
	"github.com/booky-next/internal/constants"
	"github.com/booky-next/internal/logger"
)

// CheckoutState 结账状态
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSucceeded  CheckoutState = "succeeded"
	CheckoutFailed     CheckoutState = "failed"
)

// LoanSubmitter 提交单条借阅
type LoanSubmitter interface {
	CreateLoan(ctx context.Context, req apiclient.LoanRequest) (*apiclient.Envelope, error)
}

// CheckoutOptions 结账配置
type CheckoutOptions struct {
	ClearPolicy     string
	DefaultDuration int
	Now             func() time.Time
}

// CheckoutResult 全部提交成功的结果
type CheckoutResult struct {
	DueDate   CalendarDate
	Submitted []CartItem
}

// HandoffQuery 结账成功页参数
func (r *CheckoutResult) HandoffQuery() string {
	return "due=" + r.DueDate.String()
}

// CheckoutService 结账流程：逐条顺序提交，遇到第一个失败即停止
type CheckoutService struct {
	store     *ClientStore
	cart      *CartService
	submitter LoanSubmitter
	policy    string
	now       func() time.Time

	items        []CartItem
	borrowDate   CalendarDate
	duration     int
	agreeReturn  bool
	acceptPolicy bool
	state        CheckoutState
	lastErr      error
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(store *ClientStore, cart *CartService, submitter LoanSubmitter, opts CheckoutOptions) *CheckoutService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	duration := opts.DefaultDuration
	if !IsAllowedDuration(duration) {
		duration = constants.DefaultBorrowDuration
	}
	policy := strings.ToLower(strings.TrimSpace(opts.ClearPolicy))
	if policy != constants.CartClearPolicySubmitted {
		policy = constants.CartClearPolicyAll
	}
	return &CheckoutService{
		store:      store,
		cart:       cart,
		submitter:  submitter,
		policy:     policy,
		now:        now,
		borrowDate: DateOf(now()),
		duration:   duration,
		state:      CheckoutIdle,
	}
}

// LoadSnapshot 读取购物车页写入的快照；缺失或损坏时为空
func (s *CheckoutService) LoadSnapshot() []CartItem {
	var snapshot CheckoutSnapshot
	ok, err := s.store.GetJSON(constants.StoreKeyCheckoutItems, &snapshot)
	if err != nil {
		logger.Warnw("checkout_snapshot_load_failed", "error", err)
	}
	if err != nil || !ok {
		s.items = nil
		return nil
	}
	s.items = dedupeCartItems(snapshot.Items)
	return s.Items()
}

// UseSnapshot 直接使用内存中的快照
func (s *CheckoutService) UseSnapshot(snapshot *CheckoutSnapshot) {
	if snapshot == nil {
		s.items = nil
		return
	}
	s.items = dedupeCartItems(snapshot.Items)
}

// Items 快照中的图书
func (s *CheckoutService) Items() []CartItem {
	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// SetBorrowDate 设置借阅日期
func (s *CheckoutService) SetBorrowDate(d CalendarDate) {
	s.borrowDate = d
}

// BorrowDate 借阅日期
func (s *CheckoutService) BorrowDate() CalendarDate {
	return s.borrowDate
}

// SetDuration 设置借阅时长，仅允许 3/5/10 天
func (s *CheckoutService) SetDuration(days int) error {
	if !IsAllowedDuration(days) {
		return ErrInvalidDuration
	}
	s.duration = days
	return nil
}

// Duration 借阅时长
func (s *CheckoutService) Duration() int {
	return s.duration
}

// SetAgreeReturn 同意按期归还
func (s *CheckoutService) SetAgreeReturn(v bool) {
	s.agreeReturn = v
}

// SetAcceptPolicy 接受借阅规则
func (s *CheckoutService) SetAcceptPolicy(v bool) {
	s.acceptPolicy = v
}

// ReturnDate 应还日期
func (s *CheckoutService) ReturnDate() CalendarDate {
	return AddCalendarDays(s.borrowDate, s.duration)
}

// CanSubmit 快照非空且两项同意均已勾选
func (s *CheckoutService) CanSubmit() bool {
	return s.state == CheckoutIdle && len(s.items) > 0 && s.agreeReturn && s.acceptPolicy
}

// State 当前状态
func (s *CheckoutService) State() CheckoutState {
	return s.state
}

// Err 最近一次失败原因
func (s *CheckoutService) Err() error {
	return s.lastErr
}

// Dismiss 确认失败，回到 Idle；不会重新排队已提交的条目
func (s *CheckoutService) Dismiss() {
	if s.state != CheckoutFailed {
		return
	}
	s.state = CheckoutIdle
	s.lastErr = nil
}

// Submit 顺序提交快照中的每一本书
func (s *CheckoutService) Submit(ctx context.Context) (*CheckoutResult, error) {
	if s.state != CheckoutIdle {
		return nil, ErrCheckoutNotIdle
	}
	if !s.CanSubmit() {
		return nil, ErrValidationBlocked
	}
	s.state = CheckoutSubmitting
	dueDate := s.ReturnDate()
	log := logger.SW("items", len(s.items), "days", s.duration, "due", dueDate.String())

	token, err := s.store.Token()
	if err != nil {
		log.Warnw("checkout_token_read_failed", "error", err)
	}
	if apiclient.NormalizeBearer(token) == "" {
		return nil, s.fail(ErrAuthenticationRequired)
	}

	for i, item := range s.items {
		draft := LoanDraft{BookID: item.BookID, Days: s.duration}
		resp, err := s.submitter.CreateLoan(ctx, apiclient.LoanRequest{BookID: draft.BookID, Days: draft.Days})
		if err != nil {
			failure := classifySubmitError(i, item.BookID, err)
			log.Warnw("checkout_item_failed", "index", i, "book_id", item.BookID, "error", err)
			return nil, s.fail(failure)
		}
		if resp.Failed() {
			message := strings.TrimSpace(resp.Message)
			if message == "" {
				message = defaultBorrowFailedMessage
			}
			log.Warnw("checkout_item_rejected", "index", i, "book_id", item.BookID, "message", message)
			return nil, s.fail(&ItemSubmissionFailedError{Index: i, BookID: item.BookID, Message: message})
		}
		log.Debugw("checkout_item_submitted", "index", i, "book_id", item.BookID)
	}

	submitted := s.Items()
	s.clearAfterSuccess(submitted)
	if err := s.store.Remove(constants.StoreKeyCheckoutItems); err != nil {
		log.Warnw("checkout_snapshot_discard_failed", "error", err)
	}
	s.items = nil
	s.state = CheckoutSucceeded
	log.Infow("checkout_succeeded", "policy", s.policy)
	return &CheckoutResult{DueDate: dueDate, Submitted: submitted}, nil
}

func (s *CheckoutService) fail(err error) error {
	s.state = CheckoutFailed
	s.lastErr = err
	return err
}

// clearAfterSuccess 按策略清空购物车；all 为整车清空
func (s *CheckoutService) clearAfterSuccess(submitted []CartItem) {
	if s.cart == nil {
		return
	}
	var err error
	if s.policy == constants.CartClearPolicySubmitted {
		ids := make([]int, 0, len(submitted))
		for _, item := range submitted {
			ids = append(ids, item.BookID)
		}
		err = s.cart.RemoveIDs(ids)
	} else {
		err = s.cart.Clear()
	}
	if err != nil {
		logger.Warnw("checkout_cart_clear_failed", "policy", s.policy, "error", err)
	}
}

// classifySubmitError 有 HTTP 响应的归为条目失败，否则为传输失败
func classifySubmitError(index, bookID int, err error) error {
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) {
		message := strings.TrimSpace(statusErr.Message)
		if message == "" {
			message = statusErr.Error()
		}
		return &ItemSubmissionFailedError{Index: index, BookID: bookID, Message: message}
	}
	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = defaultBorrowFailedMessage
	}
	return &TransportError{Index: index, BookID: bookID, Message: message, Err: err}
}
