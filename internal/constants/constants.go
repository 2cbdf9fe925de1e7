package constants

// 客户端持久化存储键
const (
	StoreKeyToken         = "token"
	StoreKeyUser          = "user"
	StoreKeyCartItems     = "cartItems"
	StoreKeyCartCount     = "cartCount"
	StoreKeyCheckoutItems = "checkoutItems"
)

// 令牌前缀
const BearerPrefix = "Bearer "

// 借阅时长（天）
const (
	BorrowDuration3  = 3
	BorrowDuration5  = 5
	BorrowDuration10 = 10

	DefaultBorrowDuration = BorrowDuration3
)

// BorrowDurations 可选借阅时长
var BorrowDurations = []int{BorrowDuration3, BorrowDuration5, BorrowDuration10}

// 结账成功后清空购物车策略
const (
	CartClearPolicyAll       = "all"
	CartClearPolicySubmitted = "submitted"
)

// 借阅状态常量
const (
	LoanStatusBorrowed = "BORROWED"
	LoanStatusReturned = "RETURNED"
)

// 借阅审计来源
const (
	LoanAuditSourceProxy = "proxy"
)

// 队列与任务常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskLoanAudit = "loan:audit"
)

// 分页默认值
const (
	DefaultPage              = 1
	DefaultBookPageSize      = 20
	DefaultRecommendPageSize = 10
	DefaultReviewPageSize    = 10
	DefaultLoanPageSize      = 20
)

// 结账成功页缺省到期天数
const DefaultDueFallbackDays = 7
