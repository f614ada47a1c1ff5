package constants

// Game mechanics
const (
	EasyTaskPoints = 10
	HardTaskPoints = 25
	EasyTaskXP     = 15
	HardTaskXP     = 40

	// LatePenaltyNumerator/Denominator express the 50% late points
	// reduction as integer math (floor semantics).
	LatePenaltyNumerator   = 1
	LatePenaltyDenominator = 2

	XPPerLevel = 100
	MaxLevel   = 100
)

// Wish approval
const (
	// WishApprovalQuorum is the number of distinct non-creator
	// approvals required to activate a wish.
	WishApprovalQuorum = 2
)

// Invite codes
const (
	InviteCodeLength      = 6
	InviteCodeCharset     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	InviteCodeMaxAttempts = 5
)

// Session / context keys
const (
	ContextKeyUserID = "user_id"
	SessionName      = "task_session"
)

// Auth
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
