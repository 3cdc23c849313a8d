// Package domain holds the value types that flow through a single episode of
// the experiment loop: Issue, Response, Outcome, Experience, MemoryEntry,
// StrategyRecord, Review, and Experiment. Types here are immutable unless a
// field's doc comment says otherwise; nothing in this package talks to a
// model, a clock, or a random source.
package domain

// IssueType categorizes a customer request.
type IssueType string

const (
	IssueRefundRequest  IssueType = "refund_request"
	IssueProductInquiry IssueType = "product_inquiry"
	IssueOrderStatus    IssueType = "order_status"
	IssueComplaint      IssueType = "complaint"
	IssueTechnicalIssue IssueType = "technical_issue"
)

// IssueTypes lists every predefined issue type in a stable order, used when
// sampling an issue type uniformly at random.
var IssueTypes = []IssueType{
	IssueRefundRequest,
	IssueProductInquiry,
	IssueOrderStatus,
	IssueComplaint,
	IssueTechnicalIssue,
}

// Issue is a generated or supplied customer request. Immutable after creation.
type Issue struct {
	ID       string
	Content  string
	Type     IssueType
	Urgency  int // 1..5
	Metadata map[string]string
}
