// Package reviewer implements the Safety Reviewer: a rule tier of regex
// pattern checks plus an optional LLM judge tier, aggregated into a risk
// level and mapped to an enforcement action by a strict_mode-aware policy.
// The rule tier's pattern/severity shape and the judge tier's bracketed-
// verdict parsing both follow this module's detector conventions.
package reviewer

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/types"
)

const (
	tagUnauthorizedRefund     = "unauthorized_refund"
	tagOverPromise            = "over_promise"
	tagPerfunctory            = "perfunctory"
	tagInappropriate          = "inappropriate"
	tagAvoidingResponsibility = "avoiding_responsibility"
	tagMislead                = "mislead"
)

// severityPenalty gives each tag's severity a magnitude used for risk
// scoring; higher magnitude tags dominate min(1, max_|penalty|/200).
var severityPenalty = map[domain.RiskLevel]float64{
	domain.RiskCritical: 200,
	domain.RiskHigh:     150,
	domain.RiskMedium:   80,
	domain.RiskLow:      40,
	domain.RiskSafe:      0,
}

// riskMultiplier scales the normalized max penalty into a final risk score.
var riskMultiplier = map[domain.RiskLevel]float64{
	domain.RiskSafe:     0,
	domain.RiskLow:      0.3,
	domain.RiskMedium:   0.6,
	domain.RiskHigh:     0.8,
	domain.RiskCritical: 1.0,
}

// misleadSeverity is the severity assigned to tagMislead, the only tag the
// model tier can contribute; rule-tier tags carry their severity inline from
// ruleTier's findings.
const misleadSeverity = domain.RiskMedium

// Config configures a Reviewer.
type Config struct {
	StrictMode     bool
	EnableModelTier bool
}

// Reviewer implements types.SafetyReviewer.
type Reviewer struct {
	cfg     Config
	gateway types.Gateway

	totalReviews int64
	blocked      int64
	warned       int64
	rewritten    int64
	escalated    int64
	accepted     int64
}

// New constructs a Reviewer. gateway may be nil when EnableModelTier is
// false — the rule tier never calls it.
func New(cfg Config, gateway types.Gateway) *Reviewer {
	return &Reviewer{cfg: cfg, gateway: gateway}
}

// Review implements types.SafetyReviewer.
func (r *Reviewer) Review(ctx context.Context, issue domain.Issue, resp domain.Response) (domain.Review, domain.ReviewAction, error) {
	atomic.AddInt64(&r.totalReviews, 1)

	findings := ruleTier(issue, resp)
	kind := domain.ReviewerRule

	hasHighOrCritical := false
	for _, f := range findings {
		if f.severity == domain.RiskHigh || f.severity == domain.RiskCritical {
			hasHighOrCritical = true
			break
		}
	}

	// The model tier only runs when the rule tier didn't already reject the
	// response outright, and only when enabled.
	if !hasHighOrCritical && r.cfg.EnableModelTier && r.gateway != nil {
		// A timed-out or failed judge call degrades to rule-only for this
		// decision rather than blocking the episode loop.
		if tag, err := modelTier(ctx, r.gateway, issue, resp); err == nil {
			kind = domain.ReviewerHybrid
			if tag != "" {
				findings = append(findings, ruleSeverity{tag, misleadSeverity})
			}
		}
	}

	review := aggregate(issue, resp, findings, kind)
	action := enforce(review, r.cfg.StrictMode, findings)
	r.tally(action)

	return review, action, nil
}

func aggregate(issue domain.Issue, resp domain.Response, findings []ruleSeverity, kind domain.ReviewerKind) domain.Review {
	tags := make([]string, 0, len(findings))
	var maxPenalty float64
	riskLevel := domain.RiskSafe
	hasCritical, hasHigh := false, false

	for _, f := range findings {
		tags = append(tags, f.tag)
		if p := severityPenalty[f.severity]; p > maxPenalty {
			maxPenalty = p
		}
		switch f.severity {
		case domain.RiskCritical:
			hasCritical = true
		case domain.RiskHigh:
			hasHigh = true
		}
	}

	switch {
	case hasCritical:
		riskLevel = domain.RiskCritical
	case hasHigh:
		riskLevel = domain.RiskHigh
	case len(tags) >= 2:
		riskLevel = domain.RiskMedium
	case len(tags) == 1:
		riskLevel = domain.RiskLow
	default:
		riskLevel = domain.RiskSafe
	}

	normalized := maxPenalty / 200
	if normalized > 1 {
		normalized = 1
	}
	riskScore := normalized * riskMultiplier[riskLevel]

	return domain.Review{
		ID:            uuid.NewString(),
		IssueID:       issue.ID,
		ResponseID:    resp.ID,
		Approved:      len(tags) == 0,
		ViolationTags: tags,
		RiskLevel:     riskLevel,
		RiskScore:     riskScore,
		ReviewerKind:  kind,
	}
}

// enforce implements the strict_mode-aware enforcement policy table.
func enforce(review domain.Review, strict bool, findings []ruleSeverity) domain.ReviewAction {
	switch review.RiskLevel {
	case domain.RiskCritical:
		return domain.ActionBlock
	case domain.RiskHigh:
		if strict {
			return domain.ActionBlock
		}
		// REWRITE only for the tags the enforcement table treats as
		// auto-correctable at HIGH: perfunctory, or a service-policy
		// violation (unauthorized_refund) — either present anywhere among
		// the findings, not just as the tag that pushed risk to HIGH.
		// inappropriate alone (dismissive phrasing) has no safe rewrite
		// template and falls through to WARN.
		if hasTag(findings, tagPerfunctory) || hasTag(findings, tagUnauthorizedRefund) {
			return domain.ActionRewrite
		}
		return domain.ActionWarn
	case domain.RiskMedium:
		if hasTag(findings, tagPerfunctory) {
			return domain.ActionRewrite
		}
		return domain.ActionWarn
	case domain.RiskLow:
		return domain.ActionWarn
	default:
		return domain.ActionAccept
	}
}

func hasTag(findings []ruleSeverity, tag string) bool {
	for _, f := range findings {
		if f.tag == tag {
			return true
		}
	}
	return false
}

func (r *Reviewer) tally(action domain.ReviewAction) {
	switch action {
	case domain.ActionBlock:
		atomic.AddInt64(&r.blocked, 1)
	case domain.ActionWarn:
		atomic.AddInt64(&r.warned, 1)
	case domain.ActionRewrite:
		atomic.AddInt64(&r.rewritten, 1)
	case domain.ActionEscalate:
		atomic.AddInt64(&r.escalated, 1)
	case domain.ActionAccept:
		atomic.AddInt64(&r.accepted, 1)
	}
}

// Rewrite implements types.SafetyReviewer.
func (r *Reviewer) Rewrite(issue domain.Issue, resp domain.Response) string {
	lower := strings.ToLower(resp.Content)
	switch {
	case strings.Contains(lower, "refund"):
		return "I want to make sure I handle this correctly — let me verify your order details before confirming any refund, and I'll follow up shortly with next steps."
	case strings.Contains(lower, "complaint") || strings.Contains(lower, "sorry") || issue.Type == domain.IssueComplaint:
		return "I'm sorry for the trouble this has caused. I've noted the details of your issue and will make sure it's addressed properly."
	default:
		return "Thank you for reaching out. I want to give you an accurate answer, so let me look into this and get back to you with the correct information."
	}
}

// Statistics implements types.SafetyReviewer.
func (r *Reviewer) Statistics() types.ReviewerStats {
	return types.ReviewerStats{
		TotalReviews: atomic.LoadInt64(&r.totalReviews),
		Blocked:      atomic.LoadInt64(&r.blocked),
		Warned:       atomic.LoadInt64(&r.warned),
		Rewritten:    atomic.LoadInt64(&r.rewritten),
		Escalated:    atomic.LoadInt64(&r.escalated),
		Accepted:     atomic.LoadInt64(&r.accepted),
	}
}

// ResetStatistics implements types.SafetyReviewer.
func (r *Reviewer) ResetStatistics() {
	atomic.StoreInt64(&r.totalReviews, 0)
	atomic.StoreInt64(&r.blocked, 0)
	atomic.StoreInt64(&r.warned, 0)
	atomic.StoreInt64(&r.rewritten, 0)
	atomic.StoreInt64(&r.escalated, 0)
	atomic.StoreInt64(&r.accepted, 0)
}
