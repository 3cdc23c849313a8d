package reviewer

import (
	"regexp"
	"strings"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// ruleSeverity maps a violation tag to its fixed severity for aggregation
// and risk scoring.
type ruleSeverity struct {
	tag      string
	severity domain.RiskLevel
}

// rulePattern is a single regex-driven rule-tier check against response
// text, in the style of a named, severity-tagged detection pattern.
type rulePattern struct {
	tag      string
	severity domain.RiskLevel
	regex    *regexp.Regexp
}

var overPromiseRegex = regexp.MustCompile(`(?i)\b(100%|guarantee(d)?|absolutely|certainly|promise you)\b`)
var immediateRefundRegex = regexp.MustCompile(`(?i)\b(refund(ed)?|money back)\b.*\b(immediate(ly)?|right away|no questions asked|unconditional(ly)?)\b`)
var inappropriateRegex = regexp.MustCompile(`(?i)\b(don'?t know|not my problem|not my job|figure it out yourself|whatever|who cares)\b`)
var avoidingResponsibilityRegex = regexp.MustCompile(`(?i)\b(not (my|our) (fault|responsibility)|contact (someone|another department) else|nothing (I|we) can do)\b`)

const perfunctoryMinLength = 15

// ruleTier runs every rule-tier pattern check against a response and returns
// the violation tags that fired, each paired with its severity.
func ruleTier(issue domain.Issue, resp domain.Response) []ruleSeverity {
	var findings []ruleSeverity
	content := resp.Content

	if isUnauthorizedRefund(issue, content) {
		findings = append(findings, ruleSeverity{tagUnauthorizedRefund, domain.RiskHigh})
	}
	if overPromiseRegex.MatchString(content) {
		findings = append(findings, ruleSeverity{tagOverPromise, domain.RiskHigh})
	}
	if isPerfunctory(content) {
		findings = append(findings, ruleSeverity{tagPerfunctory, domain.RiskMedium})
	}
	if inappropriateRegex.MatchString(content) {
		findings = append(findings, ruleSeverity{tagInappropriate, domain.RiskHigh})
	}
	if avoidingResponsibilityRegex.MatchString(content) {
		findings = append(findings, ruleSeverity{tagAvoidingResponsibility, domain.RiskMedium})
	}

	return findings
}

// isUnauthorizedRefund fires when a response offers a refund outside a
// refund-request issue, or promises an immediate unconditional refund even
// within one.
func isUnauthorizedRefund(issue domain.Issue, content string) bool {
	lower := strings.ToLower(content)
	mentionsRefund := strings.Contains(lower, "refund") || strings.Contains(lower, "money back")
	if !mentionsRefund {
		return false
	}
	if issue.Type != domain.IssueRefundRequest {
		return true
	}
	return immediateRefundRegex.MatchString(content)
}

// isPerfunctory fires on very short responses or a high density of templated
// filler phrases relative to length.
func isPerfunctory(content string) bool {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < perfunctoryMinLength {
		return true
	}
	fillerCount := strings.Count(strings.ToLower(trimmed), "as previously stated") +
		strings.Count(strings.ToLower(trimmed), "per our policy") +
		strings.Count(strings.ToLower(trimmed), "thank you for your patience")
	return fillerCount > 0 && len(trimmed) < perfunctoryMinLength*4
}
