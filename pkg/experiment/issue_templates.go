package experiment

import (
	"fmt"

	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/rand"
)

// issueTemplates holds a handful of representative content strings per
// issue type, sampled uniformly when synthesizing an episode's Issue.
var issueTemplates = map[domain.IssueType][]string{
	domain.IssueRefundRequest: {
		"I want my money back for the item I returned two weeks ago.",
		"This product arrived broken and I need a full refund immediately.",
		"Can you refund my last order? I changed my mind.",
	},
	domain.IssueProductInquiry: {
		"Does this product come in a larger size?",
		"What's the difference between the standard and pro versions?",
		"Is this item compatible with my existing setup?",
	},
	domain.IssueOrderStatus: {
		"Where is my order? It was supposed to arrive yesterday.",
		"Can you tell me the current status of order #48213?",
		"My tracking hasn't updated in five days, what's going on?",
	},
	domain.IssueComplaint: {
		"This is the third time I've had to contact support about the same issue.",
		"Your product stopped working after one use and nobody has helped me.",
		"I'm extremely unhappy with the service I've received so far.",
	},
	domain.IssueTechnicalIssue: {
		"The app crashes every time I try to log in.",
		"I can't reset my password, the reset email never arrives.",
		"The device won't turn on after the last firmware update.",
	},
}

// synthesizeIssue builds an Issue with a uniformly sampled type, urgency,
// and template-derived content, using src as the sole source of randomness.
func synthesizeIssue(src rand.Source, episode int) domain.Issue {
	issueType := domain.IssueTypes[src.Intn(len(domain.IssueTypes))]
	templates := issueTemplates[issueType]
	content := templates[src.Intn(len(templates))]
	urgency := 1 + src.Intn(5)

	return domain.Issue{
		ID:      fmt.Sprintf("issue-%d", episode),
		Content: content,
		Type:    issueType,
		Urgency: urgency,
	}
}
