package compiler

import (
	"regexp"
	"strconv"
	"strings"

	"actionplan/internal/logging"
	"actionplan/internal/types"
)

// RuleStrategy is the deterministic rule-based compilation strategy.
// Category keyword tests run against the lower-cased prompt in a fixed order;
// field extraction runs case-insensitively against the original prompt so
// values like titles keep their casing. A category whose required fields
// cannot be extracted emits nothing - no partial action is ever produced.
type RuleStrategy struct{}

// NewRuleStrategy returns the default rule-based strategy.
func NewRuleStrategy() *RuleStrategy {
	return &RuleStrategy{}
}

// Extraction sub-patterns. These are fixed formats, not NLU: an email-shaped
// token, a labeled identifier following a keyword, a quoted title/content pair.
var (
	emailExtract        = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	customerIDExtract   = regexp.MustCompile(`(?i)customer[\s:#]+([A-Za-z0-9_-]+)`)
	paymentIDExtract    = regexp.MustCompile(`(?i)payment[\s:#]+([A-Za-z0-9_-]+)`)
	subscriptionExtract = regexp.MustCompile(`(?i)subscription[\s:#]+([A-Za-z0-9_-]+)`)
	userIDExtract       = regexp.MustCompile(`(?i)user[\s:#]+([A-Za-z0-9_-]+)`)
	passIDExtract       = regexp.MustCompile(`(?i)pass[\s:#]+([A-Za-z0-9_-]+)`)
	limitExtract        = regexp.MustCompile(`(?i)(?:limit|last|top)\s+(\d+)`)
	titleExtract        = regexp.MustCompile(`(?i)title:\s*"([^"]+)"`)
	contentExtract      = regexp.MustCompile(`(?i)content:\s*"([^"]+)"`)
	nameExtract         = regexp.MustCompile(`(?i)name:\s*"([^"]+)"`)
)

// category pairs a keyword test with a field extractor. The slice order is
// the scan order and fixes result ordering deterministically.
type category struct {
	name    string
	match   func(lower string) bool
	extract func(prompt string, platform types.Platform) (types.Action, error)
}

var categories = []category{
	{
		name:  "customer_creation",
		match: anyOf("create customer", "add customer", "new customer"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			email := emailExtract.FindString(prompt)
			name := firstGroup(nameExtract, prompt)
			return types.NewCreateCustomer(platform, types.CreateCustomerParams{Email: email, Name: name})
		},
	},
	{
		name:  "customer_lookup",
		match: anyOf("get customer", "find customer", "lookup customer", "show customer"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			return types.NewGetCustomer(platform, types.GetCustomerParams{
				CustomerID: lookupID(customerIDExtract, prompt),
			})
		},
	},
	{
		name:  "payment_listing",
		match: anyOf("list payments", "show payments", "recent payments"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			return types.NewListPayments(platform, types.ListPaymentsParams{
				Limit: extractLimit(prompt, 10),
			})
		},
	},
	{
		name:  "payment_lookup",
		match: anyOf("get payment", "payment details", "find payment"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			return types.NewGetPayment(platform, types.GetPaymentParams{
				PaymentID: lookupID(paymentIDExtract, prompt),
			})
		},
	},
	{
		name:  "subscription_listing",
		match: anyOf("list subscriptions", "show subscriptions", "recent subscriptions"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			return types.NewListSubscriptions(platform, types.ListSubscriptionsParams{
				Limit: extractLimit(prompt, 10),
			})
		},
	},
	{
		name:  "subscription_lookup",
		match: anyOf("get subscription", "find subscription", "subscription details"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			return types.NewGetSubscription(platform, types.GetSubscriptionParams{
				SubscriptionID: lookupID(subscriptionExtract, prompt),
			})
		},
	},
	{
		name:  "subscription_cancellation",
		match: anyOf("cancel subscription", "stop subscription", "end subscription"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			return types.NewCancelSubscription(platform, types.CancelSubscriptionParams{
				SubscriptionID: lookupID(subscriptionExtract, prompt),
			})
		},
	},
	{
		name:  "notification_dispatch",
		match: anyOf("send notification", "notify"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			return types.NewSendNotification(platform, types.SendNotificationParams{
				Title:   firstGroup(titleExtract, prompt),
				Content: firstGroup(contentExtract, prompt),
				UserID:  firstGroup(userIDExtract, prompt),
			})
		},
	},
	{
		name:  "access_check",
		match: anyOf("check access", "has access", "verify access"),
		extract: func(prompt string, platform types.Platform) (types.Action, error) {
			return types.NewCheckAccess(platform, types.CheckAccessParams{
				UserID:       firstGroup(userIDExtract, prompt),
				AccessPassID: firstGroup(passIDExtract, prompt),
			})
		},
	},
}

// Compile scans the categories in order. Multiple categories may match the
// same prompt and each contributes its own action.
func (s *RuleStrategy) Compile(prompt string, platform types.Platform) []types.Action {
	lower := strings.ToLower(prompt)

	var actions []types.Action
	for _, cat := range categories {
		if !cat.match(lower) {
			continue
		}
		action, err := cat.extract(prompt, platform)
		if err != nil {
			// Deliberate skip: a detected category whose required fields
			// cannot be extracted contributes nothing rather than a partial
			// or malformed action.
			logging.CompilerDebug("RuleStrategy: category %s matched but extraction failed: %v", cat.name, err)
			continue
		}
		logging.CompilerDebug("RuleStrategy: category %s emitted %s", cat.name, action.Type)
		actions = append(actions, action)
	}
	return actions
}

func anyOf(phrases ...string) func(string) bool {
	return func(lower string) bool {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}
}

func firstGroup(re *regexp.Regexp, prompt string) string {
	m := re.FindStringSubmatch(prompt)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// lookupID extracts a labeled identifier, ignoring captures that are just the
// category verb restated (e.g. "get customer details" must not yield
// "details" as an identifier).
func lookupID(re *regexp.Regexp, prompt string) string {
	id := firstGroup(re, prompt)
	switch strings.ToLower(id) {
	case "", "id", "details", "info", "record":
		return ""
	}
	return id
}

func extractLimit(prompt string, fallback int) int {
	raw := firstGroup(limitExtract, prompt)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
