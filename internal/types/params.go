package types

import (
	"fmt"
	"regexp"
	"strings"
)

// Per-variant parameter records. Constructors validate at construction time so
// an Action built through them can never carry another type's mandatory fields
// or a malformed value. The generic map form in Action.Parameters remains the
// wire shape validated by internal/validate for plans compiled elsewhere.

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s is a syntactically plausible email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// CreateCustomerParams creates a customer record on the target platform.
type CreateCustomerParams struct {
	Email string
	Name  string // optional
}

// NewCreateCustomer builds a validated create_customer action.
func NewCreateCustomer(platform Platform, p CreateCustomerParams) (Action, error) {
	if !ValidEmail(p.Email) {
		return Action{}, fmt.Errorf("create_customer: invalid email %q", p.Email)
	}
	params := map[string]interface{}{"email": p.Email}
	if p.Name != "" {
		params["name"] = p.Name
	}
	return newAction(platform, ActionCreateCustomer, params)
}

// GetCustomerParams looks up a single customer by identifier.
type GetCustomerParams struct {
	CustomerID string
}

// NewGetCustomer builds a validated get_customer action.
func NewGetCustomer(platform Platform, p GetCustomerParams) (Action, error) {
	if strings.TrimSpace(p.CustomerID) == "" {
		return Action{}, fmt.Errorf("get_customer: customer_id is required")
	}
	return newAction(platform, ActionGetCustomer, map[string]interface{}{
		"customer_id": p.CustomerID,
	})
}

// UpdateCustomerParams updates fields on an existing customer.
type UpdateCustomerParams struct {
	CustomerID string
	Email      string // optional
	Name       string // optional
}

// NewUpdateCustomer builds a validated update_customer action.
func NewUpdateCustomer(platform Platform, p UpdateCustomerParams) (Action, error) {
	if strings.TrimSpace(p.CustomerID) == "" {
		return Action{}, fmt.Errorf("update_customer: customer_id is required")
	}
	if p.Email != "" && !ValidEmail(p.Email) {
		return Action{}, fmt.Errorf("update_customer: invalid email %q", p.Email)
	}
	params := map[string]interface{}{"customer_id": p.CustomerID}
	if p.Email != "" {
		params["email"] = p.Email
	}
	if p.Name != "" {
		params["name"] = p.Name
	}
	return newAction(platform, ActionUpdateCustomer, params)
}

// ListPaymentsParams lists recent payments, optionally scoped to a customer.
type ListPaymentsParams struct {
	Limit      int    // optional, 0 = platform default
	CustomerID string // optional
}

// NewListPayments builds a validated list_payments action.
func NewListPayments(platform Platform, p ListPaymentsParams) (Action, error) {
	if p.Limit < 0 {
		return Action{}, fmt.Errorf("list_payments: limit must not be negative")
	}
	params := map[string]interface{}{}
	if p.Limit > 0 {
		params["limit"] = p.Limit
	}
	if p.CustomerID != "" {
		params["customer_id"] = p.CustomerID
	}
	return newAction(platform, ActionListPayments, params)
}

// GetPaymentParams looks up a single payment by identifier.
type GetPaymentParams struct {
	PaymentID string
}

// NewGetPayment builds a validated get_payment action.
func NewGetPayment(platform Platform, p GetPaymentParams) (Action, error) {
	if strings.TrimSpace(p.PaymentID) == "" {
		return Action{}, fmt.Errorf("get_payment: payment_id is required")
	}
	return newAction(platform, ActionGetPayment, map[string]interface{}{
		"payment_id": p.PaymentID,
	})
}

// ListSubscriptionsParams lists subscriptions, optionally scoped to a customer.
type ListSubscriptionsParams struct {
	Limit      int    // optional
	CustomerID string // optional
}

// NewListSubscriptions builds a validated list_subscriptions action.
func NewListSubscriptions(platform Platform, p ListSubscriptionsParams) (Action, error) {
	if p.Limit < 0 {
		return Action{}, fmt.Errorf("list_subscriptions: limit must not be negative")
	}
	params := map[string]interface{}{}
	if p.Limit > 0 {
		params["limit"] = p.Limit
	}
	if p.CustomerID != "" {
		params["customer_id"] = p.CustomerID
	}
	return newAction(platform, ActionListSubscriptions, params)
}

// GetSubscriptionParams looks up a single subscription by identifier.
type GetSubscriptionParams struct {
	SubscriptionID string
}

// NewGetSubscription builds a validated get_subscription action.
func NewGetSubscription(platform Platform, p GetSubscriptionParams) (Action, error) {
	if strings.TrimSpace(p.SubscriptionID) == "" {
		return Action{}, fmt.Errorf("get_subscription: subscription_id is required")
	}
	return newAction(platform, ActionGetSubscription, map[string]interface{}{
		"subscription_id": p.SubscriptionID,
	})
}

// CancelSubscriptionParams cancels an active subscription.
type CancelSubscriptionParams struct {
	SubscriptionID string
}

// NewCancelSubscription builds a validated cancel_subscription action.
func NewCancelSubscription(platform Platform, p CancelSubscriptionParams) (Action, error) {
	if strings.TrimSpace(p.SubscriptionID) == "" {
		return Action{}, fmt.Errorf("cancel_subscription: subscription_id is required")
	}
	return newAction(platform, ActionCancelSubscription, map[string]interface{}{
		"subscription_id": p.SubscriptionID,
	})
}

// CheckAccessParams checks whether a user holds an access pass.
type CheckAccessParams struct {
	UserID       string
	AccessPassID string // optional, defaults to the platform's primary pass
}

// NewCheckAccess builds a validated check_access action.
func NewCheckAccess(platform Platform, p CheckAccessParams) (Action, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return Action{}, fmt.Errorf("check_access: user_id is required")
	}
	params := map[string]interface{}{"user_id": p.UserID}
	if p.AccessPassID != "" {
		params["access_pass_id"] = p.AccessPassID
	}
	return newAction(platform, ActionCheckAccess, params)
}

// GrantAccessParams grants a user an access pass.
type GrantAccessParams struct {
	UserID       string
	AccessPassID string
}

// NewGrantAccess builds a validated grant_access action.
func NewGrantAccess(platform Platform, p GrantAccessParams) (Action, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return Action{}, fmt.Errorf("grant_access: user_id is required")
	}
	if strings.TrimSpace(p.AccessPassID) == "" {
		return Action{}, fmt.Errorf("grant_access: access_pass_id is required")
	}
	return newAction(platform, ActionGrantAccess, map[string]interface{}{
		"user_id":        p.UserID,
		"access_pass_id": p.AccessPassID,
	})
}

// RevokeAccessParams revokes a user's access pass.
type RevokeAccessParams struct {
	UserID       string
	AccessPassID string
}

// NewRevokeAccess builds a validated revoke_access action.
func NewRevokeAccess(platform Platform, p RevokeAccessParams) (Action, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return Action{}, fmt.Errorf("revoke_access: user_id is required")
	}
	if strings.TrimSpace(p.AccessPassID) == "" {
		return Action{}, fmt.Errorf("revoke_access: access_pass_id is required")
	}
	return newAction(platform, ActionRevokeAccess, map[string]interface{}{
		"user_id":        p.UserID,
		"access_pass_id": p.AccessPassID,
	})
}

// SendNotificationParams dispatches a notification to one user or broadcast.
type SendNotificationParams struct {
	Title   string
	Content string
	UserID  string // optional, empty = broadcast
}

// NewSendNotification builds a validated send_notification action.
func NewSendNotification(platform Platform, p SendNotificationParams) (Action, error) {
	if strings.TrimSpace(p.Title) == "" {
		return Action{}, fmt.Errorf("send_notification: title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return Action{}, fmt.Errorf("send_notification: content is required")
	}
	params := map[string]interface{}{
		"title":   p.Title,
		"content": p.Content,
	}
	if p.UserID != "" {
		params["user_id"] = p.UserID
	}
	return newAction(platform, ActionSendNotification, params)
}

func newAction(platform Platform, t ActionType, params map[string]interface{}) (Action, error) {
	if !platform.Valid() {
		return Action{}, fmt.Errorf("%s: unknown platform %q", t, platform)
	}
	return Action{Platform: platform, Type: t, Parameters: params}, nil
}

// StringParam extracts a string parameter from an action's wire form.
func (a Action) StringParam(name string) (string, bool) {
	v, ok := a.Parameters[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntParam extracts an integer parameter from an action's wire form.
// JSON decoding produces float64 for numbers, so both forms are accepted.
func (a Action) IntParam(name string) (int, bool) {
	v, ok := a.Parameters[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
