// Package registry is the single source of truth for the closed action
// vocabulary. It maps each whitelisted action type to its parameter schema.
// The compiler consults it to know what it may emit and the validator to know
// what to accept; no other package hard-codes the whitelist. Adding a new
// action type is a change to exactly this package (plus the ActionType
// constant in internal/types).
package registry

import (
	"fmt"
	"strings"

	"actionplan/internal/types"
)

// FieldKind constrains the value a parameter field may carry.
type FieldKind string

const (
	KindString     FieldKind = "string"     // non-empty free-form text
	KindEmail      FieldKind = "email"      // syntactically valid email address
	KindIdentifier FieldKind = "identifier" // opaque platform identifier, no whitespace
	KindInt        FieldKind = "int"        // non-negative integer
)

// Field declares one parameter of an action type.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
}

// Schema is the declared parameter shape of one whitelisted action type.
type Schema struct {
	Type        types.ActionType
	Description string
	Fields      []Field
}

// Field returns the declaration for the named field, if any.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// schemas lists every whitelisted action type in stable order.
var schemas = []Schema{
	{
		Type:        types.ActionCreateCustomer,
		Description: "Create a customer record on the target platform",
		Fields: []Field{
			{Name: "email", Kind: KindEmail, Required: true},
			{Name: "name", Kind: KindString},
		},
	},
	{
		Type:        types.ActionGetCustomer,
		Description: "Fetch a single customer by identifier",
		Fields: []Field{
			{Name: "customer_id", Kind: KindIdentifier, Required: true},
		},
	},
	{
		Type:        types.ActionUpdateCustomer,
		Description: "Update fields on an existing customer",
		Fields: []Field{
			{Name: "customer_id", Kind: KindIdentifier, Required: true},
			{Name: "email", Kind: KindEmail},
			{Name: "name", Kind: KindString},
		},
	},
	{
		Type:        types.ActionListPayments,
		Description: "List recent payments",
		Fields: []Field{
			{Name: "limit", Kind: KindInt},
			{Name: "customer_id", Kind: KindIdentifier},
		},
	},
	{
		Type:        types.ActionGetPayment,
		Description: "Fetch a single payment by identifier",
		Fields: []Field{
			{Name: "payment_id", Kind: KindIdentifier, Required: true},
		},
	},
	{
		Type:        types.ActionListSubscriptions,
		Description: "List subscriptions",
		Fields: []Field{
			{Name: "limit", Kind: KindInt},
			{Name: "customer_id", Kind: KindIdentifier},
		},
	},
	{
		Type:        types.ActionGetSubscription,
		Description: "Fetch a single subscription by identifier",
		Fields: []Field{
			{Name: "subscription_id", Kind: KindIdentifier, Required: true},
		},
	},
	{
		Type:        types.ActionCancelSubscription,
		Description: "Cancel an active subscription",
		Fields: []Field{
			{Name: "subscription_id", Kind: KindIdentifier, Required: true},
		},
	},
	{
		Type:        types.ActionCheckAccess,
		Description: "Check whether a user holds an access pass",
		Fields: []Field{
			{Name: "user_id", Kind: KindIdentifier, Required: true},
			{Name: "access_pass_id", Kind: KindIdentifier},
		},
	},
	{
		Type:        types.ActionGrantAccess,
		Description: "Grant a user an access pass",
		Fields: []Field{
			{Name: "user_id", Kind: KindIdentifier, Required: true},
			{Name: "access_pass_id", Kind: KindIdentifier, Required: true},
		},
	},
	{
		Type:        types.ActionRevokeAccess,
		Description: "Revoke a user's access pass",
		Fields: []Field{
			{Name: "user_id", Kind: KindIdentifier, Required: true},
			{Name: "access_pass_id", Kind: KindIdentifier, Required: true},
		},
	},
	{
		Type:        types.ActionSendNotification,
		Description: "Send a notification to a user or broadcast",
		Fields: []Field{
			{Name: "title", Kind: KindString, Required: true},
			{Name: "content", Kind: KindString, Required: true},
			{Name: "user_id", Kind: KindIdentifier},
		},
	},
}

var byType = func() map[types.ActionType]Schema {
	m := make(map[types.ActionType]Schema, len(schemas))
	for _, s := range schemas {
		m[s.Type] = s
	}
	return m
}()

// Lookup returns the schema for the given action type and whether the type is
// whitelisted.
func Lookup(t types.ActionType) (Schema, bool) {
	s, ok := byType[t]
	return s, ok
}

// IsAllowed reports whether the action type is in the whitelist.
func IsAllowed(t types.ActionType) bool {
	_, ok := byType[t]
	return ok
}

// All returns every schema in stable whitelist order.
func All() []Schema {
	out := make([]Schema, len(schemas))
	copy(out, schemas)
	return out
}

// CheckValue validates a single parameter value against its field declaration.
func CheckValue(f Field, value interface{}) error {
	switch f.Kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("must be a string")
		}
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("must not be empty")
		}
	case KindEmail:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("must be a string")
		}
		if !types.ValidEmail(s) {
			return fmt.Errorf("invalid email address")
		}
	case KindIdentifier:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("must be a string")
		}
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("must not be empty")
		}
		if strings.ContainsAny(s, " \t\n\r") {
			return fmt.Errorf("must not contain whitespace")
		}
	case KindInt:
		var n int
		switch v := value.(type) {
		case int:
			n = v
		case int64:
			n = int(v)
		case float64:
			if v != float64(int(v)) {
				return fmt.Errorf("must be an integer")
			}
			n = int(v)
		default:
			return fmt.Errorf("must be an integer")
		}
		if n < 0 {
			return fmt.Errorf("must not be negative")
		}
	default:
		return fmt.Errorf("unknown field kind %q", f.Kind)
	}
	return nil
}
