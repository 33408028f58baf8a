// AngelaMos | 2026
// authz.go

// Package authz decides whether a principal may act on an ad or a feedback.
// Every function here is pure: no I/O, no shared state, safe for concurrent
// use from any number of requests.
package authz

import (
	"fmt"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

const RoleAdmin = "admin"

// Principal is the authenticated caller. A nil *Principal is an anonymous
// caller.
type Principal struct {
	UserID string
	Role   string
}

// Target is the object an object-level rule is evaluated against. AuthorID is
// nil when the row never had an author or the author has since been deleted.
type Target struct {
	AuthorID *string
}

type Kind uint8

const (
	KindAd Kind = iota
	KindFeedback
)

func (k Kind) String() string {
	switch k {
	case KindAd:
		return "ad"
	case KindFeedback:
		return "feedback"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type Action uint8

const (
	ActionReadList Action = iota
	ActionReadMine
	ActionReadOne
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionReadList:
		return "read_list"
	case ActionReadMine:
		return "read_mine"
	case ActionReadOne:
		return "read_one"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "ALLOW"
	}
	return "DENY"
}

// Predicate is one object-level rule. The target may be nil for actions that
// have no instance yet (create, list).
type Predicate func(p *Principal, t *Target) bool

func IsAuthenticated(p *Principal, _ *Target) bool {
	return p != nil && p.UserID != ""
}

func IsAdmin(p *Principal, _ *Target) bool {
	return p != nil && p.Role == RoleAdmin
}

// IsAuthor never matches an orphaned target, so a null author cannot equal a
// null or empty principal id.
func IsAuthor(p *Principal, t *Target) bool {
	if p == nil || p.UserID == "" || t == nil || t.AuthorID == nil {
		return false
	}
	return *t.AuthorID == p.UserID
}

func AnyOf(preds ...Predicate) Predicate {
	return func(p *Principal, t *Target) bool {
		for _, pred := range preds {
			if pred(p, t) {
				return true
			}
		}
		return false
	}
}

func AllOf(preds ...Predicate) Predicate {
	return func(p *Principal, t *Target) bool {
		for _, pred := range preds {
			if !pred(p, t) {
				return false
			}
		}
		return true
	}
}

func always(*Principal, *Target) bool { return true }

type policy struct {
	requireAuth bool
	object      Predicate
}

type rule struct {
	kind   Kind
	action Action
}

var ownerOrAdmin = AnyOf(IsAuthor, IsAdmin)

var policies = map[rule]policy{
	{KindAd, ActionReadList}: {requireAuth: false, object: always},
	{KindAd, ActionReadMine}: {requireAuth: true, object: always},
	{KindAd, ActionReadOne}:  {requireAuth: true, object: always},
	{KindAd, ActionCreate}:   {requireAuth: true, object: always},
	{KindAd, ActionUpdate}:   {requireAuth: true, object: ownerOrAdmin},
	{KindAd, ActionDelete}:   {requireAuth: true, object: ownerOrAdmin},

	{KindFeedback, ActionReadList}: {requireAuth: true, object: always},
	{KindFeedback, ActionReadMine}: {requireAuth: true, object: always},
	{KindFeedback, ActionReadOne}:  {requireAuth: true, object: always},
	{KindFeedback, ActionCreate}:   {requireAuth: true, object: always},
	{KindFeedback, ActionUpdate}:   {requireAuth: true, object: ownerOrAdmin},
	{KindFeedback, ActionDelete}:   {requireAuth: true, object: ownerOrAdmin},
}

// RequiresAuth reports whether the action is closed to anonymous callers.
// Unknown (kind, action) pairs require authentication.
func RequiresAuth(kind Kind, action Action) bool {
	pol, ok := policies[rule{kind, action}]
	if !ok {
		return true
	}
	return pol.requireAuth
}

// Can evaluates the full policy: the authentication gate first, then the
// object rule. Unknown (kind, action) pairs are denied.
func Can(p *Principal, kind Kind, action Action, t *Target) Decision {
	pol, ok := policies[rule{kind, action}]
	if !ok {
		return Deny
	}

	if pol.requireAuth && !IsAuthenticated(p, t) {
		return Deny
	}

	return Decision(pol.object(p, t))
}

// Authenticate runs only the prerequisite gate. Services call it before
// loading the target so an anonymous caller gets 401, never 404.
func Authenticate(p *Principal, kind Kind, action Action) error {
	if RequiresAuth(kind, action) && !IsAuthenticated(p, nil) {
		return fmt.Errorf("%s %s: %w", action, kind, core.ErrUnauthorized)
	}
	return nil
}

// Authorize maps Can onto the error taxonomy: ErrUnauthorized when the gate
// fails, ErrForbidden when the object rule denies.
func Authorize(p *Principal, kind Kind, action Action, t *Target) error {
	if err := Authenticate(p, kind, action); err != nil {
		return err
	}

	if !Can(p, kind, action, t) {
		return fmt.Errorf("%s %s: %w", action, kind, core.ErrForbidden)
	}

	return nil
}

// AuthorScope is the visibility filter for "my ads" / "my feedback": the
// author id every listed row must carry.
func AuthorScope(p *Principal) (string, error) {
	if !IsAuthenticated(p, nil) {
		return "", fmt.Errorf("author scope: %w", core.ErrUnauthorized)
	}
	return p.UserID, nil
}
