package auth

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/yigit/rea/internal/pkg/apperrors"
	"github.com/yigit/rea/internal/pkg/logger"
	"github.com/yigit/rea/internal/pkg/metrics"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resource names a protected collection
type Resource string

const (
	ResourceUser           Resource = "user"
	ResourceInstrument     Resource = "instrument"
	ResourceUserInstrument Resource = "user_instrument"
	ResourceExercise       Resource = "exercise"
	ResourceStats          Resource = "stats"
)

// Action names an operation on a resource
type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Target describes the owner of the record an action applies to.
// NoTarget means the action applies to the actor's own records.
type Target struct {
	owner int64
	set   bool
}

// NoTarget is the target of collection-wide and self-bound actions
var NoTarget = Target{}

// OwnedBy targets a record belonging to userID
func OwnedBy(userID int64) Target {
	return Target{owner: userID, set: true}
}

func (t Target) selfFor(actor Actor) bool {
	if actor.IsAnonymous() {
		return false
	}
	if !t.set {
		return true
	}
	return actor.Owns(t.owner)
}

// Authorizer decides whether an actor may perform an action
type Authorizer interface {
	Authorize(actor Actor, resource Resource, action Action, target Target) error
}

// Enforcer evaluates the embedded permission matrix with casbin
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the embedded model and policy
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadPolicy parses policy CSV lines of the form "p, ..." and "g, ...".
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		ptype, rule := parts[0], parts[1:]
		switch {
		case ptype == "p" && len(rule) == 4:
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2], rule[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case ptype == "g" && len(rule) == 2:
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Authorize returns nil when allowed, ErrUnauthorized when an anonymous actor is
// denied and ErrPermissionDenied when a signed-in actor is denied.
func (e *Enforcer) Authorize(actor Actor, resource Resource, action Action, target Target) error {
	self := strconv.FormatBool(target.selfFor(actor))

	allowed, err := e.enforcer.Enforce(actor.Role(), string(resource), string(action), self)
	if err != nil {
		logger.Error().Err(err).Str("resource", string(resource)).Str("action", string(action)).Msg("Policy evaluation failed")
		return fmt.Errorf("enforcement failed: %w", err)
	}
	metrics.RecordAuthz(string(resource), string(action), allowed)

	if allowed {
		return nil
	}
	if actor.IsAnonymous() {
		return fmt.Errorf("%w: sign in to %s %s records", apperrors.ErrUnauthorized, action, resource)
	}
	return fmt.Errorf("%w: cannot %s %s records", apperrors.ErrPermissionDenied, action, resource)
}
