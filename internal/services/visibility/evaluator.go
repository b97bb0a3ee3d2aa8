package visibility

import (
	"fmt"

	"github.com/nvtienanh/metagate/internal/entities"
)

// Action is what the requester wants to do with a metadata partition.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// EvaluatorInterface defines the interface for visibility decisions
type EvaluatorInterface interface {
	CanView(r *entities.Requester, e *entities.Entity, partition entities.Partition) bool
	CanModify(r *entities.Requester, e *entities.Entity, partition entities.Partition) bool
	Authorize(r *entities.Requester, e *entities.Entity, partition entities.Partition, action Action) error
}

// Evaluator decides metadata visibility from the policy table. Evaluation is
// a pure function of (requester, entity snapshot, partition); the evaluator
// holds no mutable state and is safe for concurrent use.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// CanView reports whether the requester may read the given partition of the
// entity.
//
// Public partition: allowed for the owner, for holders of the class's
// managing permission, and for everyone on globally-readable catalog classes.
//
// Private partition: allowed only for holders of the managing permission.
// Self-ownership never grants private visibility; in particular a staff
// account reading its own private metadata needs manage_staff.
func (ev *Evaluator) CanView(r *entities.Requester, e *entities.Entity, partition entities.Partition) bool {
	policy, err := PolicyFor(e.Class)
	if err != nil {
		return false
	}

	if partition == entities.PartitionPrivate {
		return r.HasPermission(policy.ManagingPermission)
	}

	if policy.PublicReadable {
		return true
	}
	if r.HasPermission(policy.ManagingPermission) {
		return true
	}
	return policy.Ownership != nil && policy.Ownership(r, e)
}

// CanModify reports whether the requester may write the given partition.
// Writes follow the read rules except that the globally-readable flag never
// applies: public writes need ownership or the managing permission, private
// writes the managing permission.
func (ev *Evaluator) CanModify(r *entities.Requester, e *entities.Entity, partition entities.Partition) bool {
	policy, err := PolicyFor(e.Class)
	if err != nil {
		return false
	}

	if r.HasPermission(policy.ManagingPermission) {
		return true
	}
	if partition == entities.PartitionPrivate {
		return false
	}
	return policy.Ownership != nil && policy.Ownership(r, e)
}

// Authorize checks the requested action and maps a denial to the error
// taxonomy. Classes flagged cloak-existence return ErrNotFound instead of
// ErrAuthorizationDenied when the requester cannot see the entity at all, so
// probing for other customers' checkouts or accounts reveals nothing.
func (ev *Evaluator) Authorize(r *entities.Requester, e *entities.Entity, partition entities.Partition, action Action) error {
	policy, err := PolicyFor(e.Class)
	if err != nil {
		return fmt.Errorf("authorize %s: %w", e, err)
	}

	allowed := false
	switch action {
	case ActionRead:
		allowed = ev.CanView(r, e, partition)
	case ActionWrite:
		allowed = ev.CanModify(r, e, partition)
	default:
		return fmt.Errorf("unknown action: %s", action)
	}

	if allowed {
		return nil
	}

	if policy.CloakExistence && !ev.CanView(r, e, entities.PartitionPublic) {
		return fmt.Errorf("%s %s metadata of %s: %w", action, partition, e.Class, ErrNotFound)
	}
	return fmt.Errorf("%s %s metadata of %s: %w", action, partition, e.Class, ErrAuthorizationDenied)
}
