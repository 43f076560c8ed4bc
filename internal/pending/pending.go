// Package pending maintains the accessory/consumable pending lists of a
// tender. Items records what was originally selected and never shrinks;
// Pending is the remaining-work projection and must stay a subset of Items.
package pending

import (
	"fmt"

	"equiptrack/internal/types"
)

// InvariantError reports an item set whose pending list is not a subset of
// the selected items.
type InvariantError struct {
	Item string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("pending item %q is not among the selected items", e.Item)
}

// MarkComplete removes the given item names from the pending list. Names
// not currently pending are ignored, so re-marking a completed item is a
// no-op. Items is never touched.
func MarkComplete(set types.ItemSet, completed []string) types.ItemSet {
	done := make(map[string]struct{}, len(completed))
	for _, name := range completed {
		done[name] = struct{}{}
	}

	remaining := make([]string, 0, len(set.Pending))
	for _, name := range set.Pending {
		if _, ok := done[name]; ok {
			continue
		}
		remaining = append(remaining, name)
	}

	return types.ItemSet{
		Items:   set.Items,
		Pending: remaining,
	}
}

// Validate checks the subset invariant.
func Validate(set types.ItemSet) error {
	selected := make(map[string]struct{}, len(set.Items))
	for _, name := range set.Items {
		selected[name] = struct{}{}
	}
	for _, name := range set.Pending {
		if _, ok := selected[name]; !ok {
			return fmt.Errorf("%w", &InvariantError{Item: name})
		}
	}
	return nil
}

// NewSelection builds the item set for a freshly created tender: everything
// selected starts out pending.
func NewSelection(items []string) types.ItemSet {
	pendingCopy := make([]string, len(items))
	copy(pendingCopy, items)
	return types.ItemSet{
		Items:   items,
		Pending: pendingCopy,
	}
}
