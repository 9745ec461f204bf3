package aggregate

import (
	"fmt"

	"github.com/fablepress/fablepress-server/internal/domain"
	"github.com/fablepress/fablepress-server/internal/id"
	"github.com/fablepress/fablepress-server/internal/store"
)

// recordActivity appends one feed row for a publish event. Reference fields
// beyond author and book are set by the caller according to the type.
func recordActivity(tx *store.Tx, activity *domain.Activity) error {
	activity.ID = id.MustGenerate(id.PrefixActivity)
	activity.InitTimestamps()

	if err := store.Insert(tx, store.Activities, activity.ID, activity); err != nil {
		return fmt.Errorf("record %s activity: %w", activity.Type, err)
	}
	return nil
}

// deleteActivitiesBy removes all activity rows referencing the given entity
// via the named index. Called from delete handlers so no feed row outlives
// what it points at.
func deleteActivitiesBy(tx *store.Tx, index, entityID string) error {
	return deleteAll(tx, store.Activities, index, entityID)
}
