// Package care computes plant care due dates. All functions are pure.
package care

import "time"

// DefaultWateringIntervalDays applies when a plant is created without an interval.
const DefaultWateringIntervalDays = 7

// ScheduleNextWatering returns last plus intervalDays calendar days.
// Negative intervals are treated as zero.
func ScheduleNextWatering(last time.Time, intervalDays int) time.Time {
	return addDays(last, intervalDays)
}

// ScheduleNextFertilizing returns the next fertilizing date, or nil when the
// plant has never been fertilized or has no fertilizing interval.
func ScheduleNextFertilizing(last *time.Time, intervalDays *int) *time.Time {
	if last == nil || intervalDays == nil {
		return nil
	}
	next := addDays(*last, *intervalDays)
	return &next
}

// InitialWatering returns the (last, next) pair for a newly created plant.
// Without an explicit last-watered date, now anchors the schedule and last
// stays unset.
func InitialWatering(lastWatered *time.Time, intervalDays int, now time.Time) (*time.Time, time.Time) {
	if lastWatered != nil {
		return lastWatered, ScheduleNextWatering(*lastWatered, intervalDays)
	}
	return nil, ScheduleNextWatering(now, intervalDays)
}

// RescheduleWatering recomputes the next watering date after an interval
// change. ok is false when no watering has been recorded, in which case the
// stored next date must be left untouched.
func RescheduleWatering(lastWatered *time.Time, intervalDays int) (next time.Time, ok bool) {
	if lastWatered == nil {
		return time.Time{}, false
	}
	return ScheduleNextWatering(*lastWatered, intervalDays), true
}

// IsWateringDue reports whether next is set and not after now.
func IsWateringDue(next *time.Time, now time.Time) bool {
	return next != nil && !next.After(now)
}

func addDays(t time.Time, days int) time.Time {
	if days < 0 {
		days = 0
	}
	return t.AddDate(0, 0, days)
}
