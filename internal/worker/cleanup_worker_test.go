package worker

import (
	"testing"
	"time"
)

func TestNextFire(t *testing.T) {
	// 2024-06-03 is a Monday.
	monday := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	t.Run("later in the same week", func(t *testing.T) {
		got := nextFire(monday, time.Friday, 18)
		want := time.Date(2024, 6, 7, 18, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("weekday already passed rolls to next week", func(t *testing.T) {
		got := nextFire(monday, time.Sunday, 0)
		want := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("same weekday earlier hour rolls a full week", func(t *testing.T) {
		got := nextFire(monday, time.Monday, 9)
		want := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("same weekday later hour fires today", func(t *testing.T) {
		got := nextFire(monday, time.Monday, 18)
		want := time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("exactly at the slot rolls forward", func(t *testing.T) {
		atSlot := time.Date(2024, 6, 7, 18, 0, 0, 0, time.UTC)
		got := nextFire(atSlot, time.Friday, 18)
		want := atSlot.AddDate(0, 0, 7)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("result is always strictly after now", func(t *testing.T) {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			for hour := 0; hour < 24; hour += 6 {
				got := nextFire(monday, wd, hour)
				if !got.After(monday) {
					t.Errorf("nextFire(%v, %v, %d) = %v is not after now", monday, wd, hour, got)
				}
				if got.Sub(monday) > 7*24*time.Hour {
					t.Errorf("nextFire(%v, %v, %d) = %v is more than a week out", monday, wd, hour, got)
				}
			}
		}
	})
}
