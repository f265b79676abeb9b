package model

import (
	"testing"
	"time"
)

func TestApplyStatusStampsCompletedAt(t *testing.T) {
	created := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	task := Task{Status: TaskPending, CreatedAt: created}

	first := created.Add(time.Hour)
	task.ApplyStatus(TaskCompleted, first)
	if task.Status != TaskCompleted {
		t.Fatalf("expected status completed, got %q", task.Status)
	}
	if task.CompletedAt == nil || task.CompletedAt.Before(created) {
		t.Fatalf("expected completedAt >= creation time, got %v", task.CompletedAt)
	}

	// Re-applying completed must not move the timestamp
	task.ApplyStatus(TaskCompleted, first.Add(time.Hour))
	if !task.CompletedAt.Equal(first) {
		t.Fatalf("expected completedAt unchanged on repeated completion, got %v", task.CompletedAt)
	}

	// Moving out of completed clears the timestamp
	task.ApplyStatus(TaskPending, first.Add(2*time.Hour))
	if task.Status != TaskPending {
		t.Fatalf("expected status pending, got %q", task.Status)
	}
	if task.CompletedAt != nil {
		t.Fatalf("expected completedAt cleared, got %v", task.CompletedAt)
	}

	// Round trip yields a new, later timestamp
	second := first.Add(3 * time.Hour)
	task.ApplyStatus(TaskCompleted, second)
	if task.CompletedAt == nil || !task.CompletedAt.Equal(second) {
		t.Fatalf("expected fresh completedAt %v, got %v", second, task.CompletedAt)
	}
	if !task.CompletedAt.After(first) {
		t.Fatalf("expected new completedAt later than the first one")
	}
}

func TestApplyStatusNonCompletedTransitions(t *testing.T) {
	task := Task{Status: TaskPending}
	now := time.Now()

	task.ApplyStatus(TaskInProgress, now)
	if task.Status != TaskInProgress || task.CompletedAt != nil {
		t.Fatalf("expected in-progress with nil completedAt, got %q %v", task.Status, task.CompletedAt)
	}

	task.ApplyStatus(TaskCancelled, now)
	if task.Status != TaskCancelled || task.CompletedAt != nil {
		t.Fatalf("expected cancelled with nil completedAt, got %q %v", task.Status, task.CompletedAt)
	}
}
