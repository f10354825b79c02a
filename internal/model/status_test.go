package model

import (
	"strings"
	"testing"
)

func TestFactsTotalOverKnownStatuses(t *testing.T) {
	for _, s := range AllStatuses {
		f, err := FactsFor(s)
		if err != nil {
			t.Fatalf("FactsFor(%s): %v", s, err)
		}
		if f.Label == "" {
			t.Errorf("%s: empty label", s)
		}
		if f.Description == "" {
			t.Errorf("%s: empty description", s)
		}
		if f.Progress < 0 || f.Progress > 100 {
			t.Errorf("%s: progress %d out of range", s, f.Progress)
		}
		switch f.Color {
		case ColorRed, ColorYellow, ColorGreen, ColorBlue:
		default:
			t.Errorf("%s: unexpected color %q", s, f.Color)
		}
	}
}

func TestFactsColorRules(t *testing.T) {
	for _, s := range AllStatuses {
		f, _ := FactsFor(s)
		if strings.Contains(string(s), "rejected") && f.Color != ColorRed {
			t.Errorf("%s: want red, got %s", s, f.Color)
		}
		if strings.Contains(string(s), "pending") && f.Color != ColorYellow {
			t.Errorf("%s: want yellow, got %s", s, f.Color)
		}
	}
}

func TestFactsForUnknownFailsLoudly(t *testing.T) {
	if _, err := FactsFor(Status("archived")); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if f := FactsOrUnknown(Status("archived")); f != UnknownFacts {
		t.Fatalf("FactsOrUnknown fallback = %+v", f)
	}
}

func TestProgressNonDecreasingAlongTransitions(t *testing.T) {
	for _, from := range AllStatuses {
		for _, to := range NextStatuses(from) {
			ff, _ := FactsFor(from)
			tf, err := FactsFor(to)
			if err != nil {
				t.Fatalf("transition target %s unknown: %v", to, err)
			}
			if tf.Progress < ff.Progress {
				t.Errorf("%s -> %s: progress decreases %d -> %d", from, to, ff.Progress, tf.Progress)
			}
		}
	}
}

func TestTransitionGraph(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusPendingL1, StatusApproved},
		{StatusPendingL1, StatusPendingL2},
		{StatusPendingL1, StatusRejectedL1},
		{StatusPendingL2, StatusApproved},
		{StatusPendingL2, StatusRejectedL2},
		{StatusApproved, StatusOrdered},
		{StatusOrdered, StatusDelivered},
		{StatusDelivered, StatusCompleted},
	}
	for _, tc := range legal {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be legal", tc.from, tc.to)
		}
	}

	for _, terminal := range []Status{StatusRejectedL1, StatusRejectedL2, StatusCompleted} {
		if !terminal.IsTerminal() {
			t.Errorf("%s should be terminal", terminal)
		}
		if got := NextStatuses(terminal); len(got) != 0 {
			t.Errorf("%s: terminal status has successors %v", terminal, got)
		}
	}

	if CanTransition(StatusApproved, StatusCompleted) {
		t.Error("approved -> completed must not skip ordering and delivery")
	}
	if CanTransition(StatusPendingL2, StatusPendingL1) {
		t.Error("lifecycle must be monotonic")
	}
}

func TestRoleCanTransition(t *testing.T) {
	tests := []struct {
		role     Role
		from, to Status
		want     bool
	}{
		{RoleApproverL1, StatusPendingL1, StatusApproved, true},
		{RoleApproverL1, StatusPendingL1, StatusPendingL2, true},
		{RoleApproverL1, StatusPendingL1, StatusRejectedL1, true},
		{RoleApproverL1, StatusPendingL2, StatusApproved, false},
		{RoleApproverL2, StatusPendingL2, StatusRejectedL2, true},
		{RoleApproverL2, StatusPendingL1, StatusRejectedL1, false},
		{RoleFinance, StatusApproved, StatusOrdered, true},
		{RoleFinance, StatusOrdered, StatusDelivered, true},
		{RoleFinance, StatusDelivered, StatusCompleted, true},
		{RoleFinance, StatusPendingL1, StatusApproved, false},
		{RoleStaff, StatusPendingL1, StatusApproved, false},
		{RoleAdmin, StatusPendingL1, StatusApproved, true},
		{RoleAdmin, StatusDelivered, StatusCompleted, true},
		{RoleAdmin, StatusCompleted, StatusOrdered, false},
	}
	for _, tc := range tests {
		if got := RoleCanTransition(tc.role, tc.from, tc.to); got != tc.want {
			t.Errorf("RoleCanTransition(%s, %s, %s) = %v, want %v", tc.role, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanEdit(t *testing.T) {
	if !CanEdit(RoleStaff, StatusPendingL1) {
		t.Error("staff should edit while pending_l1")
	}
	for _, s := range AllStatuses {
		if s == StatusPendingL1 {
			continue
		}
		if CanEdit(RoleStaff, s) {
			t.Errorf("staff must not edit in status %s", s)
		}
	}
	if CanEdit(RoleFinance, StatusPendingL1) {
		t.Error("finance must not edit request content")
	}
}

func TestApprovalLevelFor(t *testing.T) {
	if lvl, ok := ApprovalLevelFor(StatusPendingL1); !ok || lvl != 1 {
		t.Errorf("pending_l1 level = %d, %v", lvl, ok)
	}
	if lvl, ok := ApprovalLevelFor(StatusPendingL2); !ok || lvl != 2 {
		t.Errorf("pending_l2 level = %d, %v", lvl, ok)
	}
	if _, ok := ApprovalLevelFor(StatusApproved); ok {
		t.Error("approved has no review level")
	}
}
