package invite

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeActions settles each invite after a configurable number of passes.
type fakeActions struct {
	items        []Item
	passesNeeded map[int64]int
	applied      map[int64]int
	log          []string
}

func newFakeActions(items []Item) *fakeActions {
	return &fakeActions{
		items:        items,
		passesNeeded: map[int64]int{},
		applied:      map[int64]int{},
	}
}

func (a *fakeActions) Refresh(ctx context.Context) ([]Item, error) {
	out := make([]Item, len(a.items))
	copy(out, a.items)
	return out, nil
}

func (a *fakeActions) CreateOrUpdate(ctx context.Context, item Item) error {
	a.applied[item.ID]++
	a.log = append(a.log, fmt.Sprintf("%s:%d:%s", item.Kind, item.ID, item.Status))
	needed := a.passesNeeded[item.ID]
	if needed <= 1 || a.applied[item.ID] >= needed {
		for i := range a.items {
			if a.items[i].ID == item.ID && a.items[i].Kind == item.Kind {
				a.items[i].Status = StatusSentCurrent
			}
		}
	}
	return nil
}

func automationFixture() []Item {
	return []Item{
		{ID: 1, Kind: KindMeeting, Title: "Board Meeting March", Status: StatusMissing},
		{ID: 11, Kind: KindAgendaItem, Title: "Q3 Review", Status: StatusStaleSent},
		{ID: 10, Kind: KindAgendaItem, Title: "Intro", Status: StatusMissing},
		{ID: 12, Kind: KindAgendaItem, Title: "Misc", Status: StatusSentCurrent},
	}
}

func TestRunAutomationSettlesMeetingFirstThenTopsById(t *testing.T) {
	actions := newFakeActions(automationFixture())

	final, err := RunAutomation(context.Background(), actions)
	if err != nil {
		t.Fatalf("RunAutomation: %v", err)
	}

	for _, item := range final {
		if item.Status != StatusSentCurrent {
			t.Errorf("invite %d finished in %v", item.ID, item.Status)
		}
	}

	want := []string{
		"meeting:1:missing",
		"agendaItem:10:missing",
		"agendaItem:11:staleSent",
	}
	if len(actions.log) != len(want) {
		t.Fatalf("log = %v, want %v", actions.log, want)
	}
	for i := range want {
		if actions.log[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, actions.log[i], want[i])
		}
	}
	if actions.applied[12] != 0 {
		t.Error("settled invite was touched")
	}
}

func TestRunAutomationRelabelsDrafts(t *testing.T) {
	items := []Item{
		{ID: 1, Kind: KindMeeting, Status: StatusSentCurrent},
		{ID: 10, Kind: KindAgendaItem, Title: "Intro", Status: StatusUnsentDraft},
		{ID: 11, Kind: KindAgendaItem, Title: "Finance", Status: StatusStaleUnsent},
	}
	actions := newFakeActions(items)

	if _, err := RunAutomation(context.Background(), actions); err != nil {
		t.Fatalf("RunAutomation: %v", err)
	}

	want := []string{
		"agendaItem:10:staleSent",
		"agendaItem:11:staleSent",
	}
	for i := range want {
		if actions.log[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, actions.log[i], want[i])
		}
	}
}

func TestRunAutomationGivesUpOnStuckInvite(t *testing.T) {
	items := []Item{
		{ID: 1, Kind: KindMeeting, Status: StatusSentCurrent},
		{ID: 10, Kind: KindAgendaItem, Title: "Haunted", Status: StatusStaleSent},
	}
	actions := newFakeActions(items)
	actions.passesNeeded[10] = 100

	_, err := RunAutomation(context.Background(), actions)
	if err == nil {
		t.Fatal("expected error for stuck invite")
	}
	if !errors.Is(err, ErrNotConverged) {
		t.Errorf("err = %v, want ErrNotConverged", err)
	}
	if actions.applied[10] != maxPassesPerInvite {
		t.Errorf("applied %d passes, want %d", actions.applied[10], maxPassesPerInvite)
	}
}

func TestRunAutomationPropagatesActionErrors(t *testing.T) {
	actions := &failingActions{}
	if _, err := RunAutomation(context.Background(), actions); err == nil {
		t.Fatal("expected error")
	}
}

type failingActions struct{}

func (a *failingActions) Refresh(ctx context.Context) ([]Item, error) {
	return []Item{{ID: 1, Kind: KindMeeting, Status: StatusMissing}}, nil
}

func (a *failingActions) CreateOrUpdate(ctx context.Context, item Item) error {
	return errors.New("calendar write failed")
}
