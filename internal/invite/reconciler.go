package invite

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// An invite normally settles in one or two passes; more means the calendar
// keeps drifting under us.
const maxPassesPerInvite = 8

// ErrNotConverged marks an automation run that gave up on a stuck invite.
var ErrNotConverged = errors.New("invite did not converge")

// Actions is what the automation can do to the outside world.
type Actions interface {
	// Refresh re-classifies every invite of the meeting.
	Refresh(ctx context.Context) ([]Item, error)
	// CreateOrUpdate creates the invite's event or updates and sends it,
	// depending on the status carried by item, and persists the event id.
	CreateOrUpdate(ctx context.Context, item Item) error
}

// RunAutomation drives every invite of a meeting to SentCurrent. The main
// meeting invite settles first since agenda events inherit its mail body and
// join link; agenda items follow in ascending id order. Returns the final
// classification, partial when a wrapped ErrNotConverged is returned.
func RunAutomation(ctx context.Context, actions Actions) ([]Item, error) {
	items, err := actions.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	meeting := findMeeting(items)
	passes := 0
	for meeting != nil && meeting.Status != StatusSentCurrent {
		if passes++; passes > maxPassesPerInvite {
			return items, fmt.Errorf("%w: meeting invite %q stuck in %s after %d passes",
				ErrNotConverged, meeting.Title, meeting.Status, maxPassesPerInvite)
		}
		if err := actions.CreateOrUpdate(ctx, relabel(*meeting)); err != nil {
			return items, err
		}
		if items, err = actions.Refresh(ctx); err != nil {
			return items, err
		}
		meeting = findMeeting(items)
	}

	var topIDs []int64
	for _, item := range items {
		if item.Kind == KindAgendaItem {
			topIDs = append(topIDs, item.ID)
		}
	}
	sort.Slice(topIDs, func(i, j int) bool { return topIDs[i] < topIDs[j] })

	for _, id := range topIDs {
		passes = 0
		for {
			top := findByID(items, id)
			if top == nil || top.Status == StatusSentCurrent {
				break
			}
			if passes++; passes > maxPassesPerInvite {
				return items, fmt.Errorf("%w: invite %q stuck in %s after %d passes",
					ErrNotConverged, top.Title, top.Status, maxPassesPerInvite)
			}
			if err := actions.CreateOrUpdate(ctx, relabel(*top)); err != nil {
				return items, err
			}
			if items, err = actions.Refresh(ctx); err != nil {
				return items, err
			}
		}
	}

	return items, nil
}

// relabel promotes a matching draft to StaleSent so CreateOrUpdate performs
// an update that actually sends it instead of leaving the draft sitting in
// the mailbox.
func relabel(item Item) Item {
	if item.Status == StatusUnsentDraft || item.Status == StatusStaleUnsent {
		item.Status = StatusStaleSent
	}
	return item
}

func findMeeting(items []Item) *Item {
	for i := range items {
		if items[i].Kind == KindMeeting {
			return &items[i]
		}
	}
	return nil
}

func findByID(items []Item, id int64) *Item {
	for i := range items {
		if items[i].Kind == KindAgendaItem && items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
