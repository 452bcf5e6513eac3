package filestructure

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/model"
)

// Store loads the records the reconciler works on.
type Store interface {
	BoardMeeting(ctx context.Context, id int64) (*model.BoardMeeting, error)
	AgendaItems(ctx context.Context, meetingID int64) ([]model.AgendaItem, error)
	OrphanedAgendaItems(ctx context.Context) ([]model.AgendaItem, error)
}

// Drive is the folder surface the reconciler needs.
type Drive interface {
	CreateFolder(ctx context.Context, parentID, name string) (*graph.DriveItem, error)
	RenameOrMove(ctx context.Context, itemID, name, newParentID string) error
}

// Config identifies the well-known folders.
type Config struct {
	MeetingsRootID     string
	UnassignedFolderID string
}

// ItemFolder pairs an agenda item with its ensured folder.
type ItemFolder struct {
	ID       int64
	Title    string
	FolderID string
}

// Result is what the caller persists after a reconciliation run.
type Result struct {
	MeetingFolderID string
	Items           []ItemFolder
}

// Reconciler drives the SharePoint folder tree towards the agenda state. It
// never writes to the store; the caller persists the returned folder ids.
type Reconciler struct {
	store Store
	drive Drive
	cfg   Config
}

func NewReconciler(store Store, drive Drive, cfg Config) *Reconciler {
	return &Reconciler{store: store, drive: drive, cfg: cfg}
}

// UnassignedFolderID exposes the pool folder for callers relocating item
// folders outside a full reconciliation run.
func (r *Reconciler) UnassignedFolderID() string {
	return r.cfg.UnassignedFolderID
}

var unsafeChars = regexp.MustCompile(`[^0-9A-Za-z_\s\-äöüÄÖÜß.]`)

// SafeString truncates to 40 runes and replaces characters SharePoint folder
// names cannot carry. German umlauts pass through.
func SafeString(s string) string {
	runes := []rune(s)
	if len(runes) > 40 {
		runes = runes[:40]
	}
	return strings.TrimSpace(unsafeChars.ReplaceAllString(string(runes), "_"))
}

// MeetingFolderName is "yyyy-MM-dd - <safe title>" in the meeting's zone.
func MeetingFolderName(meeting *model.BoardMeeting) string {
	return meeting.StartInZone().Format("2006-01-02") + " - " + SafeString(meeting.Title)
}

// ItemFolderName is "NN - <safe title>" with the 1-based position zero-padded.
func ItemFolderName(item *model.AgendaItem) string {
	return fmt.Sprintf("%02d - %s", item.OrderIndex+1, SafeString(item.Title))
}

// EnsureFileStructure creates or renames the meeting folder, the per-item
// folders beneath it, and relocates orphaned item folders to the unassigned
// pool. Idempotent: a second run against an unchanged agenda performs only
// renames to names already in place.
func (r *Reconciler) EnsureFileStructure(ctx context.Context, boardMeetingID int64) (*Result, error) {
	meeting, err := r.store.BoardMeeting(ctx, boardMeetingID)
	if err != nil {
		return nil, fmt.Errorf("load board meeting %d: %w", boardMeetingID, err)
	}
	if meeting == nil {
		return nil, fmt.Errorf("no board meeting found")
	}

	items, err := r.store.AgendaItems(ctx, boardMeetingID)
	if err != nil {
		return nil, fmt.Errorf("load agenda items: %w", err)
	}
	model.ApplyStartTimes(meeting.StartTime, items)

	orphans, err := r.store.OrphanedAgendaItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orphaned agenda items: %w", err)
	}

	// 1. Meeting folder
	meetingFolderID := ""
	meetingFolderName := MeetingFolderName(meeting)
	if meeting.FileLocationID == nil || *meeting.FileLocationID == "" {
		folder, err := r.drive.CreateFolder(ctx, r.cfg.MeetingsRootID, meetingFolderName)
		if err != nil {
			return nil, fmt.Errorf("create meeting folder: %w", err)
		}
		meetingFolderID = folder.ID
	} else {
		meetingFolderID = *meeting.FileLocationID
		if err := r.drive.RenameOrMove(ctx, meetingFolderID, meetingFolderName, ""); err != nil {
			return nil, fmt.Errorf("rename meeting folder: %w", err)
		}
	}

	// 2. Agenda item folders, moved under the meeting folder as they are
	// renamed so re-assigned items follow their meeting.
	result := &Result{MeetingFolderID: meetingFolderID}
	for i := range items {
		item := &items[i]
		folderName := ItemFolderName(item)
		folderID := ""
		if item.FileLocationID == nil || *item.FileLocationID == "" {
			folder, err := r.drive.CreateFolder(ctx, meetingFolderID, folderName)
			if err != nil {
				return nil, fmt.Errorf("create folder for agenda item %d: %w", item.ID, err)
			}
			folderID = folder.ID
		} else {
			folderID = *item.FileLocationID
			if err := r.drive.RenameOrMove(ctx, folderID, folderName, meetingFolderID); err != nil {
				return nil, fmt.Errorf("rename folder for agenda item %d: %w", item.ID, err)
			}
		}
		result.Items = append(result.Items, ItemFolder{ID: item.ID, Title: item.Title, FolderID: folderID})
	}

	// 3. Orphaned item folders go back to the unassigned pool. A folder that
	// is already gone or fails to move does not abort the run.
	for i := range orphans {
		orphan := &orphans[i]
		if orphan.FileLocationID == nil || *orphan.FileLocationID == "" {
			continue
		}
		err := r.drive.RenameOrMove(ctx, *orphan.FileLocationID, SafeString(orphan.Title), r.cfg.UnassignedFolderID)
		if graph.IsNotFound(err) {
			log.Printf("orphaned agenda item folder not found: %s (%s)", orphan.Title, *orphan.FileLocationID)
			continue
		}
		if err != nil {
			log.Printf("failed to move orphaned agenda item folder: %s (%s): %v", orphan.Title, *orphan.FileLocationID, err)
		}
	}

	return result, nil
}
