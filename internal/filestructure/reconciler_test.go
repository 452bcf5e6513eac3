package filestructure

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/CodeIvet/patanaa/internal/graph"
	"github.com/CodeIvet/patanaa/internal/model"
)

type fakeStore struct {
	meeting *model.BoardMeeting
	items   []model.AgendaItem
	orphans []model.AgendaItem
}

func (s *fakeStore) BoardMeeting(ctx context.Context, id int64) (*model.BoardMeeting, error) {
	if s.meeting != nil && s.meeting.ID == id {
		return s.meeting, nil
	}
	return nil, nil
}

func (s *fakeStore) AgendaItems(ctx context.Context, meetingID int64) ([]model.AgendaItem, error) {
	return s.items, nil
}

func (s *fakeStore) OrphanedAgendaItems(ctx context.Context) ([]model.AgendaItem, error) {
	return s.orphans, nil
}

type folderState struct {
	name   string
	parent string
}

type fakeDrive struct {
	folders map[string]*folderState
	nextID  int
	creates int
	missing map[string]bool
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{folders: map[string]*folderState{}, missing: map[string]bool{}}
}

func (d *fakeDrive) CreateFolder(ctx context.Context, parentID, name string) (*graph.DriveItem, error) {
	d.creates++
	d.nextID++
	id := fmt.Sprintf("folder-%d", d.nextID)
	d.folders[id] = &folderState{name: name, parent: parentID}
	return &graph.DriveItem{ID: id, Name: name}, nil
}

func (d *fakeDrive) RenameOrMove(ctx context.Context, itemID, name, newParentID string) error {
	if d.missing[itemID] {
		return &graph.NotFoundError{Path: itemID}
	}
	state, ok := d.folders[itemID]
	if !ok {
		state = &folderState{}
		d.folders[itemID] = state
	}
	state.name = name
	if newParentID != "" {
		state.parent = newParentID
	}
	return nil
}

func strPtr(s string) *string { return &s }

func budgetSyncFixture() (*fakeStore, *fakeDrive, *Reconciler) {
	store := &fakeStore{
		meeting: &model.BoardMeeting{
			ID:        1,
			Title:     "Budget Sync",
			StartTime: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			TimeZone:  "UTC",
		},
		items: []model.AgendaItem{
			{ID: 10, OrderIndex: 0, Title: "Intro", DurationInMinutes: 10},
			{ID: 11, OrderIndex: 1, Title: "Finance", DurationInMinutes: 50},
		},
	}
	drive := newFakeDrive()
	r := NewReconciler(store, drive, Config{
		MeetingsRootID:     "root",
		UnassignedFolderID: "unassigned",
	})
	return store, drive, r
}

func TestEnsureFileStructureCreatesNamedTree(t *testing.T) {
	_, drive, r := budgetSyncFixture()

	result, err := r.EnsureFileStructure(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnsureFileStructure: %v", err)
	}

	meetingFolder := drive.folders[result.MeetingFolderID]
	if meetingFolder == nil {
		t.Fatal("meeting folder not created")
	}
	if meetingFolder.name != "2025-03-01 - Budget Sync" {
		t.Errorf("meeting folder name = %q", meetingFolder.name)
	}
	if meetingFolder.parent != "root" {
		t.Errorf("meeting folder parent = %q", meetingFolder.parent)
	}

	if len(result.Items) != 2 {
		t.Fatalf("got %d item folders", len(result.Items))
	}
	wantNames := []string{"01 - Intro", "02 - Finance"}
	for i, item := range result.Items {
		folder := drive.folders[item.FolderID]
		if folder == nil {
			t.Fatalf("item folder %d missing", i)
		}
		if folder.name != wantNames[i] {
			t.Errorf("item folder %d name = %q, want %q", i, folder.name, wantNames[i])
		}
		if folder.parent != result.MeetingFolderID {
			t.Errorf("item folder %d parent = %q", i, folder.parent)
		}
	}
}

func TestEnsureFileStructureIsIdempotent(t *testing.T) {
	store, drive, r := budgetSyncFixture()

	first, err := r.EnsureFileStructure(context.Background(), 1)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Persist folder ids the way the handler does.
	store.meeting.FileLocationID = strPtr(first.MeetingFolderID)
	for i, item := range first.Items {
		store.items[i].FileLocationID = strPtr(item.FolderID)
	}
	createsAfterFirst := drive.creates

	second, err := r.EnsureFileStructure(context.Background(), 1)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if drive.creates != createsAfterFirst {
		t.Errorf("second run created %d folders", drive.creates-createsAfterFirst)
	}
	if second.MeetingFolderID != first.MeetingFolderID {
		t.Errorf("meeting folder changed: %q -> %q", first.MeetingFolderID, second.MeetingFolderID)
	}
}

func TestEnsureFileStructureRelocatesOrphans(t *testing.T) {
	store, drive, r := budgetSyncFixture()
	drive.folders["orphan-folder"] = &folderState{name: "03 - Old Topic", parent: "somewhere"}
	store.orphans = []model.AgendaItem{
		{ID: 20, Title: "Old Topic", FileLocationID: strPtr("orphan-folder")},
	}

	if _, err := r.EnsureFileStructure(context.Background(), 1); err != nil {
		t.Fatalf("EnsureFileStructure: %v", err)
	}

	orphan := drive.folders["orphan-folder"]
	if orphan.parent != "unassigned" {
		t.Errorf("orphan parent = %q, want unassigned", orphan.parent)
	}
	if orphan.name != "Old Topic" {
		t.Errorf("orphan renamed to %q", orphan.name)
	}
}

func TestEnsureFileStructureSkipsMissingOrphanFolder(t *testing.T) {
	store, drive, r := budgetSyncFixture()
	drive.missing["gone-folder"] = true
	store.orphans = []model.AgendaItem{
		{ID: 20, Title: "Vanished", FileLocationID: strPtr("gone-folder")},
		{ID: 21, Title: "Still Here", FileLocationID: strPtr("other-folder")},
	}

	if _, err := r.EnsureFileStructure(context.Background(), 1); err != nil {
		t.Fatalf("missing orphan folder aborted the run: %v", err)
	}
	if drive.folders["other-folder"].parent != "unassigned" {
		t.Error("later orphan not processed after missing one")
	}
}

func TestEnsureFileStructureMissingMeetingIsFatal(t *testing.T) {
	_, _, r := budgetSyncFixture()
	if _, err := r.EnsureFileStructure(context.Background(), 999); err == nil {
		t.Fatal("expected error for unknown meeting")
	}
}

func TestSafeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Budget Sync", "Budget Sync"},
		{"Q3/Q4: Review?", "Q3_Q4_ Review_"},
		{"Übersicht für März", "Übersicht für März"},
		{"  padded  ", "padded"},
		{"aaaaaaaaaabbbbbbbbbbccccccccccddddddddddeeee", "aaaaaaaaaabbbbbbbbbbccccccccccdddddddddd"},
	}
	for _, tt := range tests {
		if got := SafeString(tt.in); got != tt.want {
			t.Errorf("SafeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestItemFolderNameZeroPads(t *testing.T) {
	item := &model.AgendaItem{OrderIndex: 0, Title: "Intro"}
	if got := ItemFolderName(item); got != "01 - Intro" {
		t.Errorf("ItemFolderName = %q", got)
	}
	item = &model.AgendaItem{OrderIndex: 9, Title: "Misc"}
	if got := ItemFolderName(item); got != "10 - Misc" {
		t.Errorf("ItemFolderName = %q", got)
	}
}
