package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DriveClient performs drive-item operations against a single SharePoint
// drive.
type DriveClient struct {
	c       *Client
	driveID string
}

// NewDriveClient creates a client bound to one drive.
func NewDriveClient(c *Client, driveID string) *DriveClient {
	return &DriveClient{c: c, driveID: driveID}
}

// DriveItem is the subset of drive-item fields this service reads.
type DriveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
}

func (d *DriveClient) itemPath(itemID string) string {
	return "/drives/" + url.PathEscape(d.driveID) + "/items/" + url.PathEscape(itemID)
}

// CreateFolder creates a folder under a parent. Name collisions are resolved
// by Graph appending a numeric suffix, never by merging into an existing
// folder.
func (d *DriveClient) CreateFolder(ctx context.Context, parentID, name string) (*DriveItem, error) {
	payload := map[string]any{
		"name":                              name,
		"folder":                            map[string]any{},
		"@microsoft.graph.conflictBehavior": "rename",
	}
	var item DriveItem
	if err := d.c.do(ctx, http.MethodPost, d.itemPath(parentID)+"/children", nil, payload, &item); err != nil {
		return nil, fmt.Errorf("create folder %q: %w", name, err)
	}
	return &item, nil
}

// RenameOrMove renames an item and, when newParentID is non-empty, moves it
// under the new parent in the same call.
func (d *DriveClient) RenameOrMove(ctx context.Context, itemID, name, newParentID string) error {
	payload := map[string]any{
		"name":                              name,
		"@microsoft.graph.conflictBehavior": "rename",
	}
	if newParentID != "" {
		payload["parentReference"] = map[string]any{"id": newParentID}
	}
	return d.c.do(ctx, http.MethodPatch, d.itemPath(itemID), nil, payload, nil)
}

// Delete removes an item.
func (d *DriveClient) Delete(ctx context.Context, itemID string) error {
	return d.c.do(ctx, http.MethodDelete, d.itemPath(itemID), nil, nil, nil)
}

// GetLink returns the item's web URL.
func (d *DriveClient) GetLink(ctx context.Context, itemID string) (string, error) {
	var item DriveItem
	query := url.Values{"$select": {"webUrl"}}
	if err := d.c.do(ctx, http.MethodGet, d.itemPath(itemID), query, nil, &item); err != nil {
		return "", err
	}
	return item.WebURL, nil
}

// FetchContent downloads an item's content.
func (d *DriveClient) FetchContent(ctx context.Context, itemID string) ([]byte, error) {
	var body []byte
	if err := d.c.do(ctx, http.MethodGet, d.itemPath(itemID)+"/content", nil, nil, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// UploadContent uploads a file into a parent folder, replacing an existing
// file of the same name, and returns the new item's id.
func (d *DriveClient) UploadContent(ctx context.Context, parentID, name string, content []byte) (string, error) {
	path := d.itemPath(parentID) + ":/" + url.PathEscape(name) + ":/content"
	var item DriveItem
	if err := d.c.do(ctx, http.MethodPut, path, nil, content, &item); err != nil {
		return "", fmt.Errorf("upload %q: %w", name, err)
	}
	return item.ID, nil
}

// ConvertToPDF downloads an item converted to PDF.
func (d *DriveClient) ConvertToPDF(ctx context.Context, itemID string) ([]byte, error) {
	query := url.Values{"format": {"pdf"}}
	var body []byte
	if err := d.c.do(ctx, http.MethodGet, d.itemPath(itemID)+"/content", query, nil, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// ListChildren lists a folder's children.
func (d *DriveClient) ListChildren(ctx context.Context, folderID string) ([]DriveItem, error) {
	var result struct {
		Value []DriveItem `json:"value"`
	}
	if err := d.c.do(ctx, http.MethodGet, d.itemPath(folderID)+"/children", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Value, nil
}

// CreateLinkFile writes an internet-shortcut file pointing at target into a
// folder.
func (d *DriveClient) CreateLinkFile(ctx context.Context, folderID, name, target string) error {
	if !strings.HasSuffix(name, ".url") {
		name += ".url"
	}
	content := []byte("[InternetShortcut]\r\nURL=" + target + "\r\n")
	_, err := d.UploadContent(ctx, folderID, name, content)
	return err
}

// DeleteLinkFiles removes every .url child of a folder.
func (d *DriveClient) DeleteLinkFiles(ctx context.Context, folderID string) error {
	children, err := d.ListChildren(ctx, folderID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if !strings.HasSuffix(child.Name, ".url") {
			continue
		}
		if err := d.Delete(ctx, child.ID); err != nil && !IsNotFound(err) {
			return err
		}
	}
	return nil
}
