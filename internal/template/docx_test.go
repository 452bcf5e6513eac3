package template

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func extractDocument(t *testing.T, docx []byte) string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		t.Fatalf("open rendered docx: %v", err)
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(content)
	}
	t.Fatal("word/document.xml missing from rendered docx")
	return ""
}

func TestRenderDocxSubstitutesFields(t *testing.T) {
	docx := buildDocx(t, `<w:t>{meetingTitle} at {meetingLocation}</w:t>`)

	rendered, err := RenderDocx(docx, map[string]any{
		"meetingTitle":    "Budget Sync",
		"meetingLocation": "HQ <Main>",
	})
	if err != nil {
		t.Fatalf("RenderDocx: %v", err)
	}

	doc := extractDocument(t, rendered)
	if !strings.Contains(doc, "Budget Sync at HQ &lt;Main&gt;") {
		t.Errorf("document = %q", doc)
	}
}

func TestRenderDocxExpandsLoops(t *testing.T) {
	docx := buildDocx(t, `<w:t>{#topsDetails}{i}. {agendaTitle}{#isDecision} [DECISION]{/isDecision}; {/topsDetails}</w:t>`)

	data := AgendaData{
		TopsDetails: []TopDetail{
			{I: "1", AgendaTitle: "Intro"},
			{I: "2", AgendaTitle: "Finance", IsDecision: true},
		},
	}
	rendered, err := RenderDocx(docx, data)
	if err != nil {
		t.Fatalf("RenderDocx: %v", err)
	}

	doc := extractDocument(t, rendered)
	if !strings.Contains(doc, "1. Intro; 2. Finance [DECISION]; ") {
		t.Errorf("document = %q", doc)
	}
}

func TestRenderDocxDropsFalseSections(t *testing.T) {
	docx := buildDocx(t, `<w:t>{#hasRemarks}Remarks: {remarks}{/hasRemarks}done</w:t>`)

	rendered, err := RenderDocx(docx, map[string]any{"hasRemarks": false, "remarks": "hidden"})
	if err != nil {
		t.Fatalf("RenderDocx: %v", err)
	}

	doc := extractDocument(t, rendered)
	if strings.Contains(doc, "hidden") {
		t.Errorf("false section rendered: %q", doc)
	}
	if !strings.Contains(doc, "done") {
		t.Errorf("trailing content lost: %q", doc)
	}
}

func TestRenderDocxUnclosedSectionFails(t *testing.T) {
	docx := buildDocx(t, `<w:t>{#topsDetails}{agendaTitle}</w:t>`)
	if _, err := RenderDocx(docx, AgendaData{}); err == nil {
		t.Fatal("expected error for unclosed section")
	}
}
