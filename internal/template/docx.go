package template

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// RenderDocx fills a DOCX template with data. Supported tags inside
// word/document.xml: {field} substitution, {#list}...{/list} repeated per
// element, {#flag}...{/flag} kept or dropped for booleans. data is any
// JSON-marshalable value; field names follow its JSON keys.
func RenderDocx(templateDocx []byte, data any) ([]byte, error) {
	scope, err := toScope(data)
	if err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(bytes.NewReader(templateDocx), int64(len(templateDocx)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	var out bytes.Buffer
	writer := zip.NewWriter(&out)
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}

		if file.Name == "word/document.xml" {
			rendered, err := renderXML(string(content), []map[string]any{scope})
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", file.Name, err)
			}
			content = []byte(rendered)
		}

		w, err := writer.CreateHeader(&zip.FileHeader{
			Name:   file.Name,
			Method: file.Method,
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(content); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func toScope(data any) (map[string]any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var scope map[string]any
	if err := json.Unmarshal(encoded, &scope); err != nil {
		return nil, err
	}
	return scope, nil
}

// renderXML walks the document once, expanding sections and substituting
// fields. scopes is the lookup chain, innermost last.
func renderXML(doc string, scopes []map[string]any) (string, error) {
	var out strings.Builder

	for {
		open := strings.Index(doc, "{")
		if open < 0 {
			out.WriteString(doc)
			return out.String(), nil
		}
		end := strings.Index(doc[open:], "}")
		if end < 0 {
			out.WriteString(doc)
			return out.String(), nil
		}
		end += open

		out.WriteString(doc[:open])
		tag := doc[open+1 : end]
		rest := doc[end+1:]

		switch {
		case strings.HasPrefix(tag, "#"):
			name := tag[1:]
			body, after, err := splitSection(rest, name)
			if err != nil {
				return "", err
			}
			value := lookup(scopes, name)
			switch v := value.(type) {
			case []any:
				for _, element := range v {
					inner := scopes
					if m, ok := element.(map[string]any); ok {
						inner = append(append([]map[string]any{}, scopes...), m)
					}
					rendered, err := renderXML(body, inner)
					if err != nil {
						return "", err
					}
					out.WriteString(rendered)
				}
			case bool:
				if v {
					rendered, err := renderXML(body, scopes)
					if err != nil {
						return "", err
					}
					out.WriteString(rendered)
				}
			case nil:
				// absent section renders nothing
			default:
				rendered, err := renderXML(body, scopes)
				if err != nil {
					return "", err
				}
				out.WriteString(rendered)
			}
			doc = after

		case strings.HasPrefix(tag, "/"):
			return "", fmt.Errorf("unmatched closing tag {%s}", tag)

		default:
			out.WriteString(escapeXML(stringify(lookup(scopes, tag))))
			doc = rest
		}
	}
}

// splitSection finds the matching {/name} for an opened section, honoring
// nesting of sections with the same name.
func splitSection(doc, name string) (body, after string, err error) {
	openTag := "{#" + name + "}"
	closeTag := "{/" + name + "}"
	depth := 1
	pos := 0
	for {
		nextOpen := strings.Index(doc[pos:], openTag)
		nextClose := strings.Index(doc[pos:], closeTag)
		if nextClose < 0 {
			return "", "", fmt.Errorf("section {#%s} is never closed", name)
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			pos += nextOpen + len(openTag)
			continue
		}
		depth--
		if depth == 0 {
			end := pos + nextClose
			return doc[:end], doc[end+len(closeTag):], nil
		}
		pos += nextClose + len(closeTag)
	}
}

func lookup(scopes []map[string]any, name string) any {
	for i := len(scopes) - 1; i >= 0; i-- {
		if value, ok := scopes[i][name]; ok {
			return value
		}
	}
	return nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
