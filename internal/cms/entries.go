package cms

import (
	"encoding/json"
	"strings"
)

type entriesResponse struct {
	Items    []rawEntry `json:"items"`
	Includes struct {
		Asset []rawAsset `json:"Asset"`
	} `json:"includes"`
}

type rawEntry struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type rawAsset struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Fields assetFields `json:"fields"`
}

type assetFields struct {
	File struct {
		URL string `json:"url"`
	} `json:"file"`
}

// Entries is one page of entries with their included assets indexed by id.
type Entries struct {
	Items  []Entry
	assets map[string]string
}

type Entry struct {
	ID     string
	Fields map[string]json.RawMessage
}

func (r entriesResponse) resolve() *Entries {
	out := &Entries{
		Items:  make([]Entry, 0, len(r.Items)),
		assets: make(map[string]string, len(r.Includes.Asset)),
	}
	for _, a := range r.Includes.Asset {
		if a.Fields.File.URL != "" {
			out.assets[a.Sys.ID] = a.Fields.File.URL
		}
	}
	for _, item := range r.Items {
		out.Items = append(out.Items, Entry{ID: item.Sys.ID, Fields: item.Fields})
	}
	return out
}

// First returns the first entry, if any.
func (e *Entries) First() (Entry, bool) {
	if e == nil || len(e.Items) == 0 {
		return Entry{}, false
	}
	return e.Items[0], true
}

// Text returns a text field. Rich text documents are flattened to one line
// per top-level node. Missing or non-text fields yield "".
func (en Entry) Text(field string) string {
	raw, ok := en.Fields[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var doc richText
	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc.text()
	}
	return ""
}

// List returns a string list field.
func (en Entry) List(field string) []string {
	raw, ok := en.Fields[field]
	if !ok {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// ImageURL resolves an asset field, either a link into the included assets
// or an inline asset. Protocol-relative URLs get an https scheme.
func (e *Entries) ImageURL(en Entry, field string) string {
	raw, ok := en.Fields[field]
	if !ok {
		return ""
	}
	var ref struct {
		Sys struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"sys"`
		Fields assetFields `json:"fields"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return ""
	}
	u := ref.Fields.File.URL
	if u == "" && ref.Sys.Type == "Link" && e != nil {
		u = e.assets[ref.Sys.ID]
	}
	return absoluteURL(u)
}

func absoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

type richText struct {
	NodeType string `json:"nodeType"`
	Content  []struct {
		Content []struct {
			Value string `json:"value"`
		} `json:"content"`
	} `json:"content"`
}

func (r richText) text() string {
	if r.NodeType != "document" {
		return ""
	}
	lines := make([]string, 0, len(r.Content))
	for _, node := range r.Content {
		var b strings.Builder
		for _, child := range node.Content {
			b.WriteString(child.Value)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
