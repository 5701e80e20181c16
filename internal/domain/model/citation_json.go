package model

import (
	"encoding/json"
	"fmt"
)

// knownCitationFields lists the JSON keys mapped onto Citation struct fields.
var knownCitationFields = []string{"title", "url", "content", "filepath", "chunk_id"}

// UnmarshalJSON decodes a citation, keeping unrecognised keys in Extra.
func (c *Citation) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode citation: %w", err)
	}

	targets := map[string]*string{
		"title":    &c.Title,
		"url":      &c.URL,
		"content":  &c.Content,
		"filepath": &c.FilePath,
		"chunk_id": &c.ChunkID,
	}
	for key, dst := range targets {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		delete(fields, key)
		if string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode citation field %q: %w", key, err)
		}
	}

	c.Extra = nil
	if len(fields) > 0 {
		c.Extra = fields
	}
	return nil
}

// MarshalJSON encodes the citation with its passthrough fields. Interpreted
// fields win over an Extra entry of the same name.
func (c Citation) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+len(knownCitationFields))
	for k, v := range c.Extra {
		out[k] = v
	}
	out["title"] = c.Title
	out["url"] = c.URL
	out["content"] = c.Content
	if c.FilePath != "" {
		out["filepath"] = c.FilePath
	}
	if c.ChunkID != "" {
		out["chunk_id"] = c.ChunkID
	}
	return json.Marshal(out)
}
