package models

import "encoding/json"

// Document is one record of a page corpus (one JSON object per line).
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// UnmarshalJSON accepts numeric and string page ids.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Title string          `json:"title"`
		URL   string          `json:"url"`
		Body  string          `json:"body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Title, d.URL, d.Body = raw.Title, raw.URL, raw.Body
	d.ID = ""
	if len(raw.ID) == 0 || string(raw.ID) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.ID, &s); err == nil {
		d.ID = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.ID, &n); err != nil {
		return err
	}
	d.ID = n.String()
	return nil
}

// Request converts the document into a pipeline request.
func (d Document) Request() ParseRequest {
	return ParseRequest{ID: d.ID, Title: d.Title, URL: d.URL, Body: d.Body}
}
