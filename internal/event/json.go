package event

import "encoding/json"

// Marshal renders an event to its canonical JSON broadcast form: the
// event's own fields plus a discriminating "event" key, matching the
// camelCase field names used throughout the transport wire protocol
// (spec.md §4.7, §4.8).
func Marshal(e Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["event"] = json.RawMessage(`"` + e.Name() + `"`)
	return json.Marshal(fields)
}
