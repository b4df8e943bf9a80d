package darkroom

import "encoding/json"

// JSON column codec: array and map valued fields are serialized to text
// before storage and deserialized on every read. Decode failures never fail
// the read path; malformed stored text falls back to the empty value.

func encodeStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeStrings(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func encodeStringMap(v map[string]string) string {
	if v == nil {
		v = map[string]string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func decodeStringMap(s string) map[string]string {
	var out map[string]string
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return map[string]string{}
	}
	return out
}

// Boolean columns are stored as 0/1 integers.

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
