package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Room documents have been written by several clients over time, so
// timestamps show up as RFC3339 strings, {seconds, nanoseconds} objects
// (with or without a leading underscore), epoch milliseconds or null.
// Everything is converted to RFC3339Nano UTC before the document reaches
// the domain types.

type epochObject struct {
	Seconds      *int64 `json:"seconds"`
	Nanoseconds  int64  `json:"nanoseconds"`
	USeconds     *int64 `json:"_seconds"`
	UNanoseconds int64  `json:"_nanoseconds"`
}

// ParseInstant decodes one timestamp in any known shape. ok is false for
// null or empty values.
func ParseInstant(raw json.RawMessage) (t time.Time, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false, err
		}
		if s == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000", "2006-01-02 15:04:05"} {
			if parsed, perr := time.Parse(layout, s); perr == nil {
				return parsed.UTC(), true, nil
			}
		}
		if ms, perr := strconv.ParseInt(s, 10, 64); perr == nil {
			return time.UnixMilli(ms).UTC(), true, nil
		}
		return time.Time{}, false, fmt.Errorf("unrecognised timestamp %q", s)
	case '{':
		var obj epochObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return time.Time{}, false, err
		}
		switch {
		case obj.Seconds != nil:
			return time.Unix(*obj.Seconds, obj.Nanoseconds).UTC(), true, nil
		case obj.USeconds != nil:
			return time.Unix(*obj.USeconds, obj.UNanoseconds).UTC(), true, nil
		}
		return time.Time{}, false, fmt.Errorf("timestamp object without seconds: %s", raw)
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return time.Time{}, false, fmt.Errorf("unrecognised timestamp %s", raw)
		}
		sec, frac := math.Modf(f / 1000)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true, nil
	}
}

var roomTimeKeys = []string{"createdAt", "updatedAt", "finishedAt"}

// normalizeRoomDocument rewrites every timestamp of a stored room document
// to RFC3339Nano.
func normalizeRoomDocument(doc []byte) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decode room document: %w", err)
	}
	for _, k := range roomTimeKeys {
		if err := normalizeKey(m, k); err != nil {
			return nil, fmt.Errorf("room %s: %w", k, err)
		}
	}
	if rawLog, ok := m["battleLog"]; ok && !bytes.Equal(bytes.TrimSpace(rawLog), []byte("null")) {
		var entries []map[string]json.RawMessage
		if err := json.Unmarshal(rawLog, &entries); err != nil {
			return nil, fmt.Errorf("decode battle log: %w", err)
		}
		for _, e := range entries {
			if err := normalizeKey(e, "em"); err != nil {
				return nil, fmt.Errorf("battle log: %w", err)
			}
		}
		b, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		m["battleLog"] = b
	}
	return json.Marshal(m)
}

func normalizeKey(m map[string]json.RawMessage, key string) error {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	t, present, err := ParseInstant(raw)
	if err != nil {
		return err
	}
	if !present {
		delete(m, key)
		return nil
	}
	b, err := json.Marshal(t.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	m[key] = b
	return nil
}
