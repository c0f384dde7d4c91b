package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ChoiceRecord maps question id to the selected choice index.
type ChoiceRecord map[string]int

// Clone returns an independent copy; a nil record clones to an empty one.
func (c ChoiceRecord) Clone() ChoiceRecord {
	out := make(ChoiceRecord, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// UnmarshalJSON accepts integer values and, for documents written by older
// tooling, integers encoded as strings ("1").
func (c *ChoiceRecord) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = ChoiceRecord{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := make(ChoiceRecord, len(raw))
	for questionID, value := range raw {
		var (
			idx int64
			err error
		)
		switch v := value.(type) {
		case json.Number:
			idx, err = v.Int64()
		case string:
			idx, err = strconv.ParseInt(v, 10, 0)
		default:
			err = fmt.Errorf("unexpected %T", value)
		}
		if err != nil {
			return fmt.Errorf("choice for %q: %w", questionID, err)
		}
		out[questionID] = int(idx)
	}
	*c = out
	return nil
}

// UserDirectory is the username to ChoiceRecord mapping with explicit
// iteration order. Order follows first insertion; replacing an entry keeps
// its position.
type UserDirectory struct {
	entries []UserEntry
	index   map[string]int
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{index: make(map[string]int)}
}

func (d *UserDirectory) Len() int { return len(d.entries) }

// Get returns the stored record for username.
func (d *UserDirectory) Get(username string) (ChoiceRecord, bool) {
	i, ok := d.index[username]
	if !ok {
		return nil, false
	}
	return d.entries[i].Choices, true
}

// Set replaces the whole record for username.
func (d *UserDirectory) Set(username string, choices ChoiceRecord) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if choices == nil {
		choices = ChoiceRecord{}
	}
	if i, ok := d.index[username]; ok {
		d.entries[i].Choices = choices
		return
	}
	d.index[username] = len(d.entries)
	d.entries = append(d.entries, UserEntry{Username: username, Choices: choices})
}

// Entries returns the entries in directory order. The slice is a copy.
func (d *UserDirectory) Entries() []UserEntry {
	out := make([]UserEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Clone deep-copies the directory.
func (d *UserDirectory) Clone() *UserDirectory {
	out := NewUserDirectory()
	for _, e := range d.entries {
		out.Set(e.Username, e.Choices.Clone())
	}
	return out
}

// MarshalJSON writes the directory as a JSON object in directory order.
func (d *UserDirectory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Username)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Choices)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order of the document.
// A repeated key replaces the earlier value but keeps its position.
func (d *UserDirectory) UnmarshalJSON(data []byte) error {
	fresh := NewUserDirectory()
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = *fresh
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		username, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected username key, got %v", tok)
		}
		var choices ChoiceRecord
		if err := dec.Decode(&choices); err != nil {
			return fmt.Errorf("user %q: %w", username, err)
		}
		fresh.Set(username, choices)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = *fresh
	return nil
}
