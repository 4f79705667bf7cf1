package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAttachment = errors.New("attachment must be base64 or a base64 data URL")

// Attachment is an opaque binary blob. On the wire and in the database it is
// a base64 data URL ("data:image/png;base64,...") or bare base64.
type Attachment struct {
	ContentType string
	Data        []byte
}

func ParseAttachment(raw string) (Attachment, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Attachment{}, nil
	}
	contentType := ""
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		header, body, ok := strings.Cut(raw[len("data:"):], ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return Attachment{}, ErrInvalidAttachment
		}
		contentType = strings.TrimSuffix(header, ";base64")
		payload = body
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return Attachment{}, ErrInvalidAttachment
		}
	}
	return Attachment{ContentType: contentType, Data: data}, nil
}

func (a Attachment) IsZero() bool {
	return len(a.Data) == 0
}

func (a Attachment) Size() int {
	return len(a.Data)
}

func (a Attachment) String() string {
	if a.IsZero() {
		return ""
	}
	encoded := base64.StdEncoding.EncodeToString(a.Data)
	if a.ContentType == "" {
		return encoded
	}
	return "data:" + a.ContentType + ";base64," + encoded
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	if a.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Attachment{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidAttachment
	}
	parsed, err := ParseAttachment(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Attachment) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	return a.String(), nil
}

func (a *Attachment) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Attachment{}
		return nil
	case string:
		parsed, err := ParseAttachment(v)
		*a = parsed
		return err
	case []byte:
		parsed, err := ParseAttachment(string(v))
		*a = parsed
		return err
	default:
		return fmt.Errorf("cannot scan %T into Attachment", src)
	}
}

// Attachments is stored as a JSON array of data URLs.
type Attachments []Attachment

// Count returns the number of non-empty attachments.
func (as Attachments) Count() int {
	n := 0
	for _, a := range as {
		if !a.IsZero() {
			n++
		}
	}
	return n
}

// Largest returns the size of the biggest attachment.
func (as Attachments) Largest() int {
	largest := 0
	for _, a := range as {
		if a.Size() > largest {
			largest = a.Size()
		}
	}
	return largest
}

func (as Attachments) Value() (driver.Value, error) {
	if as == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal([]Attachment(as))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func (as *Attachments) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*as = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Attachments", src)
	}
	var out []Attachment
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*as = out
	return nil
}
