// Package models contains the core data structures for wtc.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// State codes reported by Icinga in notification_state.
const (
	StateOK       State = "0"
	StateWarning  State = "1"
	StateCritical State = "2"
	StateUnknown  State = "3"
)

// Notification is a single alert event listed by a monitoring instance.
type Notification struct {
	// HostName is the monitored host.
	HostName string `json:"host_name"`

	// ServiceDescription is the service object name. Nil for host notifications.
	ServiceDescription *string `json:"service_description"`

	// ServiceDisplayName is the human readable service name.
	ServiceDisplayName string `json:"service_display_name"`

	// Timestamp is when the notification was sent.
	Timestamp Timestamp `json:"notification_timestamp"`

	// State is the check state code at notification time.
	State State `json:"notification_state"`

	// ContactName is the notified contact. Nil when no contact was recorded.
	ContactName *string `json:"notification_contact_name"`

	// Instance is the base URL the notification was fetched from.
	Instance string `json:"instance"`

	// URL links to the host or service in the instance's web UI.
	URL string `json:"url"`
}

// IsHostNotification reports whether the notification has no service.
func (n *Notification) IsHostNotification() bool {
	return n.ServiceDescription == nil
}

// Contact returns the contact name and whether one is present.
func (n *Notification) Contact() (string, bool) {
	if n.ContactName == nil {
		return "", false
	}
	return *n.ContactName, true
}

// Time returns the notification timestamp as local time.
func (n *Notification) Time() time.Time {
	return time.Unix(int64(n.Timestamp), 0)
}

// Decorate records the source instance and sets the deep link URL.
func (n *Notification) Decorate(instance string) {
	n.Instance = instance
	var service string
	if n.ServiceDescription != nil {
		service = *n.ServiceDescription
	}
	n.URL = NotificationURL(instance, n.HostName, service, n.ServiceDescription != nil)
}

// NotificationURL builds the web UI link for a host or, when hasService is
// true, for one of its services. Host and service are inserted as given.
func NotificationURL(instance, host, service string, hasService bool) string {
	instance = strings.TrimSuffix(instance, "/")
	if !hasService {
		return fmt.Sprintf("%s/dashboard#!/monitoring/host/show?host=%s", instance, host)
	}
	return fmt.Sprintf("%s/dashboard#!/monitoring/service/show?host=%s&service=%s", instance, host, service)
}

// Timestamp is a Unix time in seconds. Icinga Web encodes it either as a
// JSON number or as a numeric string.
type Timestamp int64

// UnmarshalJSON accepts numbers, numeric strings and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*t = 0
		return nil
	}
	s := strings.Trim(string(raw), `"`)
	if s == "" {
		*t = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = Timestamp(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", raw)
	}
	*t = Timestamp(int64(v))
	return nil
}

// State is a notification state code kept in its string form, so codes
// outside the known range survive unchanged.
type State string

// UnmarshalJSON accepts strings, numbers and null.
func (s *State) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*s = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*s = State(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("invalid state %s", raw)
	}
	*s = State(n.String())
	return nil
}
