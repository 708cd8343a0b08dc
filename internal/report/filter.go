package report

import (
	"regexp"

	"github.com/good-yellow-bee/wtc/internal/models"
)

// MatchContact reports whether a notification's contact matches re.
// Notifications without a contact never match. A nil re matches any
// present contact.
func MatchContact(re *regexp.Regexp, n *models.Notification) bool {
	contact, ok := n.Contact()
	if !ok {
		return false
	}
	if re == nil {
		return true
	}
	return re.MatchString(contact)
}

// Select walks notifs in order and returns at most limit notifications
// whose contact matches re. Scanning stops once limit is reached.
func Select(notifs []*models.Notification, re *regexp.Regexp, limit int) []*models.Notification {
	selected := make([]*models.Notification, 0, min(limit, len(notifs)))
	for _, n := range notifs {
		if len(selected) >= limit {
			break
		}
		if !MatchContact(re, n) {
			continue
		}
		selected = append(selected, n)
	}
	return selected
}
