// Package notify manages the automatic-notification configuration, the
// threshold gate and the background alert watcher. Actual delivery is an
// external collaborator; this package decides, it never sends.
package notify

import "github.com/osalazarm/alertview/internal/datastore/entities"

// ShouldNotify reports whether an alert at the given rule level crosses
// the configured notification threshold. Pure: no side effects.
func ShouldNotify(alertLevel int, config *entities.NotificationConfig) bool {
	if config == nil || !config.Enabled {
		return false
	}
	return alertLevel >= config.AlertThreshold
}
