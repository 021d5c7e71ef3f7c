package notify

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/example/planedit/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventPDFReady emits a notification when a requested PDF build finishes.
	EventPDFReady Event = "pdf_ready"
	// EventSaveFailed emits a notification when a background save is rejected.
	EventSaveFailed Event = "save_failed"
	// EventConnection emits a notification when the server stops or resumes
	// answering liveness checks.
	EventConnection Event = "connection"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "Planedit",
		Events: map[Event]EventPreference{
			EventPDFReady:   {Template: "PDF ready: %s"},
			EventSaveFailed: {Template: "Save failed for %s"},
			EventConnection: {Template: "Server connection %s"},
		},
	}
}

// LoadPreferences reads configuration from environment variables.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("PLANEDIT_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			eventPrefs := prefs.Events[event]
			eventPrefs.Template = v
			prefs.Events[event] = eventPrefs
		}
	}
	apply("PLANEDIT_NOTIFY_PDF_READY_TEXT", EventPDFReady)
	apply("PLANEDIT_NOTIFY_SAVE_FAILED_TEXT", EventSaveFailed)
	apply("PLANEDIT_NOTIFY_CONNECTION_TEXT", EventConnection)
	return prefs
}

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// PDFReady announces a finished PDF build.
func (n *Notifier) PDFReady(fileURL string) {
	if strings.TrimSpace(fileURL) == "" {
		fileURL = "download available"
	}
	n.dispatch(EventPDFReady, fileURL, platform.Options{})
}

// SaveFailed announces a rejected background write for a marker.
func (n *Notifier) SaveFailed(markerNumber string) {
	if strings.TrimSpace(markerNumber) == "" {
		markerNumber = "marker data"
	}
	n.dispatch(EventSaveFailed, markerNumber, platform.Options{})
}

// ConnectionChanged announces a liveness state flip.
func (n *Notifier) ConnectionChanged(up bool) {
	detail := "lost"
	if up {
		detail = "restored"
	}
	n.dispatch(EventConnection, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil {
		return false
	}
	if n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := platform.Notify(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func (n *Notifier) template(event Event) string {
	if n == nil {
		return ""
	}
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}
