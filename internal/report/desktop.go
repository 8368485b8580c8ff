package report

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/ncruces/zenity"
)

func body(s Summary) string {
	lines := []string{s.Message()}
	lines = append(lines, s.Notes...)
	if n := len(s.Failures); n > 0 {
		lines = append(lines, fmt.Sprintf("%d text items could not be changed.", n))
	}
	return strings.Join(lines, "\n")
}

// Dialog shows the summary in a native message box, the way the
// Illustrator scripts end with alert().
type Dialog struct{}

func (Dialog) Report(s Summary) error {
	title := zenity.Title("framekit: " + s.File)
	if len(s.Failures) > 0 {
		return zenity.Warning(body(s), title)
	}
	return zenity.Info(body(s), title, zenity.InfoIcon)
}

// Notify sends the summary as a desktop notification.
type Notify struct{}

func (Notify) Report(s Summary) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	urgency := byte(1)
	if len(s.Failures) > 0 {
		urgency = 2
	}
	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(urgency),
		"category": dbus.MakeVariant("transfer.complete"),
	}

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"framekit",
		uint32(0),
		"document-edit",
		fmt.Sprintf("framekit %s: %s", s.Action, s.File),
		body(s),
		[]string{},
		hints,
		int32(-1),
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}
