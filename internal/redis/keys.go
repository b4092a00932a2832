package redisx

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "eventra:v1"

func KeyEvent(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s", ns, eventID)
}

func KeyUpcomingEvents() string {
	return ns + ":events:upcoming"
}

func KeyAllEvents() string {
	return ns + ":events:all"
}

func KeySession(token string) string {
	return fmt.Sprintf("%s:session:%s", ns, token)
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func ChannelEventsChanged() string {
	return ns + ":events:changed"
}
