package orderstatus

import (
	"errors"
	"fmt"
)

// Status values as stored in porudzbine.status_porudzbine.
const (
	Nova       = "nova"
	UObradi    = "u_obradi"
	Poslata    = "poslata"
	Isporucena = "isporucena"
	Otkazana   = "otkazana"
)

var (
	ErrUnknownStatus = errors.New("unknown order status")
	ErrTerminal      = errors.New("order status is terminal")
)

func All() []string {
	return []string{Nova, UObradi, Poslata, Isporucena, Otkazana}
}

func Valid(status string) bool {
	switch status {
	case Nova, UObradi, Poslata, Isporucena, Otkazana:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted out of status.
func Terminal(status string) bool {
	return status == Isporucena || status == Otkazana
}

// Transition validates an admin-requested status change. Every transition
// between non-terminal recognized statuses is allowed; the sequencing is
// admin discretion, not a fixed path. Terminal statuses reject everything.
func Transition(from, to string) error {
	if !Valid(to) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !Valid(from) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if Terminal(from) {
		return fmt.Errorf("%w: %q", ErrTerminal, from)
	}
	return nil
}

// Label returns the display name used by the dashboard and CSV exports.
func Label(status string) string {
	switch status {
	case Nova:
		return "Nova"
	case UObradi:
		return "U obradi"
	case Poslata:
		return "Poslata"
	case Isporucena:
		return "Isporučena"
	case Otkazana:
		return "Otkazana"
	}
	return status
}
