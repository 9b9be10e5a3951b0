package v1

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// UnknownVersion is the version of a device whose OS version string does not
// start with a major.minor number.
const UnknownVersion = "Unknown"

var versionPrefix = regexp.MustCompile(`^[0-9]+\.[0-9]+`)

// VersionPrefix returns the major.minor prefix of a raw OS version string,
// e.g. "14.1" for "14.1-20240101-NIGHTLY-bacon".
func VersionPrefix(osVersion string) string {
	if v := versionPrefix.FindString(strings.TrimSpace(osVersion)); v != "" {
		return v
	}
	return UnknownVersion
}

// Submission is the JSON body a device posts to the ingestion endpoint.
// Field names are kept compatible with deployed clients.
type Submission struct {
	DeviceHash      string    `json:"device_hash"`
	DeviceName      string    `json:"device_name"`
	DeviceVersion   string    `json:"device_version"`
	DeviceCountry   string    `json:"device_country"`
	DeviceCarrier   string    `json:"device_carrier"`
	DeviceCarrierID string    `json:"device_carrier_id"`
	SubmittedAt     time.Time `json:"submitted_at,omitempty"`
}

// Event is one accepted stats submission. Events are append-only and only
// removed by the retention sweep.
type Event struct {
	// ID is assigned on ingestion.
	ID string `json:"id"`

	// DeviceID is the client supplied device hash. It is the reconciliation
	// key for DeviceState.
	DeviceID string `json:"device_id"`

	Model     string `json:"model"`
	OSVersion string `json:"os_version"`

	// Country is an upper-case ISO 3166-1 alpha-2 code or UnknownCountry.
	Country   string `json:"country"`
	Carrier   string `json:"carrier"`
	CarrierID string `json:"carrier_id"`

	// SubmittedAt is the event time used for last-write-wins ordering.
	// Defaults to the ingestion time.
	SubmittedAt time.Time `json:"submitted_at"`
}

// ValidationError reports a malformed submission. Nothing is persisted for
// a submission that fails validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ToEvent validates the submission and converts it into an Event. The
// country is normalized and a zero SubmittedAt is replaced with now.
func (s *Submission) ToEvent(now time.Time) (*Event, error) {
	required := []struct {
		field string
		value string
	}{
		{"device_hash", s.DeviceHash},
		{"device_name", s.DeviceName},
		{"device_version", s.DeviceVersion},
		{"device_country", s.DeviceCountry},
		{"device_carrier", s.DeviceCarrier},
		{"device_carrier_id", s.DeviceCarrierID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, &ValidationError{Field: r.field, Message: "is required"}
		}
	}

	submittedAt := s.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = now
	}

	return &Event{
		DeviceID:    strings.TrimSpace(s.DeviceHash),
		Model:       strings.TrimSpace(s.DeviceName),
		OSVersion:   strings.TrimSpace(s.DeviceVersion),
		Country:     NormalizeCountry(s.DeviceCountry),
		Carrier:     strings.TrimSpace(s.DeviceCarrier),
		CarrierID:   strings.TrimSpace(s.DeviceCarrierID),
		SubmittedAt: submittedAt.UTC(),
	}, nil
}

// DeviceState is the most recently seen attributes of one device.
// LastSeen never moves backwards for a given DeviceID.
type DeviceState struct {
	DeviceID  string `json:"device_id"`
	Model     string `json:"model"`
	OSVersion string `json:"os_version"`

	// Version is the major.minor prefix of OSVersion. It is the value
	// grouped by the version dimension.
	Version   string    `json:"version"`
	Country   string    `json:"country"`
	Carrier   string    `json:"carrier"`
	CarrierID string    `json:"carrier_id"`
	LastSeen  time.Time `json:"last_seen"`
}

// StateFromEvent projects an event onto the device state row it would write.
func StateFromEvent(evt *Event) DeviceState {
	return DeviceState{
		DeviceID:  evt.DeviceID,
		Model:     evt.Model,
		OSVersion: evt.OSVersion,
		Version:   VersionPrefix(evt.OSVersion),
		Country:   evt.Country,
		Carrier:   evt.Carrier,
		CarrierID: evt.CarrierID,
		LastSeen:  evt.SubmittedAt,
	}
}

// Value returns the state's value for the given dimension.
func (d DeviceState) Value(dim Dimension) string {
	switch dim {
	case DimensionModel:
		return d.Model
	case DimensionVersion:
		return d.Version
	case DimensionCountry:
		return d.Country
	case DimensionCarrier:
		return d.Carrier
	default:
		return ""
	}
}

// Matches reports whether the state satisfies f. A nil filter matches everything.
func (d DeviceState) Matches(f *Filter) bool {
	if f == nil {
		return true
	}
	return d.Value(f.Field) == f.Value
}
