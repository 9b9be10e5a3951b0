package v1

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubmission() Submission {
	return Submission{
		DeviceHash:      "abc123",
		DeviceName:      "bacon",
		DeviceVersion:   "14.1-20240101-NIGHTLY-bacon",
		DeviceCountry:   "us",
		DeviceCarrier:   "T-Mobile",
		DeviceCarrierID: "310260",
	}
}

func TestSubmission_ToEvent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mutate    func(*Submission)
		wantField string
		checkFn   func(*testing.T, *Event)
	}{
		{
			name: "valid submission defaults submitted_at to now",
			checkFn: func(t *testing.T, e *Event) {
				assert.Equal(t, now, e.SubmittedAt)
				assert.Equal(t, "abc123", e.DeviceID)
				assert.Equal(t, "US", e.Country)
			},
		},
		{
			name: "explicit submitted_at is preserved in UTC",
			mutate: func(s *Submission) {
				s.SubmittedAt = time.Date(2024, 2, 1, 7, 0, 0, 0, time.FixedZone("X", 3600))
			},
			checkFn: func(t *testing.T, e *Event) {
				assert.Equal(t, time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC), e.SubmittedAt)
				assert.Equal(t, time.UTC, e.SubmittedAt.Location())
			},
		},
		{
			name:      "missing device hash",
			mutate:    func(s *Submission) { s.DeviceHash = "" },
			wantField: "device_hash",
		},
		{
			name:      "whitespace carrier id",
			mutate:    func(s *Submission) { s.DeviceCarrierID = "   " },
			wantField: "device_carrier_id",
		},
		{
			name:      "missing country",
			mutate:    func(s *Submission) { s.DeviceCountry = "" },
			wantField: "device_country",
		},
		{
			name:   "invalid country becomes Unknown",
			mutate: func(s *Submission) { s.DeviceCountry = "usa" },
			checkFn: func(t *testing.T, e *Event) {
				assert.Equal(t, UnknownCountry, e.Country)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			if tt.mutate != nil {
				tt.mutate(&sub)
			}

			evt, err := sub.ToEvent(now)
			if tt.wantField != "" {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				assert.Nil(t, evt)
				return
			}

			require.NoError(t, err)
			if tt.checkFn != nil {
				tt.checkFn(t, evt)
			}
		})
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := map[string]string{
		"us":   "US",
		" de ": "DE",
		"BR":   "BR",
		"usa":  UnknownCountry,
		"840":  UnknownCountry,
		"ZZ":   UnknownCountry,
		"u1":   UnknownCountry,
		"":     UnknownCountry,
		"uk":   "GB",
		"UN":   UnknownCountry,
		"su":   UnknownCountry,
		"YU":   UnknownCountry,
		"EU":   UnknownCountry,
		"FX":   UnknownCountry,
		"ZR":   UnknownCountry,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCountry(in), "input %q", in)
	}
}

func TestDeviceState_ValueAndMatches(t *testing.T) {
	state := DeviceState{Model: "bacon", OSVersion: "14.1-20240101-NIGHTLY-bacon", Version: "14.1", Country: "US", Carrier: "T-Mobile"}

	assert.Equal(t, "bacon", state.Value(DimensionModel))
	assert.Equal(t, "14.1", state.Value(DimensionVersion))
	assert.Equal(t, "US", state.Value(DimensionCountry))
	assert.Equal(t, "T-Mobile", state.Value(DimensionCarrier))

	assert.True(t, state.Matches(nil))
	assert.True(t, state.Matches(&Filter{Field: DimensionCountry, Value: "US"}))
	assert.False(t, state.Matches(&Filter{Field: DimensionModel, Value: "river"}))
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension("carrier")
	require.NoError(t, err)
	assert.Equal(t, DimensionCarrier, d)
	assert.Equal(t, "carrier", d.Column())
	assert.Equal(t, []Dimension{DimensionModel, DimensionVersion, DimensionCountry}, d.Others())
	assert.Equal(t, []Dimension{DimensionModel, DimensionCountry}, d.DetailColumns())

	_, err = ParseDimension("model; DROP TABLE device_states")
	assert.Error(t, err)
	assert.Equal(t, "version", DimensionVersion.Column())
}

func TestSharePercent(t *testing.T) {
	assert.True(t, decimal.RequireFromString("33.33").Equal(SharePercent(1, 3)))
	assert.True(t, decimal.RequireFromString("66.67").Equal(SharePercent(2, 3)))
	assert.True(t, decimal.Zero.Equal(SharePercent(5, 0)))
}

func TestAggregateResult_Top(t *testing.T) {
	r := &AggregateResult{
		Rows:  []PopularityRow{{Value: "a", Count: 3}, {Value: "b", Count: 2}, {Value: "c", Count: 1}},
		Total: 6,
	}
	assert.Len(t, r.Top(2).Rows, 2)
	assert.Len(t, r.Top(0).Rows, 3)
	assert.Len(t, r.Rows, 3)
	assert.True(t, (&AggregateResult{}).Empty())
	assert.False(t, r.Empty())
}

func TestVersionPrefix(t *testing.T) {
	tests := map[string]string{
		"14.1-20240101-NIGHTLY-bacon": "14.1",
		"21.0":                        "21.0",
		"7.1.2-20170101-SNAPSHOT":     "7.1",
		" 18.1 ":                      "18.1",
		"nightly-14.1":                UnknownVersion,
		"14":                          UnknownVersion,
		"":                            UnknownVersion,
	}
	for in, want := range tests {
		assert.Equal(t, want, VersionPrefix(in), "input %q", in)
	}
}

func TestStateFromEvent_DerivesVersion(t *testing.T) {
	sub := validSubmission()
	evt, err := sub.ToEvent(time.Now())
	require.NoError(t, err)

	state := StateFromEvent(evt)
	assert.Equal(t, "14.1-20240101-NIGHTLY-bacon", state.OSVersion)
	assert.Equal(t, "14.1", state.Version)
	assert.True(t, state.Matches(&Filter{Field: DimensionVersion, Value: "14.1"}))
}
