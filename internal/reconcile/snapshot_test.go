package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_Validate(t *testing.T) {
	testCases := []struct {
		name          string
		timeRemaining int
		wantErr       bool
	}{
		{name: "negative time is rejected", timeRemaining: -1, wantErr: true},
		{name: "large negative time is rejected", timeRemaining: -45, wantErr: true},
		{name: "zero time passes", timeRemaining: 0, wantErr: false},
		{name: "positive time passes", timeRemaining: 38, wantErr: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap := Snapshot{OpaqueID: "W1", TimeRemaining: tc.timeRemaining}
			err := snap.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeRemaining)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSnapshot_ValidateOtherFieldsAreOpaque(t *testing.T) {
	// Only timeRemaining is checked; everything else passes through untyped.
	snap := Snapshot{
		OpaqueID:      "D7",
		Type:          "not-a-real-type",
		Mode:          "",
		StickerNumber: -3,
		TimeRemaining: 0,
	}
	assert.NoError(t, snap.Validate())
}
