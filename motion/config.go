package motion

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// Bounds for the tunable parameters. Setters reject values outside these and
// leave the extractor untouched.
const (
	MinSensitivity = 1
	MaxSensitivity = 127

	MinSettleTime = 1.0
	MaxSettleTime = 60.0

	MinErosion = 0
	MaxErosion = 8
)

// Settings is the serializable snapshot of an extractor's tunable
// parameters. The field names match the on-disk configuration format.
type Settings struct {
	Sensitivity  int     `json:"sensitivity"`
	SettleTime   float64 `json:"settle time"`
	ErosionLevel int     `json:"erosion level"`
}

// SetSensitivity sets the per-channel difference threshold above which two
// pixels are considered distinct. Lower values flag smaller changes as
// motion.
//
// Arguments:
// - sensitivity: The new threshold, in [MinSensitivity, MaxSensitivity].
//
// Returns:
// - error: ErrOutOfRange (wrapped) if the value is outside its bounds; the
//   extractor is unchanged.
//
// A successful call resets the background model.
func (e *Extractor) SetSensitivity(sensitivity int) error {
	if sensitivity < MinSensitivity || sensitivity > MaxSensitivity {
		return errors.Wrapf(ErrOutOfRange,
			"sensitivity %d is outside [%d, %d]",
			sensitivity, MinSensitivity, MaxSensitivity)
	}
	e.motionThreshold = sensitivity
	e.Reset()
	return nil
}

// Sensitivity returns the current per-channel difference threshold.
func (e *Extractor) Sensitivity() int { return e.motionThreshold }

// SetSettleTime sets how long a region must hold still before it is absorbed
// into the background, in seconds. The stability cap becomes
// ceil(settleTime * fps) frames.
//
// Arguments:
// - seconds: The new settle time, in [MinSettleTime, MaxSettleTime].
//
// Returns:
// - error: ErrOutOfRange (wrapped) if the value is outside its bounds; the
//   extractor is unchanged.
//
// A successful call resets the background model.
func (e *Extractor) SetSettleTime(seconds float64) error {
	if seconds < MinSettleTime || seconds > MaxSettleTime {
		return errors.Wrapf(ErrOutOfRange,
			"settle time %v is outside [%v, %v]",
			seconds, MinSettleTime, MaxSettleTime)
	}
	e.stableCap = uint32(math.Ceil(seconds * e.fps))
	e.Reset()
	return nil
}

// SettleTime returns the current settle time in seconds, derived from the
// stability cap and the frame rate. Because the cap is stored in whole
// frames, the value read back is the ceiling-rounded form of what was set.
func (e *Extractor) SettleTime() float64 {
	return float64(e.stableCap) / e.fps
}

// SetErosion sets how many of a pixel's 8 neighbors must also be moving for
// the pixel to survive the erosion pass. Zero disables morphology entirely.
//
// Arguments:
// - level: The new erosion level, in [MinErosion, MaxErosion].
//
// Returns:
// - error: ErrOutOfRange (wrapped) if the value is outside its bounds; the
//   extractor is unchanged.
//
// A successful call resets the background model.
func (e *Extractor) SetErosion(level int) error {
	if level < MinErosion || level > MaxErosion {
		return errors.Wrapf(ErrOutOfRange,
			"erosion level %d is outside [%d, %d]",
			level, MinErosion, MaxErosion)
	}
	e.erosionLevel = level
	e.Reset()
	return nil
}

// Erosion returns the current erosion level.
func (e *Extractor) Erosion() int { return e.erosionLevel }

// Settings returns a snapshot of the current tunable parameters, suitable
// for serialization with SaveSettings.
func (e *Extractor) Settings() Settings {
	return Settings{
		Sensitivity:  e.motionThreshold,
		SettleTime:   e.SettleTime(),
		ErosionLevel: e.erosionLevel,
	}
}

// SaveSettings serializes the current parameters as indented JSON.
func (e *Extractor) SaveSettings() ([]byte, error) {
	data, err := json.MarshalIndent(e.Settings(), "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding settings")
	}
	return data, nil
}

// LoadSettings parses a JSON settings document and applies it atomically:
// either all three parameters change and the background model resets once,
// or the extractor is left exactly as it was.
//
// Arguments:
// - data: A JSON object with "sensitivity", "settle time", and
//   "erosion level" fields.
//
// Returns:
// - error: ErrInvalidSettings (wrapped) if the document does not parse, a
//   field is missing, or a value is outside its bounds.
func (e *Extractor) LoadSettings(data []byte) error {
	// Pointer fields distinguish an absent key from a zero value.
	var raw struct {
		Sensitivity  *int     `json:"sensitivity"`
		SettleTime   *float64 `json:"settle time"`
		ErosionLevel *int     `json:"erosion level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(ErrInvalidSettings, err.Error())
	}
	if raw.Sensitivity == nil || raw.SettleTime == nil || raw.ErosionLevel == nil {
		return errors.Wrap(ErrInvalidSettings, "a required field is missing")
	}
	if *raw.Sensitivity < MinSensitivity || *raw.Sensitivity > MaxSensitivity {
		return errors.Wrapf(ErrInvalidSettings,
			"sensitivity %d is outside [%d, %d]",
			*raw.Sensitivity, MinSensitivity, MaxSensitivity)
	}
	if *raw.SettleTime < MinSettleTime || *raw.SettleTime > MaxSettleTime {
		return errors.Wrapf(ErrInvalidSettings,
			"settle time %v is outside [%v, %v]",
			*raw.SettleTime, MinSettleTime, MaxSettleTime)
	}
	if *raw.ErosionLevel < MinErosion || *raw.ErosionLevel > MaxErosion {
		return errors.Wrapf(ErrInvalidSettings,
			"erosion level %d is outside [%d, %d]",
			*raw.ErosionLevel, MinErosion, MaxErosion)
	}

	e.motionThreshold = *raw.Sensitivity
	e.stableCap = uint32(math.Ceil(*raw.SettleTime * e.fps))
	e.erosionLevel = *raw.ErosionLevel
	e.Reset()
	return nil
}
