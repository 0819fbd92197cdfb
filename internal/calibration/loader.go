package calibration

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Load reads a calibration bundle from a YAML file. A missing path returns
// the built-in defaults; a present but unparseable file is an error, since
// silently falling back would change every estimate.
func Load(path string) (*Bundle, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}

	bundle := &Bundle{}
	if err := v.Unmarshal(bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calibration bundle: %w", err)
	}

	if bundle.Version == "" {
		return nil, fmt.Errorf("calibration bundle missing version")
	}
	if bundle.Bounds.ClampMinPct <= 0 || bundle.Bounds.ClampMaxPct >= 100 {
		return nil, fmt.Errorf("calibration bounds must keep probabilities in the open interval")
	}

	return bundle, nil
}
