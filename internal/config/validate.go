package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalid reports a setting outside its allowed range.
var ErrInvalid = errors.New("invalid config")

func invalid(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}

// Validate checks every section and returns all problems found.
func (c *Config) Validate() error {
	var err error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, invalid("window", "size %dx%d", c.Window.Width, c.Window.Height))
	}
	if fov := c.Graphics.FieldOfView; fov <= 0 || fov >= 180 {
		err = multierr.Append(err, invalid("graphics.fov", "%g is not in (0, 180)", fov))
	}

	t := c.Terrain
	if t.TileWidth < 1 || t.TileHeight < 1 {
		err = multierr.Append(err, invalid("terrain", "tile grid %dx%d", t.TileWidth, t.TileHeight))
	}
	err = multierr.Append(err, checkLevels("terrain", t.LevelZeroDelta, t.NumLevels))
	if t.VerticalExaggeration < 0 {
		err = multierr.Append(err, invalid("terrain.vertical_exaggeration", "%g is negative", t.VerticalExaggeration))
	}
	if t.Relief < 0 {
		err = multierr.Append(err, invalid("terrain.relief", "%g is negative", t.Relief))
	}

	if i := c.Imagery; i.Enabled {
		if i.Dataset == "" {
			err = multierr.Append(err, invalid("imagery.dataset", "empty"))
		}
		if i.TileSize < 1 {
			err = multierr.Append(err, invalid("imagery.tile_size", "%d", i.TileSize))
		}
		err = multierr.Append(err, checkLevels("imagery", i.LevelZeroDelta, i.NumLevels))
		if i.Opacity < 0 || i.Opacity > 1 {
			err = multierr.Append(err, invalid("imagery.opacity", "%g is not in [0, 1]", i.Opacity))
		}
		if i.QueueCapacity < 1 || i.Workers < 1 {
			err = multierr.Append(err, invalid("imagery", "queue capacity %d, workers %d", i.QueueCapacity, i.Workers))
		}
	}

	if c.Cache.CPUBytes < 0 || c.Cache.GPUBytes < 0 {
		err = multierr.Append(err, invalid("cache", "negative budget"))
	}
	if r := c.Cache.LowWaterRatio; r < 0 || r >= 1 {
		err = multierr.Append(err, invalid("cache.low_water_ratio", "%g is not in [0, 1)", r))
	}

	if lat := c.Camera.Latitude; lat < -90 || lat > 90 {
		err = multierr.Append(err, invalid("camera.latitude", "%g", lat))
	}
	if c.Camera.Range <= 0 {
		err = multierr.Append(err, invalid("camera.range", "%g", c.Camera.Range))
	}

	if _, lerr := parseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, invalid("logging.level", "%v", lerr))
	}
	return err
}

// checkLevels requires a level-zero delta that divides the 180° latitude
// span into whole rows.
func checkLevels(section string, delta float64, levels int) error {
	var err error
	if delta <= 0 || delta > 180 {
		err = multierr.Append(err, invalid(section+".level_zero_delta", "%g is not in (0, 180]", delta))
	} else if rows := 180 / delta; rows != float64(int(rows)) {
		err = multierr.Append(err, invalid(section+".level_zero_delta", "%g does not divide 180", delta))
	}
	if levels < 1 {
		err = multierr.Append(err, invalid(section+".num_levels", "%d", levels))
	}
	return err
}

func parseLevel(level string) (string, error) {
	switch level {
	case "debug", "info", "warn", "error":
		return level, nil
	}
	return "", fmt.Errorf("unknown level %q", level)
}

// Errors splits an error returned by Validate into its parts.
func Errors(err error) []error {
	return multierr.Errors(err)
}
