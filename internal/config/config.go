// Package config handles configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/clusterindex/internal/voxel"
)

// ErrInvalid is returned by Validate for out of range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Cluster ClusterConfig `yaml:"cluster"`
	Camera  CameraConfig  `yaml:"camera"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ClusterConfig holds the voxel cluster geometry and index build settings.
type ClusterConfig struct {
	SizeX         int `yaml:"size_x"`
	SizeY         int `yaml:"size_y"` // height
	SizeZ         int `yaml:"size_z"`
	LeafThreshold int `yaml:"leaf_threshold"` // occupied extent at or below which a node stays a leaf
	NodeLimit     int `yaml:"node_limit"`     // 0 = unlimited
}

// CameraConfig holds projection settings.
type CameraConfig struct {
	FOV    float32 `yaml:"fov"` // vertical, degrees
	Aspect float32 `yaml:"aspect"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"` // print collected metrics when a command finishes
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Cluster: ClusterConfig{
			SizeX:         voxel.DefaultDims.X,
			SizeY:         voxel.DefaultDims.Y,
			SizeZ:         voxel.DefaultDims.Z,
			LeafThreshold: 5,
			NodeLimit:     0,
		},
		Camera: CameraConfig{
			FOV:    70,
			Aspect: 16.0 / 9.0,
			Near:   0.1,
			Far:    300,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Dims returns the configured cluster dimensions.
func (c *Config) Dims() voxel.Dims {
	return voxel.Dims{X: c.Cluster.SizeX, Y: c.Cluster.SizeY, Z: c.Cluster.SizeZ}
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if err := c.Dims().Validate(); err != nil {
		return fmt.Errorf("%w: cluster: %w", ErrInvalid, err)
	}
	if c.Cluster.LeafThreshold < 1 {
		return fmt.Errorf("%w: cluster.leaf_threshold %d must be at least 1", ErrInvalid, c.Cluster.LeafThreshold)
	}
	if c.Cluster.NodeLimit < 0 {
		return fmt.Errorf("%w: cluster.node_limit %d is negative", ErrInvalid, c.Cluster.NodeLimit)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera.fov %.1f out of (0,180)", ErrInvalid, c.Camera.FOV)
	}
	if c.Camera.Aspect <= 0 {
		return fmt.Errorf("%w: camera.aspect %.3f must be positive", ErrInvalid, c.Camera.Aspect)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera near/far %.2f/%.2f", ErrInvalid, c.Camera.Near, c.Camera.Far)
	}
	return nil
}
