package config

import "time"

const (
	// Room
	MinPlayers         = 2
	MaxScoreLimit      = 10
	DefaultTargetScore = 1

	// Ephemeral messages
	ResultRevealDelay = 4 * time.Second
	EphemeralDelay    = 5 * time.Second

	// Storage
	StorageTimeout = 3 * time.Second
)
