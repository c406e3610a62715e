package config

import (
	"strconv"
	"time"
)

type DispatchConfig interface {
	GetDispatchHour() int
	GetPushGatewayURL() string
	GetPushGatewayTimeout() time.Duration
	GetLeaderLockKey() int64
}

type Dispatch struct{}

var _ DispatchConfig = Dispatch{}

// GetDispatchHour returns the local hour (0-23) at which the daily
// notification dispatch fires.
func (Dispatch) GetDispatchHour() int {
	raw := GetEnv("DISPATCH_HOUR", "10")
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		return 10
	}
	return hour
}

func (Dispatch) GetPushGatewayURL() string {
	return GetEnv("PUSH_GATEWAY_URL", "")
}

func (Dispatch) GetPushGatewayTimeout() time.Duration {
	return durationEnv("PUSH_GATEWAY_TIMEOUT", 10*time.Second)
}

// GetLeaderLockKey returns the advisory lock key used to coordinate the
// dispatch trigger across service instances.
func (Dispatch) GetLeaderLockKey() int64 {
	raw := GetEnv("LEADER_LOCK_KEY", "")
	if raw == "" {
		return 7489123401
	}
	key, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 7489123401
	}
	return key
}
