package audit

import (
	"context"
	"strconv"
	"strings"
)

// ConnectionInfo summarizes the backing store connection for diagnostics.
type ConnectionInfo struct {
	Connected        bool   `json:"connected"`
	Addr             string `json:"addr,omitempty"`
	RedisVersion     string `json:"redis_version,omitempty"`
	ConnectedClients int    `json:"connected_clients,omitempty"`
	UsedMemory       string `json:"used_memory,omitempty"`
	UptimeDays       int    `json:"uptime_days,omitempty"`
	Error            string `json:"error,omitempty"`
}

// HealthCheck pings the backing store. Failures are logged and reported as
// false rather than propagated so callers can poll without error plumbing.
func (s *Store) HealthCheck(ctx context.Context) bool {
	if err := s.cmd.Ping(ctx).Err(); err != nil {
		s.logger.Error("redis health check failed", "error", err)
		return false
	}
	return true
}

// ConnectionInfo reports server details from INFO. Connectivity failures are
// converted into a disconnected result instead of an error.
func (s *Store) ConnectionInfo(ctx context.Context) ConnectionInfo {
	info := ConnectionInfo{Addr: s.addr}

	raw, err := s.cmd.Info(ctx).Result()
	if err != nil {
		s.logger.Error("redis connection info failed", "error", err)
		info.Error = err.Error()
		return info
	}

	fields := parseInfo(raw)
	info.Connected = true
	info.RedisVersion = fields["redis_version"]
	info.UsedMemory = fields["used_memory_human"]
	if v, err := strconv.Atoi(fields["connected_clients"]); err == nil {
		info.ConnectedClients = v
	}
	if v, err := strconv.Atoi(fields["uptime_in_days"]); err == nil {
		info.UptimeDays = v
	}
	return info
}

// parseInfo splits an INFO payload into key/value pairs, skipping section
// headers and blank lines.
func parseInfo(raw string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[key] = value
	}
	return fields
}
