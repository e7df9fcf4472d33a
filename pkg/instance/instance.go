package instance

import "os"

// GetID identifies the running process in logs. Explicit configuration wins,
// then the platform dyno name, then the hostname.
func GetID() string {
	for _, key := range []string{"HADEEQATI_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
