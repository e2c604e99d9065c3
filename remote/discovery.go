package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/duocast-cli/duocast/constant"
	"github.com/duocast-cli/duocast/internal/cache"
	"github.com/duocast-cli/duocast/key"
	"github.com/duocast-cli/duocast/log"
	"github.com/duocast-cli/duocast/network"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/viper"
)

// Device is a remote renderer registered with the cloud connector.
type Device struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Model   string `json:"model"`
	Address string `json:"address"`
	Online  bool   `json:"online"`
}

// Devices fetches the renderer devices registered under the authenticated account.
func Devices(ctx context.Context, token string) ([]Device, error) {
	endpoint, err := devicesURL(viper.GetString(key.RemoteConnectorURL))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build devices request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constant.UserAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	cacheKey := cache.GenerateKey("devices", endpoint)

	resp, err := network.Client.Do(req)
	if err != nil {
		// Offline fallback: a recently fetched list is better than nothing.
		var cached []Device
		if cache.Read(cacheKey, &cached) {
			log.Warnf("connector unreachable, using cached device list: %v", err)
			return cached, nil
		}
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("list devices: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var devices []Device
	if err := json.NewDecoder(resp.Body).Decode(&devices); err != nil {
		return nil, fmt.Errorf("decode devices: %w", err)
	}

	if err := cache.Write(cacheKey, devices); err != nil {
		log.Tracef("caching device list: %v", err)
	}

	return devices, nil
}

func devicesURL(base string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("remote connector URL is not configured (set %s)", key.RemoteConnectorURL)
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse connector URL: %w", err)
	}

	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss", "":
		u.Scheme = "https"
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/devices"
	return u.String(), nil
}

// Find resolves a user-supplied name to a device. Exact name and id matches
// win; otherwise the best fuzzy match by name is taken. When nothing matches
// at all, the error suggests the closest known name.
func Find(devices []Device, name string) (Device, error) {
	if len(devices) == 0 {
		return Device{}, fmt.Errorf("no devices registered with the connector")
	}

	for _, d := range devices {
		if strings.EqualFold(d.Name, name) || d.ID == name {
			return d, nil
		}
	}

	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) > 0 {
		best := ranks[0]
		for _, r := range ranks[1:] {
			if r.Distance < best.Distance {
				best = r
			}
		}
		return devices[best.OriginalIndex], nil
	}

	closest := names[0]
	for _, candidate := range names[1:] {
		if levenshtein.Distance(name, candidate) < levenshtein.Distance(name, closest) {
			closest = candidate
		}
	}

	return Device{}, fmt.Errorf("unknown device %q, did you mean %q?", name, closest)
}
