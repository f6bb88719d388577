package qbittorrent

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Generation identifies one of the two incompatible Web API surfaces.
type Generation int

const (
	// GenV1 is the legacy Web API (qBittorrent < 4.1): /login, /query/...,
	// /command/... paths and integer API levels from /version/api.
	GenV1 Generation = iota + 1
	// GenV2 is the current Web API (qBittorrent >= 4.1): /api/v2/... paths
	// and semantic versions from /api/v2/app/webapiVersion.
	GenV2
)

func (g Generation) String() string {
	switch g {
	case GenV1:
		return "api v1"
	case GenV2:
		return "api v2"
	default:
		return "api unknown"
	}
}

// v2VersionThreshold is the major webapiVersion at which the daemon is
// classified as GenV2. Legacy daemons never serve the v2 probe path, but the
// threshold keeps classification explicit rather than endpoint-implied.
const v2VersionThreshold = 2

// Capability is what the daemon was detected to speak. It is computed at
// most once per client, lazily, and shared by all operations afterwards.
type Capability struct {
	Generation Generation
	// APIVersion is the Web API version. Legacy integer API levels are
	// normalized to <level>.0.0 so "at least" checks work uniformly.
	APIVersion *semver.Version
	// AppVersion is the daemon's own version string, e.g. "v4.6.3".
	AppVersion string
}

func (c Capability) String() string {
	if c.APIVersion == nil {
		return c.Generation.String()
	}
	return fmt.Sprintf("%s %s", c.Generation, c.APIVersion)
}

// AtLeast reports whether the capability satisfies a minimum API version.
func (c Capability) AtLeast(min *semver.Version) bool {
	if min == nil {
		return true
	}
	return c.APIVersion != nil && !c.APIVersion.LessThan(min)
}

// capability returns the memoized detection result, probing the daemon on
// first use. Concurrent first callers share a single probe: the probe runs
// detached from any one caller's context so cancelling one waiter cannot
// abort a detection others are blocked on, while each waiter still honors
// its own cancellation. Failures are not memoized; the next call re-probes.
func (c *Client) capability(ctx context.Context) (Capability, error) {
	if cached := c.capCache.Load(); cached != nil {
		return *cached, nil
	}

	ch := c.detectGroup.DoChan("detect", func() (any, error) {
		cap, err := c.detect(context.WithoutCancel(ctx))
		if err != nil {
			return Capability{}, &DetectionError{Err: err}
		}
		c.capCache.Store(&cap)
		c.logger.Info().
			Stringer("generation", cap.Generation).
			Str("apiVersion", cap.APIVersion.String()).
			Str("appVersion", cap.AppVersion).
			Msg("detected daemon api")
		return cap, nil
	})

	select {
	case <-ctx.Done():
		return Capability{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Capability{}, res.Err
		}
		return res.Val.(Capability), nil
	}
}

// detect issues the capability probe. A daemon that serves the v2 version
// path is classified by the version it reports; one that 404s it is legacy
// and is asked for its integer API level instead.
func (c *Client) detect(ctx context.Context) (Capability, error) {
	status, body, err := c.send(ctx, http.MethodGet, "/api/v2/app/webapiVersion", nil, nil, "")
	if err != nil {
		return Capability{}, err
	}

	switch status {
	case http.StatusOK:
		version, err := semver.NewVersion(strings.TrimSpace(string(body)))
		if err != nil {
			return Capability{}, fmt.Errorf("parsing webapi version %q: %w", body, err)
		}
		if version.Major() < v2VersionThreshold {
			return Capability{}, fmt.Errorf("daemon reports webapi version %s below v2 threshold", version)
		}
		app, err := c.probeString(ctx, "/api/v2/app/version")
		if err != nil {
			return Capability{}, err
		}
		return Capability{Generation: GenV2, APIVersion: version, AppVersion: app}, nil

	case http.StatusNotFound:
		return c.detectLegacy(ctx)

	case http.StatusUnauthorized, http.StatusForbidden:
		return Capability{}, fmt.Errorf("daemon refused version probe with status %d; session expired", status)

	default:
		return Capability{}, fmt.Errorf("version probe returned status %d", status)
	}
}

func (c *Client) detectLegacy(ctx context.Context) (Capability, error) {
	raw, err := c.probeString(ctx, "/version/api")
	if err != nil {
		return Capability{}, err
	}
	level, err := strconv.Atoi(raw)
	if err != nil {
		return Capability{}, fmt.Errorf("parsing legacy api level %q: %w", raw, err)
	}
	if level < 1 {
		return Capability{}, fmt.Errorf("legacy api level %d out of range", level)
	}
	app, err := c.probeString(ctx, "/version/qbittorrent")
	if err != nil {
		return Capability{}, err
	}
	return Capability{
		Generation: GenV1,
		APIVersion: semver.New(uint64(level), 0, 0, "", ""),
		AppVersion: app,
	}, nil
}

func (c *Client) probeString(ctx context.Context, path string) (string, error) {
	status, body, err := c.send(ctx, http.MethodGet, path, nil, nil, "")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("GET %s returned status %d", path, status)
	}
	return strings.TrimSpace(string(body)), nil
}
