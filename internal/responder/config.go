package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/jobdash/internal/buildinfo"
	"github.com/okian/jobdash/internal/gateway"
	"github.com/okian/jobdash/pkg/metrics"
)

// ConfigPath is the path served by ConfigResponder.
const ConfigPath = "/config"

// marshal is swapped in tests to exercise the serialization failure path.
var marshal = json.Marshal //nolint:gochecknoglobals // test seam

// ConfigResponder returns the parameters dashboard clients need to poll and
// render server data: refresh interval, server timezone and build
// identifiers. The document is built once at construction and served
// unchanged afterwards.
type ConfigResponder struct {
	exec Executor
	body string
}

// configPayload field order is the wire order.
type configPayload struct {
	RefreshInterval int64   `json:"refresh-interval"`
	TimezoneOffset  int64   `json:"timezone-offset"`
	TimezoneName    string  `json:"timezone-name"`
	Version         string  `json:"flink-version"`
	Revision        *string `json:"flink-revision,omitempty"`
}

type configOptions struct {
	loc   *time.Location
	build *buildinfo.Info
	now   func() time.Time
}

// ConfigOption configures NewConfigResponder.
type ConfigOption func(*configOptions)

// WithLocation sets the timezone reported to clients. Defaults to time.Local.
func WithLocation(loc *time.Location) ConfigOption {
	return func(o *configOptions) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithBuildInfo sets the version and revision source. Defaults to
// buildinfo.Read().
func WithBuildInfo(info buildinfo.Info) ConfigOption {
	return func(o *configOptions) {
		o.build = &info
	}
}

// WithClock sets the instant at which the timezone is sampled.
func WithClock(now func() time.Time) ConfigOption {
	return func(o *configOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewConfigResponder builds the config document for refreshInterval
// (milliseconds). exec is kept to satisfy the responder contract; the
// document never needs it. Any error means the server must not start.
func NewConfigResponder(exec Executor, refreshInterval int64, opts ...ConfigOption) (*ConfigResponder, error) {
	body, err := createConfigJSON(refreshInterval, opts...)
	if err != nil {
		metrics.RecordResponderConstruction("config", "error")
		return nil, err
	}
	metrics.RecordResponderConstruction("config", "ok")
	metrics.UpdateResponderPayloadBytes("config", len(body))
	return &ConfigResponder{exec: exec, body: body}, nil
}

// Paths implements JSONResponder.
func (r *ConfigResponder) Paths() []string {
	return []string{ConfigPath}
}

// Handle implements JSONResponder. All arguments are ignored and the
// returned Future is already resolved.
func (r *ConfigResponder) Handle(context.Context, map[string]string, map[string]string, gateway.Gateway) *Future[string] {
	return Completed(r.body)
}

// JSON returns the precomputed document.
func (r *ConfigResponder) JSON() string {
	return r.body
}

func createConfigJSON(refreshInterval int64, opts ...ConfigOption) (string, error) {
	if refreshInterval < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidRefreshInterval, refreshInterval)
	}

	o := configOptions{loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.build == nil {
		info := buildinfo.Read()
		o.build = &info
	}

	name, offset := standardZone(o.loc, o.now())
	p := configPayload{
		RefreshInterval: refreshInterval,
		TimezoneOffset:  offset.Milliseconds(),
		TimezoneName:    name,
		Version:         o.build.Version(),
	}
	if rev, ok := o.build.Revision(); ok {
		s := rev.String()
		p.Revision = &s
	}

	b, err := marshal(p)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfigSerialization, err)
	}
	return string(b), nil
}

// standardZone returns the abbreviation and UTC offset of loc's standard
// (non daylight saving) time in the year of at.
func standardZone(loc *time.Location, at time.Time) (string, time.Duration) {
	t := at.In(loc)
	if t.IsDST() {
		for _, m := range []time.Month{time.January, time.July} {
			probe := time.Date(t.Year(), m, 1, 12, 0, 0, 0, loc)
			if !probe.IsDST() {
				t = probe
				break
			}
		}
	}
	name, sec := t.Zone()
	return name, time.Duration(sec) * time.Second
}
