package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rafaelalberola/lamiradacreativa/internal/config"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils/amplitude"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils/mixpanel"
)

// TrackEvent is one business event fanned out to every collector. EventID,
// when set, identifies the upstream event and becomes the insert id.
type TrackEvent struct {
	EventID    string
	Name       string
	Properties map[string]any
	UserKey    string
	DeviceID   string
}

// Collector is one analytics backend. insertID is the same for every
// collector and every redelivery of the same upstream event, so each
// backend drops the repeats.
type Collector interface {
	Name() string
	Track(ctx context.Context, ev TrackEvent, insertID string) error
}

// TrackResult holds the per-collector outcome, keyed by collector name.
type TrackResult map[string]Result

type TrackingService interface {
	Track(ctx context.Context, ev TrackEvent) TrackResult
}

type trackingService struct {
	collectors []Collector
}

func NewTrackingService(cfg *config.Config) TrackingService {
	var amp *amplitude.Client
	if cfg.AmplitudeAPIKey != "" {
		amp = amplitude.NewClient(cfg.AmplitudeAPIKey)
	}
	var mp *mixpanel.Client
	if cfg.MixpanelToken != "" {
		mp = mixpanel.NewClient(cfg.MixpanelToken)
	}
	return NewTrackingServiceWithCollectors(
		&amplitudeCollector{client: amp},
		&mixpanelCollector{client: mp},
	)
}

func NewTrackingServiceWithCollectors(collectors ...Collector) TrackingService {
	return &trackingService{collectors: collectors}
}

// Track calls every collector concurrently and waits for all of them. A
// failing or panicking collector only affects its own entry in the result.
func (s *trackingService) Track(ctx context.Context, ev TrackEvent) TrackResult {
	insertID := ev.EventID
	if insertID == "" {
		insertID = uuid.NewString()
	}
	results := make([]Result, len(s.collectors))

	var wg sync.WaitGroup
	for i, c := range s.collectors {
		wg.Add(1)
		go func(i int, c Collector) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = Failed(fmt.Errorf("collector %s panicked: %v", c.Name(), r))
				}
			}()
			results[i] = toResult(c.Track(ctx, ev, insertID))
		}(i, c)
	}
	wg.Wait()

	out := make(TrackResult, len(s.collectors))
	for i, c := range s.collectors {
		res := results[i]
		out[c.Name()] = res

		entry := utils.Logger.WithFields(logrus.Fields{
			"collector": c.Name(),
			"event":     ev.Name,
			"user":      utils.MaskEmail(ev.UserKey),
		})
		switch {
		case res.Skipped:
			entry.Debug("Analytics collector not configured, skipped")
		case res.Err != nil:
			entry.WithError(res.Err).Warn("Analytics event failed")
		default:
			entry.Debug("Analytics event sent")
		}
	}
	return out
}

func toResult(err error) Result {
	switch {
	case err == nil:
		return Succeeded()
	case errors.Is(err, utils.ErrCollectorNotConfigured):
		return SkippedWith(err)
	default:
		return Failed(err)
	}
}

// ------------------------------------------------------------------
// Collectors
// ------------------------------------------------------------------

type amplitudeCollector struct {
	client *amplitude.Client
}

func (c *amplitudeCollector) Name() string { return "amplitude" }

func (c *amplitudeCollector) Track(ctx context.Context, ev TrackEvent, insertID string) error {
	if c.client == nil {
		return utils.ErrCollectorNotConfigured
	}
	return c.client.Upload(ctx, amplitude.Event{
		UserID:          ev.UserKey,
		DeviceID:        ev.DeviceID,
		EventType:       ev.Name,
		EventProperties: ev.Properties,
		InsertID:        insertID,
		Time:            time.Now().UnixMilli(),
	})
}

type mixpanelCollector struct {
	client *mixpanel.Client
}

func (c *mixpanelCollector) Name() string { return "mixpanel" }

func (c *mixpanelCollector) Track(ctx context.Context, ev TrackEvent, insertID string) error {
	if c.client == nil {
		return utils.ErrCollectorNotConfigured
	}
	return c.client.Track(ctx, mixpanel.Event{
		Name:       ev.Name,
		DistinctID: ev.UserKey,
		InsertID:   insertID,
		Properties: ev.Properties,
	})
}
