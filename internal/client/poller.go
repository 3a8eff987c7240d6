package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/famhub/location-tracking-system/internal/domain/models"
	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

// CacheFirstPoller is the native-app sync strategy. Each tick renders the
// on-device roster cache immediately and only calls the read API when the
// cache is empty or the bridge fails.
type CacheFirstPoller struct {
	bridge NativeBridge
	api    FamilyReader
	render RenderFunc
	vis    VisibilitySource

	familyID uuid.UUID
	l        logger.Logger

	active time.Duration
	hidden time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

func NewCacheFirstPoller(
	bridge NativeBridge,
	api FamilyReader,
	render RenderFunc,
	vis VisibilitySource,
	familyID uuid.UUID,
	l logger.Logger,
) *CacheFirstPoller {
	return &CacheFirstPoller{
		bridge:   bridge,
		api:      api,
		render:   render,
		vis:      vis,
		familyID: familyID,
		l:        l,
		active:   activeInterval,
		hidden:   hiddenInterval,
	}
}

func (p *CacheFirstPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("poller already started")
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	ctx = wrap.WithAction(ctx, "cache_first_poll")
	p.done = make(chan struct{})

	if err := p.bridge.StartTracking(ctx); err != nil {
		p.l.Warn(ctx, "failed to start background tracking", "error", err.Error())
	}

	// Ask the other family devices for a fresh fix while the map is open.
	if err := p.bridge.WakeAllDevices(ctx); err != nil {
		p.l.Warn(ctx, "failed to wake family devices", "error", err.Error())
	}

	go p.loop(ctx)

	return nil
}

func (p *CacheFirstPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false

	p.cancel()
	<-p.done

	if err := p.bridge.StopTracking(ctx); err != nil {
		p.l.Warn(ctx, "failed to stop background tracking", "error", err.Error())
	}

	return nil
}

// OnSample is a no-op for the native poller: the background location
// service uploads samples out-of-band.
func (p *CacheFirstPoller) OnSample(sample models.RawLocation) {}

func (p *CacheFirstPoller) loop(ctx context.Context) {
	defer close(p.done)

	var visCh <-chan Visibility
	if p.vis != nil {
		visCh = p.vis.Changes()
	}

	ticker := time.NewTicker(p.active)
	defer ticker.Stop()

	p.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sync(ctx)
		case v, ok := <-visCh:
			if !ok {
				visCh = nil
				continue
			}
			switch v {
			case VisibilityActive:
				// Regaining visibility resyncs immediately.
				ticker.Reset(p.active)
				p.sync(ctx)
			case VisibilityHidden:
				ticker.Reset(p.hidden)
			}
		}
	}
}

// sync renders the cached roster, falling back to the read API only when
// the local cache has nothing to show.
func (p *CacheFirstPoller) sync(ctx context.Context) {
	members, err := p.bridge.GetCachedFamily(ctx)
	if err != nil || len(members) == 0 {
		if err != nil && !errors.Is(err, ErrBridgeUnavailable) {
			p.l.Warn(ctx, "roster cache read failed", "error", err.Error())
		}

		members, err = p.api.FamilyLocations(ctx, p.familyID)
		if err != nil {
			p.l.Error(wrap.WithFamilyID(ctx, p.familyID.String()), "family roster read failed", err)
			return
		}
	}

	p.render(ctx, members)
}
