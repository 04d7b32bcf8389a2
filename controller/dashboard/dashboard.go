package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pdbogen/slackin/common/cache"
	mbLog "github.com/pdbogen/slackin/common/log"
	"github.com/pdbogen/slackin/model/dashboard"
	"github.com/pdbogen/slackin/model/member"
	"github.com/pdbogen/slackin/model/team"
	"github.com/pdbogen/slackin/ui/slack"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var log = mbLog.Log

// CacheKey is the single cache slot holding the team dashboard.
const CacheKey = "slackin:dashboard"

const (
	DefaultPeriod          = 300 * time.Second
	DefaultThrottledPeriod = 5 * time.Second
)

// Upstream is the read side of the Slack client.
type Upstream interface {
	GetTeam(ctx context.Context) (team.Snapshot, error)
	GetMembers(ctx context.Context) ([]member.Member, error)
}

var _ Upstream = (*slack.Client)(nil)

type Config struct {
	// Period is how long a complete snapshot is served.
	Period time.Duration
	// ThrottledPeriod is how long a snapshot containing a throttled placeholder is served.
	ThrottledPeriod time.Duration
	// FallbackName is shown as the team name when team.info is throttled before any success.
	FallbackName string
	Now          func() time.Time
}

// Fetcher serves the dashboard from one shared cache slot, refreshing it from Slack at most once per period.
// Concurrent misses share a single refresh, and the two Slack reads of a refresh run in parallel.
type Fetcher struct {
	upstream Upstream
	store    cache.Store
	cfg      Config
	group    singleflight.Group

	lastNameMu sync.Mutex
	lastName   string
}

func New(upstream Upstream, store cache.Store, cfg Config) (*Fetcher, error) {
	if upstream == nil {
		return nil, errors.New("upstream must be non-nil")
	}
	if store == nil {
		return nil, errors.New("store must be non-nil")
	}
	if cfg.Period == 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.ThrottledPeriod == 0 {
		cfg.ThrottledPeriod = DefaultThrottledPeriod
	}
	if cfg.Period < 0 || cfg.ThrottledPeriod < 0 {
		return nil, errors.New("cache periods must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Fetcher{upstream: upstream, store: store, cfg: cfg}, nil
}

// Fetch returns the cached dashboard or, on a miss, builds and caches a new one. A rate-limited Slack read is
// replaced by a placeholder and cached briefly; any other Slack error is returned and nothing is cached.
func (f *Fetcher) Fetch(ctx context.Context) (*dashboard.Snapshot, error) {
	if s, ok := f.cached(); ok {
		return s, nil
	}

	v, err, shared := f.group.Do(CacheKey, func() (interface{}, error) {
		if s, ok := f.cached(); ok {
			return s, nil
		}
		// A shared refresh outlives any one caller's cancellation.
		return f.refresh(context.WithoutCancel(ctx))
	})
	if shared {
		log.Debugf("dashboard refresh shared with a concurrent request")
	}
	if err != nil {
		return nil, err
	}
	return v.(*dashboard.Snapshot), nil
}

func (f *Fetcher) cached() (*dashboard.Snapshot, bool) {
	v, ok := f.store.Get(CacheKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*dashboard.Snapshot)
	if !ok {
		log.Errorf("cache slot %s held %T, not a dashboard; ignoring", CacheKey, v)
	}
	return s, ok
}

func (f *Fetcher) refresh(ctx context.Context) (*dashboard.Snapshot, error) {
	var (
		t                         team.Snapshot
		membership                dashboard.Membership
		teamLimited, usersLimited bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = f.upstream.GetTeam(gctx)
		switch {
		case errors.Is(err, slack.ErrRateLimited):
			log.Warningf("team.info throttled: %s", err)
			t, teamLimited = team.Placeholder(f.placeholderName()), true
		case err != nil:
			return err
		default:
			f.rememberName(t.Name)
		}
		return nil
	})
	g.Go(func() error {
		members, err := f.upstream.GetMembers(gctx)
		switch {
		case errors.Is(err, slack.ErrRateLimited):
			log.Warningf("users.list throttled: %s", err)
			membership, usersLimited = dashboard.UnknownMembership(), true
		case err != nil:
			return err
		default:
			membership = dashboard.Count(members)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	throttled := teamLimited || usersLimited

	s := &dashboard.Snapshot{
		Team:       t,
		Membership: membership,
		Throttled:  throttled,
		FetchedAt:  f.cfg.Now(),
	}

	ttl := f.cfg.Period
	if throttled {
		ttl = f.cfg.ThrottledPeriod
	}
	f.store.Set(CacheKey, s, ttl)
	log.Infof("dashboard refreshed: %q %d/%d online, throttled=%t, cached for %s",
		t.Name, membership.UsersOnline, membership.UsersTotal, throttled, ttl)
	return s, nil
}

func (f *Fetcher) placeholderName() string {
	f.lastNameMu.Lock()
	defer f.lastNameMu.Unlock()
	if f.lastName != "" {
		return f.lastName
	}
	return f.cfg.FallbackName
}

func (f *Fetcher) rememberName(name string) {
	f.lastNameMu.Lock()
	defer f.lastNameMu.Unlock()
	f.lastName = name
}
