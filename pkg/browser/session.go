package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

var ErrNavigation = errors.New("portal navigation failed")

type Options struct {
	PortalURL string

	Headless  bool
	UserAgent string
	ExecPath  string

	NavigationTimeout time.Duration
	NavigationRetries uint64
	RetryInterval     time.Duration
	RequestTimeout    time.Duration
	ProbeTimeout      time.Duration
	CloseGrace        time.Duration

	ScreenshotPath string
}

func (o Options) withDefaults() Options {
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = 60 * time.Second
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 10 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 5 * time.Second
	}
	if o.CloseGrace < 0 {
		o.CloseGrace = 0
	}

	return o
}

// Session owns one browser and one tab on the portal. It is not safe for concurrent use.
type Session struct {
	options Options

	ctx             context.Context
	cancelTab       context.CancelFunc
	cancelAllocator context.CancelFunc

	closeOnce sync.Once
}

// Open launches the browser, loads the portal and runs the best-effort cookie and
// language steps. Failing to load the portal is fatal for the session.
func Open(ctx context.Context, options Options) (*Session, error) {
	options = options.withDefaults()

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", options.Headless),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(options.UserAgent),
	)
	if options.ExecPath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(options.ExecPath))
	}
	if !options.Headless {
		allocatorOptions = append(allocatorOptions, chromedp.Flag("start-maximized", true))
	}

	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	tabCtx, cancelTab := chromedp.NewContext(allocatorCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			log.Debug().Str("source", "chromedp").Msgf(format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			log.Debug().Str("source", "chromedp").Msgf(format, args...)
		}),
	)

	session := &Session{
		options:         options,
		ctx:             tabCtx,
		cancelTab:       cancelTab,
		cancelAllocator: cancelAllocator,
	}

	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAllocator()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	log.Info().Str("url", options.PortalURL).Msg("Navigating to portal")
	if err := session.navigate(); err != nil {
		log.Error().Err(err).Dur("timeout", options.NavigationTimeout).Msg("Portal did not finish loading")

		if options.ScreenshotPath != "" {
			if err := session.Screenshot(options.ScreenshotPath); err != nil {
				log.Error().Err(err).Msg("Failed to capture screenshot")
			} else {
				log.Info().Str("path", options.ScreenshotPath).Msg("Screenshot saved")
			}
		}

		session.Close()
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	log.Info().Msg("Page loaded successfully")

	session.AcceptCookies()
	session.SwitchToEnglish()

	return session, nil
}

func (s *Session) navigate() error {
	var policy backoff.BackOff = backoff.NewConstantBackOff(s.options.RetryInterval)
	policy = backoff.WithContext(backoff.WithMaxRetries(policy, s.options.NavigationRetries), s.ctx)

	return backoff.RetryNotify(func() error {
		ctx, cancel := context.WithTimeout(s.ctx, s.options.NavigationTimeout)
		defer cancel()

		return chromedp.Run(ctx, navigateAndWaitForNetworkIdle(s.options.PortalURL))
	}, policy, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("wait", wait).Msg("Portal navigation failed, retrying")
	})
}

// runContext ties a chromedp run to both the tab and the caller's context
func (s *Session) runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)

	return runCtx, func() {
		stop()
		cancel()
	}
}

// Close waits for the grace period so in-flight diagnostics can finish, then shuts
// the browser down. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		log.Info().Dur("grace", s.options.CloseGrace).Msg("Closing browser")
		time.Sleep(s.options.CloseGrace)

		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Debug().Err(err).Msg("Browser did not close cleanly")
		}
		s.cancelTab()
		s.cancelAllocator()

		log.Info().Msg("Browser closed")
	})
}
