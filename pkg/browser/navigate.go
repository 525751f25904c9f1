package browser

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const screenshotTimeout = 20 * time.Second

// navigateAndWaitForNetworkIdle loads target and waits for the new main document to
// report networkIdle, not just the load event. Lifecycle events of child frames are
// ignored.
func navigateAndWaitForNetworkIdle(target string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		frameTree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}

		watcher := &lifecycleWatcher{mainFrame: frameTree.Frame.ID}
		idle := make(chan struct{})
		var closeIdle sync.Once

		listenCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		chromedp.ListenTarget(listenCtx, func(ev interface{}) {
			lifecycleEvent, ok := ev.(*page.EventLifecycleEvent)
			if ok && watcher.observe(lifecycleEvent) {
				closeIdle.Do(func() { close(idle) })
			}
		})

		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return err
		}

		if err := chromedp.Navigate(target).Do(ctx); err != nil {
			return err
		}

		select {
		case <-idle:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// lifecycleWatcher tracks the main frame only. networkIdle counts once the frame has
// started a new document.
type lifecycleWatcher struct {
	mu sync.Mutex

	mainFrame       cdp.FrameID
	documentStarted bool
}

func (w *lifecycleWatcher) observe(ev *page.EventLifecycleEvent) bool {
	if ev.FrameID != w.mainFrame {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch ev.Name {
	case "init":
		w.documentStarted = true
	case "networkIdle":
		return w.documentStarted
	}

	return false
}

func (s *Session) Screenshot(path string) error {
	ctx, cancel := context.WithTimeout(s.ctx, screenshotTimeout)
	defer cancel()

	var buffer []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buffer, 100)); err != nil {
		return err
	}

	return os.WriteFile(path, buffer, 0o644)
}
