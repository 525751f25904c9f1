package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"github.com/travigo/srt-timetables/pkg/util"
)

const (
	cookieConsentSelector  = `.btn-cookie-consent-preview`
	languageToggleSelector = `.dropdown-toggle.current-lang`
	englishOptionXPath     = `//a[contains(@class, 'switch-lang') and contains(., 'English')]`

	cookieSettle         = 2 * time.Second
	languageMenuSettle   = 1 * time.Second
	languageSwitchSettle = 2 * time.Second
)

// AcceptCookies dismisses the cookie banner if it shows up within the probe timeout
func (s *Session) AcceptCookies() bool {
	if !s.probeClick(cookieConsentSelector, chromedp.ByQuery) {
		log.Info().Msg("Cookie acceptance button not found or already accepted")
		return false
	}

	log.Info().Msg("Accepted cookies")
	util.Sleep(s.ctx, cookieSettle)

	return true
}

// SwitchToEnglish picks English from the language menu. The portal markup changes
// often so a missing menu or option is not an error.
func (s *Session) SwitchToEnglish() bool {
	if !s.probeClick(languageToggleSelector, chromedp.ByQuery) {
		log.Info().Msg("Language selector not found or already in English")
		return false
	}

	log.Debug().Msg("Opened language dropdown")
	util.Sleep(s.ctx, languageMenuSettle)

	if !s.probeClick(englishOptionXPath, chromedp.BySearch) {
		log.Info().Msg("English language option not found")
		return false
	}

	log.Info().Msg("Selected English language")
	util.Sleep(s.ctx, languageSwitchSettle)

	return true
}

func (s *Session) probeClick(selector string, options ...chromedp.QueryOption) bool {
	ctx, cancel := context.WithTimeout(s.ctx, s.options.ProbeTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.WaitVisible(selector, options...),
		chromedp.Click(selector, options...),
	)
	if err != nil {
		log.Debug().Err(err).Str("selector", selector).Msg("Probe did not apply")
		return false
	}

	return true
}
