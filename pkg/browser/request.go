package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const viewStateSelector = `input[name="viewStateHolder"]`

const formFetchScript = `(async () => {
	const response = await fetch(%s, {
		method: 'POST',
		credentials: 'include',
		headers: {
			'Content-Type': 'application/x-www-form-urlencoded; charset=UTF-8',
			'X-Requested-With': 'XMLHttpRequest'
		},
		body: %s
	});
	if (!response.ok) {
		throw new Error('HTTP ' + response.status + ' ' + response.statusText);
	}
	return await response.text();
})()`

func formFetchExpression(endpoint string, form url.Values) (string, error) {
	endpointLiteral, err := javascriptString(endpoint)
	if err != nil {
		return "", err
	}

	bodyLiteral, err := javascriptString(form.Encode())
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(formFetchScript, endpointLiteral, bodyLiteral), nil
}

func javascriptString(value string) (string, error) {
	var buffer bytes.Buffer

	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buffer.String(), "\n"), nil
}

// PostForm issues a form POST from inside the page so the portal sees the same
// cookies, origin and headers as its own XHR calls
func (s *Session) PostForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	expression, err := formFetchExpression(endpoint, form)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := s.runContext(ctx, s.options.RequestTimeout)
	defer cancel()

	var text string
	err = chromedp.Run(runCtx, chromedp.Evaluate(expression, &text, func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
		return params.WithAwaitPromise(true)
	}))
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}

	return []byte(text), nil
}

// ViewState returns the token the portal expects echoed back on some requests.
// It is empty when the current document does not carry one.
func (s *Session) ViewState(ctx context.Context) (string, error) {
	runCtx, cancel := s.runContext(ctx, s.options.RequestTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}

	return ExtractViewState(html)
}

func ExtractViewState(html string) (string, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	return document.Find(viewStateSelector).First().AttrOr("value", ""), nil
}
