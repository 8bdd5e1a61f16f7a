// Package listing reads a vehicle listing page and pulls out the condition
// fields a seller declared, plus the SMS query that returns the vehicle's
// damage record. Extraction is best effort: listing sites change their
// markup without notice, so every field may come back empty.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/textfold"
	"go.uber.org/zap"
)

const maxPageBytes = 5 << 20

// ErrInvalidURL is returned for anything but an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid listing url")

// Listing is what could be read from one listing page.
type Listing struct {
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Plate       string `json:"plate,omitempty"`
	Painted     *bool  `json:"painted"`
	Replaced    *bool  `json:"replaced"`
	Description string `json:"description,omitempty"`
	SMSQuery    string `json:"smsQuery,omitempty"`
}

// Options configures a Client.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	SMSNumber string
}

// Client fetches listing pages.
type Client struct {
	http      *http.Client
	userAgent string
	smsNumber string
	logger    *zap.Logger
}

// NewClient creates a client; zero options fall back to the defaults.
func NewClient(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultListingTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = constants.DefaultListingUserAgent
	}
	if opts.SMSNumber == "" {
		opts.SMSNumber = constants.DefaultSMSNumber
	}
	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		smsNumber: opts.SMSNumber,
		logger:    logger,
	}
}

// Fetch downloads the page at rawURL and extracts the listing from it.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Listing, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close listing response",
				zap.String("op", "listing.Fetch"),
				zap.Error(closeErr),
			)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing page returned %s", resp.Status)
	}

	l, err := Parse(io.LimitReader(resp.Body, maxPageBytes), c.smsNumber)
	if err != nil {
		return nil, err
	}
	l.URL = u.String()

	c.logger.Info("listing fetched",
		zap.String("op", "listing.Fetch"),
		zap.String("host", u.Host),
		zap.Bool("plateFound", l.Plate != ""),
	)
	return l, nil
}

// Parse extracts a listing from HTML.
func Parse(r io.Reader, smsNumber string) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing page: %w", err)
	}

	l := &Listing{
		Title:       firstNonEmpty(metaContent(doc, `meta[property="og:title"]`), doc.Find("title").First().Text()),
		Description: description(doc),
	}

	text := doc.Find("body").Text()
	l.Plate = findPlate(text)
	folded := textfold.Fold(text + " " + l.Description)
	l.Painted = declared(folded, paintNone, paintSome)
	l.Replaced = declared(folded, replacedNone, replacedSome)
	l.SMSQuery = SMSQuery(smsNumber, l.Plate)
	return l, nil
}

// SMSQuery builds the sms: link that asks for the damage record of plate.
// It is empty when the plate is unknown.
func SMSQuery(number, plate string) string {
	compact := strings.Join(strings.Fields(plate), "")
	if compact == "" {
		return ""
	}
	if number == "" {
		number = constants.DefaultSMSNumber
	}
	body := constants.SMSQueryKeyword + " " + strings.ToUpper(compact)
	return "sms:" + number + "?body=" + url.PathEscape(body)
}

var (
	// Turkish plates: province code 01-81, one to three letters, two to four digits.
	labelledPlate = regexp.MustCompile(`(?i)plaka\s*:?\s*(0[1-9]|[1-7][0-9]|8[01])\s*([a-zçğıöşü]{1,3})\s*([0-9]{2,4})\b`)
	barePlate     = regexp.MustCompile(`\b(0[1-9]|[1-7][0-9]|8[01]) ?([A-Z]{1,3}) ?([0-9]{2,4})\b`)

	// Open ended so that suffixed forms ("boyasizdir") match too.
	paintNone    = regexp.MustCompile(`\b(boyasiz|boya yok|boyali parca yok|not painted|no paint|hatasiz)`)
	paintSome    = regexp.MustCompile(`\b(boyali|lokal boya|painted)`)
	replacedNone = regexp.MustCompile(`\b(degisensiz|degisen yok|degisen parca yok|no replaced parts|hatasiz)`)
	replacedSome = regexp.MustCompile(`\b(degisen|degismis|replaced)`)
)

// unitWords look like plate letters next to numbers but are prices,
// mileage or engine figures.
var unitWords = map[string]bool{"TL": true, "KM": true, "CC": true, "HP": true, "BG": true}

func findPlate(text string) string {
	if m := labelledPlate.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1] + " " + m[2] + " " + m[3])
	}
	for _, m := range barePlate.FindAllStringSubmatch(text, -1) {
		if !unitWords[m[2]] {
			return m[1] + " " + m[2] + " " + m[3]
		}
	}
	return ""
}

// declared returns false when the text states the absence, true when it
// states the presence, and nil when it says neither.
func declared(folded string, none, some *regexp.Regexp) *bool {
	switch {
	case none.MatchString(folded):
		return boolPtr(false)
	case some.MatchString(folded):
		return boolPtr(true)
	default:
		return nil
	}
}

func boolPtr(v bool) *bool {
	return &v
}

func description(doc *goquery.Document) string {
	if d := textfold.Collapse(doc.Find("#classifiedDescription").First().Text()); d != "" {
		return d
	}
	return firstNonEmpty(
		metaContent(doc, `meta[name="description"]`),
		metaContent(doc, `meta[property="og:description"]`),
		doc.Find("p").First().Text(),
	)
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if c := textfold.Collapse(v); c != "" {
			return c
		}
	}
	return ""
}

