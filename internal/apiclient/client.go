// Package apiclient is the thin REST client for the Style AI backend. It
// owns URL construction, JSON codecs, per-call timeouts, bearer-token
// attachment and the mapping of HTTP statuses onto the service error
// taxonomy. Endpoint paths and payload shapes are backend-owned.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/styleai/styleai/internal/serviceerr"
	"github.com/styleai/styleai/internal/session"
)

const (
	pathLogin               = "/auth/login"
	pathRegister            = "/auth/register"
	pathMe                  = "/auth/me"
	pathUsageInfo           = "/auth/usage-info"
	pathUpload              = "/upload"
	pathImages              = "/images"
	pathUploads             = "/uploads/"
	pathCreatePaymentIntent = "/auth/create-payment-intent"
	pathConfirmPayment      = "/auth/confirm-payment"
	pathPurchaseCredits     = "/auth/purchase-credits"
	pathHealth              = "/health"
)

// TokenSource yields the bearer token to attach at dispatch time, or the
// empty string when no session is active. The session manager is the live
// source; request issuers never attach the header themselves.
type TokenSource func() string

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	UserAgent   string
	TokenSource TokenSource

	// Transport overrides the underlying round tripper, for tests.
	Transport http.RoundTripper
}

type Client struct {
	baseURL *url.URL
	hc      *http.Client
	ua      string
}

func New(opt Options) (*Client, error) {
	if opt.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	u, err := url.Parse(opt.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Host == "" {
		return nil, errors.New("base URL is missing a host")
	}

	timeout := opt.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	transport := opt.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	hc := &http.Client{
		Timeout: timeout,
		Transport: &bearerRoundTripper{
			tokens: opt.TokenSource,
			next:   newMetricsRoundTripper(transport),
		},
	}

	return &Client{baseURL: u, hc: hc, ua: opt.UserAgent}, nil
}

// --- Wire types ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string        `json:"access_token"`
	User        *session.User `json:"user"`
}

type meResponse struct {
	User *session.User `json:"user"`
}

// UsageInfo is the credit accounting the backend reports for the session
// user.
type UsageInfo struct {
	Tier         string `json:"tier"`
	TierName     string `json:"tier_name"`
	Limit        int    `json:"limit"`
	ImagesUsed   int    `json:"images_used"`
	Remaining    int    `json:"remaining"`
	ImageCredits int    `json:"image_credits"`
	IsPremium    bool   `json:"is_premium"`
}

// UploadResult describes a processed image as returned by the enhancement
// endpoint.
type UploadResult struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	Style            string `json:"style"`
	Timestamp        string `json:"timestamp"`
	URL              string `json:"url"`
	DownloadURL      string `json:"download_url"`
}

// RemoteImage is one gallery entry from the listing endpoint.
type RemoteImage struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	URL              string `json:"url"`
	Timestamp        string `json:"timestamp"`
	Style            string `json:"style"`
}

// PaymentIntent is the provider handle for a pending credit purchase.
type PaymentIntent struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// PurchaseResult reports the credits granted by a confirmed or simulated
// purchase.
type PurchaseResult struct {
	Message          string `json:"message"`
	CreditsAdded     int    `json:"credits_added"`
	CreditsPurchased int    `json:"credits_purchased"`
	TotalCredits     int    `json:"total_credits"`
}

type apiError struct {
	Error string `json:"error"`
}

// --- Session endpoints (session.Backend) ---

var _ session.Backend = (*Client)(nil)

func (c *Client) Login(ctx context.Context, username, password string) (session.Credentials, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, pathLogin, loginRequest{Username: username, Password: password}, &resp); err != nil {
		return session.Credentials{}, fmt.Errorf("logging in: %w", err)
	}

	if resp.AccessToken == "" || resp.User == nil {
		return session.Credentials{}, fmt.Errorf("login response missing token or user: %w", serviceerr.ErrMalformedResponse)
	}

	return session.Credentials{Token: resp.AccessToken, User: resp.User}, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (session.Credentials, error) {
	var resp authResponse
	req := registerRequest{Username: username, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, pathRegister, req, &resp); err != nil {
		return session.Credentials{}, fmt.Errorf("registering: %w", err)
	}

	if resp.AccessToken == "" || resp.User == nil {
		return session.Credentials{}, fmt.Errorf("register response missing token or user: %w", serviceerr.ErrMalformedResponse)
	}

	return session.Credentials{Token: resp.AccessToken, User: resp.User}, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*session.User, error) {
	var resp meResponse
	if err := c.doJSON(ctx, http.MethodGet, pathMe, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}

	if resp.User == nil {
		return nil, fmt.Errorf("me response missing user: %w", serviceerr.ErrMalformedResponse)
	}

	return resp.User, nil
}

// --- Usage / upload / gallery endpoints ---

func (c *Client) UsageInfo(ctx context.Context) (UsageInfo, error) {
	var info UsageInfo
	if err := c.doJSON(ctx, http.MethodGet, pathUsageInfo, nil, &info); err != nil {
		return UsageInfo{}, fmt.Errorf("fetching usage info: %w", err)
	}

	return info, nil
}

// Upload submits a data-URL-encoded image for enhancement.
func (c *Client) Upload(ctx context.Context, dataURL string) (UploadResult, error) {
	req := struct {
		Image string `json:"image"`
	}{Image: dataURL}

	var result UploadResult
	if err := c.doJSON(ctx, http.MethodPost, pathUpload, req, &result); err != nil {
		return UploadResult{}, fmt.Errorf("uploading image: %w", err)
	}

	return result, nil
}

func (c *Client) ListImages(ctx context.Context) ([]RemoteImage, error) {
	var resp struct {
		Images []RemoteImage `json:"images"`
	}
	if err := c.doJSON(ctx, http.MethodGet, pathImages, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	return resp.Images, nil
}

// FetchImage downloads the raw bytes of a processed image by filename.
func (c *Client) FetchImage(ctx context.Context, filename string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pathUploads+url.PathEscape(filename), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", errors.Join(err, serviceerr.ErrNetwork))
	}
	defer resp.Body.Close()

	if err := serviceerr.FromStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("fetching image %s: %w", filename, err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image body: %w", errors.Join(err, serviceerr.ErrNetwork))
	}

	return data, nil
}

// --- Payment endpoints ---

func (c *Client) CreatePaymentIntent(ctx context.Context, amountCents int, currency, description string) (PaymentIntent, error) {
	req := struct {
		Amount      int    `json:"amount"`
		Currency    string `json:"currency"`
		Description string `json:"description"`
	}{Amount: amountCents, Currency: currency, Description: description}

	var intent PaymentIntent
	if err := c.doJSON(ctx, http.MethodPost, pathCreatePaymentIntent, req, &intent); err != nil {
		return PaymentIntent{}, fmt.Errorf("creating payment intent: %w", err)
	}

	if intent.ClientSecret == "" || intent.PaymentIntentID == "" {
		return PaymentIntent{}, fmt.Errorf("payment intent response incomplete: %w", serviceerr.ErrMalformedResponse)
	}

	return intent, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, paymentIntentID string, amountCents int) (PurchaseResult, error) {
	req := struct {
		PaymentIntentID string `json:"payment_intent_id"`
		Amount          int    `json:"amount"`
	}{PaymentIntentID: paymentIntentID, Amount: amountCents}

	var result PurchaseResult
	if err := c.doJSON(ctx, http.MethodPost, pathConfirmPayment, req, &result); err != nil {
		return PurchaseResult{}, fmt.Errorf("confirming payment: %w", err)
	}

	return result, nil
}

// PurchaseCredits hits the simulated purchase endpoint used in development
// environments without a payment provider.
func (c *Client) PurchaseCredits(ctx context.Context) (PurchaseResult, error) {
	var result PurchaseResult
	if err := c.doJSON(ctx, http.MethodPost, pathPurchaseCredits, struct{}{}, &result); err != nil {
		return PurchaseResult{}, fmt.Errorf("purchasing credits: %w", err)
	}

	return result, nil
}

// Health probes backend connectivity.
func (c *Client) Health(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodGet, pathHealth, nil, nil); err != nil {
		return fmt.Errorf("probing health: %w", err)
	}

	return nil
}

// --- Plumbing ---

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", errors.Join(err, serviceerr.ErrNetwork))
	}
	defer resp.Body.Close()

	if taxErr := serviceerr.FromStatus(resp.StatusCode); taxErr != nil {
		var apiErr apiError
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %w", apiErr.Error, taxErr)
		}

		return taxErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", errors.Join(err, serviceerr.ErrMalformedResponse))
	}

	return nil
}
