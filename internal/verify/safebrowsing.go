package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultSafeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// SafeBrowsingProvider looks URLs up against the Google Safe Browsing v4
// threatMatches API. It satisfies ReputationProvider; construct it only
// when an API key is configured.
type SafeBrowsingProvider struct {
	APIKey   string
	Endpoint string // defaults to the public v4 endpoint
	Client   *http.Client
}

type safeBrowsingRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string          `json:"threatTypes"`
		PlatformTypes    []string          `json:"platformTypes"`
		ThreatEntryTypes []string          `json:"threatEntryTypes"`
		ThreatEntries    []map[string]string `json:"threatEntries"`
	} `json:"threatInfo"`
}

type safeBrowsingResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
		Threat     struct {
			URL string `json:"url"`
		} `json:"threat"`
	} `json:"matches"`
}

func (p *SafeBrowsingProvider) Name() string {
	return "Google Safe Browsing"
}

// Lookup posts the URL to the threatMatches endpoint and converts any
// matches into ThreatMatch entries.
func (p *SafeBrowsingProvider) Lookup(ctx context.Context, rawURL string) ([]ThreatMatch, error) {
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = defaultSafeBrowsingEndpoint
	}

	var payload safeBrowsingRequest
	payload.Client.ClientID = "linkverify"
	payload.Client.ClientVersion = "1.0"
	payload.ThreatInfo.ThreatTypes = []string{
		"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION",
	}
	payload.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	payload.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	payload.ThreatInfo.ThreatEntries = []map[string]string{{"url": rawURL}}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+p.APIKey, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded safeBrowsingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	matches := make([]ThreatMatch, 0, len(decoded.Matches))
	for _, m := range decoded.Matches {
		matches = append(matches, ThreatMatch{
			ThreatType:  m.ThreatType,
			Description: fmt.Sprintf("URL flagged as %s", m.ThreatType),
			Source:      p.Name(),
		})
	}
	return matches, nil
}

func (p *SafeBrowsingProvider) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}
