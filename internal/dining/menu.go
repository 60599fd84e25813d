// Package dining fetches campus dining menus and asks an LLM which meals
// suit a diet goal.
package dining

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrUnavailable means the menu feed or the LLM could not serve the request.
var ErrUnavailable = errors.New("dining upstream unavailable")

// Menus maps an eatery name to the distinct item names it serves, sorted.
type Menus map[string][]string

type eateriesResponse struct {
	Data struct {
		Eateries []struct {
			Name           string `json:"name"`
			OperatingHours []struct {
				Events []struct {
					Menu []struct {
						Category string `json:"category"`
						Items    []struct {
							Item string `json:"item"`
						} `json:"items"`
					} `json:"menu"`
				} `json:"events"`
			} `json:"operatingHours"`
		} `json:"eateries"`
	} `json:"data"`
}

type MenuClient struct {
	httpClient *http.Client
	menuURL    string
}

func NewMenuClient(menuURL string, timeout time.Duration) *MenuClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MenuClient{
		httpClient: &http.Client{Timeout: timeout},
		menuURL:    menuURL,
	}
}

// FetchMenus downloads today's eatery list and collects each eatery's items.
func (c *MenuClient) FetchMenus(ctx context.Context) (Menus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.menuURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create menu request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get menus: %v", ErrUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Errorf("close menu response body: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: menu feed returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var eateries eateriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&eateries); err != nil {
		return nil, fmt.Errorf("%w: decode menus: %v", ErrUnavailable, err)
	}

	menus := make(Menus, len(eateries.Data.Eateries))
	for _, eatery := range eateries.Data.Eateries {
		seen := map[string]struct{}{}
		for _, day := range eatery.OperatingHours {
			for _, event := range day.Events {
				for _, category := range event.Menu {
					for _, entry := range category.Items {
						if entry.Item != "" {
							seen[entry.Item] = struct{}{}
						}
					}
				}
			}
		}
		items := make([]string, 0, len(seen))
		for item := range seen {
			items = append(items, item)
		}
		sort.Strings(items)
		menus[eatery.Name] = items
	}

	log.Debugf("fetched menus of %d eateries", len(menus))
	return menus, nil
}
