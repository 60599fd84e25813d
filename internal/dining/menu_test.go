package dining

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eateriesJSON = `{
  "status": "success",
  "data": {
    "eateries": [
      {
        "name": "Morrison Dining",
        "operatingHours": [
          {"events": [
            {"menu": [
              {"category": "Grill", "items": [{"item": "Turkey Burger"}, {"item": "Grilled Chicken"}]},
              {"category": "Salad", "items": [{"item": "Grilled Chicken"}, {"item": ""}]}
            ]}
          ]},
          {"events": [
            {"menu": [{"category": "Breakfast", "items": [{"item": "Oatmeal"}]}]}
          ]}
        ]
      },
      {"name": "Cafe Jennie", "operatingHours": []}
    ]
  }
}`

func TestMenuClient_FetchMenus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eateries.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(eateriesJSON))
	}))
	defer server.Close()

	client := NewMenuClient(server.URL+"/eateries.json", time.Second)
	menus, err := client.FetchMenus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Grilled Chicken", "Oatmeal", "Turkey Burger"}, menus["Morrison Dining"])
	assert.Empty(t, menus["Cafe Jennie"])
	assert.Len(t, menus, 2)
}

func TestMenuClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewMenuClient(server.URL, time.Second)
	_, err := client.FetchMenus(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer garbage.Close()

	_, err = NewMenuClient(garbage.URL, time.Second).FetchMenus(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMenuClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewMenuClient(url, time.Second).FetchMenus(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
