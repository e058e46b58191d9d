package fiat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"lpmarket/internal/model"
)

func TestEthUSD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/simple/price", r.URL.Path)
		require.Equal(t, "ethereum", r.URL.Query().Get("ids"))
		require.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		fmt.Fprint(w, `{"ethereum":{"usd":3456.78}}`)
	}))
	defer srv.Close()

	price, err := NewClient(srv.URL + "/").EthUSD(context.Background())
	require.NoError(t, err)
	require.Equal(t, "3456.78", price.String())
}

func TestMissingCoinIsShapeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Price(context.Background(), "ethereum")
	require.ErrorIs(t, err, model.ErrUnexpectedShape)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).EthUSD(context.Background())
	require.Error(t, err)
}
