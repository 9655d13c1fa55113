package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{Token: "tok", Key: "sec", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(ClientConfig{Token: "tok"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewClient(ClientConfig{Key: "sec"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParsed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/parsed", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		assert.Equal(t, "sec", r.URL.Query().Get("key"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"success":true,"symbol":"AAPL","results":{"sentiment":0.757,"AHI":0.809,"RHI":1.487,"SGP":0.42}}`))
	})

	td, err := c.Parsed(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", td.Symbol)
	assert.Equal(t, 0.757, td.Sentiment)
	assert.Equal(t, 0.809, td.AHI)
}

func TestParsed_InvalidSymbolSkipsNetwork(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	for _, symbol := range []string{"", "AA PL", "WAY_TOO_LONG_SYMBOL", "$TSLA"} {
		_, err := c.Parsed(context.Background(), symbol)
		assert.ErrorIs(t, err, ErrInvalidArgument, "symbol %q", symbol)
	}
	assert.Zero(t, requests.Load(), "no request may be issued for invalid input")
}

func TestQuote_EnrichParameter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("enrich"))
		w.Write([]byte(`{"success":true,"symbol":"TSLA","results":{"sentiment":0.9,"tweet_mentions":20}}`))
	})

	q, err := c.Quote(context.Background(), "TSLA", true)
	require.NoError(t, err)
	assert.Equal(t, "TSLA", q.Symbol)
	assert.Equal(t, 20, q.Tweets.Mentions)
}

func TestSort_Validation(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	_, err := c.Sort(context.Background(), "bogus", 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.Sort(context.Background(), "AHI", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Zero(t, requests.Load())
}

func TestSort(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AHI", r.URL.Query().Get("metric"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"success":true,"results":[{"symbol":"AMC","rank":0,"AHI":1.92},{"symbol":"ET","rank":1,"AHI":1.83}]}`))
	})

	list, err := c.Sort(context.Background(), "AHI", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "AMC", list[0].Symbol)
	assert.Equal(t, 1, list[1].Rank)
}

func TestHistorical(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "AAPL", q.Get("symbol"))
		assert.Equal(t, "RHI", q.Get("metric"))
		assert.Equal(t, "1614556869", q.Get("start"))
		assert.Equal(t, "1619654469", q.Get("end"))
		w.Write([]byte(`{"success":true,"results":[{"timestamp":1618057166.52,"data":0.00005}]}`))
	})

	points, err := c.Historical(context.Background(), "AAPL", "RHI", 1614556869, 1619654469)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 0.00005, points[0].Value)
}

func TestHistorical_RangeValidation(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	_, err := c.Historical(context.Background(), "AAPL", "RHI", 200, 100)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, requests.Load())
}

func TestBulk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL,TSLA,PYPL", r.URL.Query().Get("symbols"))
		assert.Equal(t, "false", r.URL.Query().Get("enrich"))
		w.Write([]byte(`{"success":true,"results":[
			{"symbol":"AAPL","sentiment":0.7},
			{"symbol":"TSLA","sentiment":0.9},
			{"symbol":"PYPL","sentiment":0.6}]}`))
	})

	quotes, err := c.Bulk(context.Background(), []string{"AAPL", "TSLA", "PYPL"}, false)
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.Equal(t, "TSLA", quotes[1].Symbol)
}

func TestAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/all", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("enrich"))
		w.Write([]byte(`{"success":true,"results":[
			{"symbol":"AAPL","sentiment":0.7,"AHI":1.2},
			{"symbol":"TSLA","sentiment":0.9,"AHI":2.4}]}`))
	})

	quotes, err := c.All(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "AAPL", quotes[0].Symbol)
	assert.Equal(t, 2.4, quotes[1].AHI)
}

func TestSupported(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"result":false}`))
	})

	supported, err := c.Supported(context.Background(), "SNTPY")
	require.NoError(t, err)
	assert.False(t, supported)
}

func TestAllStocks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/all-stocks", r.URL.Path)
		w.Write([]byte(`{"success":true,"results":["AAPL","TSLA"]}`))
	})

	symbols, err := c.AllStocks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA"}, symbols)
}

func TestCall_GenericMetric(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/AQS", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"AAPL","AQS":0.42,"ts":1690000000}`))
	})

	rec, err := c.Call(context.Background(), "AQS", map[string]string{"symbol": "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, 0.42, rec.Sentiment)
	assert.Equal(t, int64(1690000000), rec.Timestamp)
}

func TestCall_Validation(t *testing.T) {
	var requests atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	_, err := c.Call(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.Call(context.Background(), "AQS", map[string]string{"symbol": "not a symbol"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Zero(t, requests.Load())
}

func TestAuthenticationRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("incorrect_key"))
	})

	_, err := c.Parsed(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestInvalidParameterBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("invalid_parameter"))
	})

	_, err := c.Parsed(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUnauthorizedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Parsed(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestServerErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"internal error"}`))
	})

	_, err := c.Parsed(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, err := NewClient(ClientConfig{Token: "tok", Key: "sec", BaseURL: srv.URL})
	require.NoError(t, err)
	srv.Close()

	_, err = c.Parsed(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestDeclinedEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"no data for symbol"}`))
	})

	_, err := c.Parsed(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "no data for symbol")
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})

	_, err := c.Parsed(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrResponseFormat)
}
