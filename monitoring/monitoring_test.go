package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/employees/"+id, http.NoBody))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/employees/{id}", "404"))
	assert.Equal(t, 2.0, got)
}

func TestObservePrediction(t *testing.T) {
	m := NewMetrics()
	m.ObservePrediction(OutcomeOK, 51500)
	m.ObservePrediction(OutcomeUnknownCategory, 0)
	m.ObserveReload(nil)
	m.ObserveReload(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictionsTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictionsTotal.WithLabelValues(OutcomeUnknownCategory)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.predictedSalary))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelReloadsTotal.WithLabelValues("error")))
}

func TestMetricsHandlerExposesGauges(t *testing.T) {
	m := NewMetrics()
	m.TrackModel(func() bool { return true })
	m.TrackHub(NewHub(nil, nil))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "salary_model_loaded 1")
	assert.Contains(t, body, "salary_ws_clients 0")
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.True(t, hub.Publish(MessagePrediction, map[string]float64{"predicted_salary": 51500}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessagePrediction, msg.Type)
	assert.NotEmpty(t, msg.ID)

	var data map[string]float64
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, 51500.0, data["predicted_salary"])
}

func TestClientSubscriptions(t *testing.T) {
	c := &client{subscriptions: make(map[MessageType]bool)}
	assert.True(t, c.wants(MessagePrediction))

	c.handle(ClientMessage{Type: "subscribe", Topic: MessageModelReloaded})
	assert.True(t, c.wants(MessageModelReloaded))
	assert.False(t, c.wants(MessagePrediction))

	c.handle(ClientMessage{Type: "unsubscribe", Topic: MessageModelReloaded})
	assert.True(t, c.wants(MessagePrediction))
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, hub.ClientCount())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://hr.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws", http.NoBody)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://hr.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}
