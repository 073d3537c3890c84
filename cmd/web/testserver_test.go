package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lgarza/tiendita/internal/errors"
	"github.com/lgarza/tiendita/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func waitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{}
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(250 * time.Millisecond)
		}
	}
}

// scriptedAI fakes the OpenAI-compatible completion service. Completions are
// chosen by inspecting the final user prompt, mirroring how each prompt kind is
// uniquely worded.
func scriptedAI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.NotEmpty(t, request.Messages)
		prompt := request.Messages[len(request.Messages)-1].Content

		var completion string
		switch {
		case strings.Contains(prompt, "validar respuestas"):
			if strings.Contains(prompt, "no sé") {
				completion = `{"isAnswered": false, "confidence": 0.2, "reason": "respuesta vaga"}`
			} else {
				completion = `{"isAnswered": true, "confidence": 0.9, "reason": "respuesta completa"}`
			}
		case strings.Contains(prompt, "pregunta de seguimiento"):
			completion = "¿Cuántas unidades vendiste? Dame también el precio, por favor."
		case strings.Contains(prompt, "Extrae la información de ventas"):
			completion = `{"productos":[{"id_producto":1,"nombre":"Pan","cantidad":3,"precio_unitario":2,"subtotal":6}]}`
		case strings.Contains(prompt, "conteo de inventario"):
			completion = "Tu conteo coincide con el stock del sistema."
		case strings.Contains(prompt, "Resume la siguiente entrevista"):
			completion = "Resumen: vendiste 3 panes."
		case strings.Contains(prompt, "DATOS DE INVENTARIO"):
			completion = `{"recomendaciones":[{"producto_nombre":"Pan","orden_actual":15,"cambio_de_compra":3,"compra_sugerida":21,"justificacion":"ventas altas"}]}`
		default:
			t.Errorf("scriptedAI: unexpected prompt: %s", prompt)
		}

		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": completion}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(server.Close)
	return server
}

// fakeBackoffice fakes the business API and records ledger writes.
type fakeBackoffice struct {
	sales     []map[string]any
	purchases []map[string]any
}

func (f *fakeBackoffice) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/productos", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id_producto":1,"nombre":"Pan","precio_venta":2,"stock":10,"unidad_medida":"pieza"}]`))
	})
	mux.HandleFunc("POST /api/ventas", func(_ http.ResponseWriter, r *http.Request) {
		var sale map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sale))
		f.sales = append(f.sales, sale)
	})
	mux.HandleFunc("POST /api/compras", func(_ http.ResponseWriter, r *http.Request) {
		var purchase map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&purchase))
		f.purchases = append(f.purchases, purchase)
	})
	mux.HandleFunc("GET /api/productos/stock-proyeccion", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"periodo":"semana 34","productos":[
			{"producto":"Pan","stock_actual":10,"ventas_ultima_semana":20,"compras_ultima_semana":15,
			 "stock_proyectado":5,"promedio_ventas_diario":3,"promedio_compras_diario":2}]}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testLookupEnv(aiURL, businessURL string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		switch key {
		case "TIENDITA_ADDR":
			return "localhost:0", true
		case "TIENDITA_PPROF_PORT":
			// Disable pprof so parallel test servers do not fight over the port.
			return "", true
		case "AI_API_URL":
			return aiURL + "/v1", true
		case "AI_MODEL":
			return "test-model", true
		case "BUSINESS_API_URL":
			return businessURL, true
		default:
			return "", false
		}
	}
}

// slogForTest builds the test logger and intercepts the "addr" attribute so the
// test can learn the dynamically allocated listen address.
func slogForTest(w io.Writer, addrCh chan string) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "addr" {
				select {
				case addrCh <- a.Value.String():
				default:
				}
			}
			return a
		},
	})))
}

type testServer struct {
	url    string
	client http.Client
}

// startTestServer starts the real server against fake upstreams, waits for it
// to be ready, and returns a client for driving the JSON API.
func startTestServer(t *testing.T, w io.Writer, lookupEnv func(string) (string, bool)) testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// We need to grab the dynamically allocated port from the log output.
	addrCh := make(chan string, 1)
	logger := slogForTest(w, addrCh)

	// Start the server and wait for it to be ready.
	go func() {
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel()
			assert.NoError(t, err)
		}
	}()
	select {
	case <-ctx.Done():
		t.Fatal("server failed to start")
		return testServer{} //nolint:exhaustruct // This is unreachable.
	case addr := <-addrCh:
		serverURL := fmt.Sprintf("http://%s", addr)
		if err := waitForReady(ctx, fmt.Sprintf("%s/api/healthy", serverURL)); err != nil {
			require.NoError(t, err)
		}
		return testServer{url: serverURL, client: http.Client{}} //nolint:exhaustruct
	}
}

// GetJSON fetches a URL and decodes the response body.
func (s *testServer) GetJSON(t *testing.T, urlPath string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := s.client.Get(s.url + urlPath)
	require.NoError(t, err)
	return decodeBody(t, resp, wantStatus)
}

// PostJSON posts a JSON payload and decodes the response body.
func (s *testServer) PostJSON(t *testing.T, urlPath string, payload any, wantStatus int) map[string]any {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := s.client.Post(s.url+urlPath, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return decodeBody(t, resp, wantStatus)
}

func decodeBody(t *testing.T, resp *http.Response, wantStatus int) map[string]any {
	t.Helper()
	defer func() {
		err := resp.Body.Close()
		assert.NoError(t, err)
	}()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "unexpected status, body: %s", body)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	return decoded
}
