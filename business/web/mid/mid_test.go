package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/business/web/mid"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrors(t *testing.T) {
	tt := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"trusted", errs.NewTrusted(errors.New("chain is empty"), http.StatusConflict), http.StatusConflict, "chain is empty"},
		{"fields", fmt.Errorf("decode: %w", validate.FieldErrors{{Field: "to", Err: "to is a required field"}}), http.StatusBadRequest, "data validation error"},
		{"untrusted", errors.New("disk full"), http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
		{"panic", nil, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			app := web.NewApp(make(chan os.Signal, 1), mid.Logger(zap.NewNop().Sugar()), mid.Errors(zap.NewNop().Sugar()), mid.Metrics(), mid.Panics())

			h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				if tst.err == nil {
					panic("boom")
				}
				return tst.err
			}
			app.Handle(http.MethodGet, "v1", "/test", h, mid.Cors("*"))

			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/test", nil))

			require.Equal(t, tst.status, w.Code)
			require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

			var resp errs.Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			require.Equal(t, tst.msg, resp.Error)
		})
	}
}

func TestCors(t *testing.T) {
	tt := []struct {
		name   string
		origin string
		vary   string
	}{
		{"any", "*", ""},
		{"single", "http://localhost:3000", "Origin"},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			app := web.NewApp(make(chan os.Signal, 1))

			h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}
			app.Handle(http.MethodOptions, "v1", "/tx/submit", h, mid.Cors(tst.origin))

			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/v1/tx/submit", nil))

			require.Equal(t, http.StatusNoContent, w.Code)
			require.Equal(t, tst.origin, w.Header().Get("Access-Control-Allow-Origin"))
			require.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			require.Equal(t, tst.vary, w.Header().Get("Vary"))
		})
	}
}
