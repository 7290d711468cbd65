package mid

import (
	"context"
	"net/http"
	"strings"

	"github.com/ardanlabs/powledger/foundation/web"
)

// corsMethods are the only methods the ledger routes answer to.
var corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")

// Cors lets browser clients on the origin reach the ledger API. Pass "*"
// to allow any origin.
func Cors(origin string) web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Methods", corsMethods)
			hdr.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length")
			hdr.Set("Access-Control-Max-Age", "86400")

			if origin != "*" {
				hdr.Add("Vary", "Origin")
			}

			return handler(ctx, w, r)
		}
	}
}
