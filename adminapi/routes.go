package adminapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flowkernel/adminapi/middleware"
)

// Routes builds the chi router exposing k's components. stream, if
// non-nil, is mounted at /v1/stream as a WebSocket event feed.
func Routes(k Kernel, auth *middleware.Authenticator, limiter *middleware.RateLimiter, stream *EventStream) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if stream != nil {
		r.Get("/v1/stream", stream.ServeHTTP)
	}

	r.Route("/v1", func(v1 chi.Router) {
		if limiter != nil {
			v1.Use(limiter.Middleware("v1"))
		}
		if auth != nil {
			v1.Use(auth.Middleware("kernel:write"))
		}

		if k.Pull != nil {
			v1.Post("/pull", handlePull(k.Pull))
		}
		if k.Consent != nil {
			v1.Post("/consent/revoke", handleConsentRevoke(k.Consent))
			v1.Post("/consent/set-cap", handleConsentSetCap(k.Consent))
		}
		if k.Channel != nil {
			v1.Post("/channels", handleChannelOpen(k.Channel))
			v1.Post("/channels/{id}/pull", handleChannelPull(k.Channel))
			v1.Post("/channels/{id}/pause", handleChannelPause(k.Channel))
			v1.Post("/channels/{id}/resume", handleChannelResume(k.Channel))
			v1.Post("/channels/{id}/revoke", handleChannelRevoke(k.Channel))
			v1.Get("/channels/{id}/claimable", handleChannelClaimable(k.Channel))
		}
		if k.Policy != nil {
			v1.Post("/policies", handlePolicyCreate(k.Policy))
			v1.Post("/policies/{id}/receivers", handlePolicySetReceiver(k.Policy))
			v1.Post("/policies/{id}/revoke", handlePolicyRevoke(k.Policy))
		}
		if k.Domain != nil {
			v1.Post("/domains", handleDomainSet(k.Domain))
			v1.Post("/domains/{id}/executors", handleDomainSetExecutor(k.Domain))
		}
		if k.Intent != nil {
			v1.Post("/intents/{hash}/revoke", handleIntentRevoke(k.Intent))
		}
		if k.Rebalancer != nil {
			v1.Post("/intents/execute", handleIntentExecute(k.Rebalancer, k.Channel))
		}
		if k.Router != nil {
			v1.Post("/router/channels", handleRouterRegister(k.Router))
			v1.Post("/router/step", handleRouterStep(k.Router))
		}
		if k.Mesh != nil {
			v1.Post("/mesh/destinations", handleMeshConfigure(k.Mesh))
			v1.Post("/mesh/balances", handleMeshReportBalance(k.Mesh))
			v1.Post("/mesh/tick", handleMeshTick(k.Mesh))
		}
	})

	return r
}

func reqContext(r *http.Request) context.Context { return r.Context() }
