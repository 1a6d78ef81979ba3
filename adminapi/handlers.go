package adminapi

import (
	stdErrors "errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	flowerrors "flowkernel/core/errors"
	"flowkernel/crypto"
	"flowkernel/flow/channel"
	"flowkernel/flow/consent"
	"flowkernel/flow/domain"
	"flowkernel/flow/intent"
	"flowkernel/flow/mesh"
	"flowkernel/flow/policy"
	"flowkernel/flow/pull"
	"flowkernel/flow/router"
)

func requireAmount(s string) (*big.Int, error) {
	amt, ok := parseAmount(s)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amt, nil
}

// --- pull ---

type pullRequest struct {
	Caller string                `json:"caller"`
	Auth   consentAuthorizationJSON `json:"authorization"`
	Sig    string                `json:"signature"`
	Amount string                `json:"amount"`
}

type consentAuthorizationJSON struct {
	Grantor     string `json:"grantor"`
	Grantee     string `json:"grantee"`
	Token       string `json:"token"`
	MaxPerPull  string `json:"maxPerPull"`
	ValidAfter  uint64 `json:"validAfter"`
	ValidBefore uint64 `json:"validBefore"`
	Nonce       uint64 `json:"nonce"`
}

func (a consentAuthorizationJSON) decode() (consent.Authorization, error) {
	grantor, err := decodeAddress(a.Grantor)
	if err != nil {
		return consent.Authorization{}, err
	}
	grantee, err := decodeAddress(a.Grantee)
	if err != nil {
		return consent.Authorization{}, err
	}
	token, err := decodeAddress(a.Token)
	if err != nil {
		return consent.Authorization{}, err
	}
	maxPerPull, err := requireAmount(a.MaxPerPull)
	if err != nil {
		return consent.Authorization{}, err
	}
	return consent.Authorization{
		Grantor:     grantor,
		Grantee:     grantee,
		Token:       token,
		MaxPerPull:  maxPerPull,
		ValidAfter:  a.ValidAfter,
		ValidBefore: a.ValidBefore,
		Nonce:       a.Nonce,
	}, nil
}

func handlePull(e *pull.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pullRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		auth, err := req.Auth.decode()
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		amount, err := requireAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sig, err := decodeHexSig(req.Sig)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := e.Pull(reqContext(r), caller, auth, sig, amount); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "pulled"})
	}
}

// --- consent ---

type consentRevokeRequest struct {
	Caller   string `json:"caller"`
	AuthHash string `json:"authHash"`
}

func handleConsentRevoke(reg *consent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req consentRevokeRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		authHash, err := decodeHash(req.AuthHash)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := reg.Revoke(caller, authHash); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
	}
}

type consentSetCapRequest struct {
	Caller   string `json:"caller"`
	AuthHash string `json:"authHash"`
	NewCap   string `json:"newCap"`
}

func handleConsentSetCap(reg *consent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req consentSetCapRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		authHash, err := decodeHash(req.AuthHash)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		newCap, err := requireAmount(req.NewCap)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := reg.SetCap(caller, authHash, newCap); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// --- channel ---

type channelOpenRequest struct {
	Caller     string `json:"caller"`
	ID         string `json:"id"`
	Grantee    string `json:"grantee"`
	Token      string `json:"token"`
	Rate       string `json:"rate"`
	MaxBalance string `json:"maxBalance"`
	PolicyRef  string `json:"policyRef,omitempty"`
}

func handleChannelOpen(e *channel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req channelOpenRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		id, err := decodeHash(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		grantee, err := decodeAddress(req.Grantee)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		token, err := decodeAddress(req.Token)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		rate, err := requireAmount(req.Rate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		maxBalance, err := requireAmount(req.MaxBalance)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var policyRef *crypto.Hash
		if req.PolicyRef != "" {
			h, err := decodeHash(req.PolicyRef)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			policyRef = &h
		}
		if err := e.Open(caller, id, grantee, token, rate, maxBalance, policyRef); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "opened"})
	}
}

type channelIDRequest struct {
	Caller string `json:"caller"`
}

func handleChannelPause(e *channel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, ok := decodeCallerAndURLHash(w, r, "id")
		if !ok {
			return
		}
		if err := e.Pause(caller, id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
	}
}

func handleChannelResume(e *channel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, ok := decodeCallerAndURLHash(w, r, "id")
		if !ok {
			return
		}
		if err := e.Resume(caller, id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
	}
}

func handleChannelRevoke(e *channel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, caller, ok := decodeCallerAndURLHash(w, r, "id")
		if !ok {
			return
		}
		if err := e.Revoke(caller, id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
	}
}

type channelPullRequest struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func handleChannelPull(e *channel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := decodeHash(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var req channelPullRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		to, err := decodeAddress(req.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		amount, err := requireAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := e.Pull(reqContext(r), caller, id, to, amount); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "pulled"})
	}
}

func handleChannelClaimable(e *channel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := decodeHash(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		amount, err := e.Claimable(id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"claimable": amount.String()})
	}
}

// --- policy ---

type policyCreateRequest struct {
	Caller      string `json:"caller"`
	PolicyID    string `json:"policyId"`
	Grantee     string `json:"grantee"`
	Token       string `json:"token"`
	MaxPerPull  string `json:"maxPerPull"`
	MaxPerEpoch string `json:"maxPerEpoch"`
	EpochLength uint64 `json:"epochLength"`
}

func handlePolicyCreate(e *policy.Enforcer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req policyCreateRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		policyID, err := decodeHash(req.PolicyID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		grantee, err := decodeAddress(req.Grantee)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		token, err := decodeAddress(req.Token)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		maxPerPull, err := requireAmount(req.MaxPerPull)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		maxPerEpoch, err := requireAmount(req.MaxPerEpoch)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := e.CreatePolicy(policyID, caller, grantee, token, maxPerPull, maxPerEpoch, req.EpochLength); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "created"})
	}
}

type policySetReceiverRequest struct {
	Caller   string `json:"caller"`
	Receiver string `json:"receiver"`
	Allowed  bool   `json:"allowed"`
}

func handlePolicySetReceiver(e *policy.Enforcer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policyID, err := decodeHash(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var req policySetReceiverRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		receiver, err := decodeAddress(req.Receiver)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := e.SetReceiverAllowed(caller, policyID, receiver, req.Allowed); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func handlePolicyRevoke(e *policy.Enforcer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policyID, caller, ok := decodeCallerAndURLHash(w, r, "id")
		if !ok {
			return
		}
		if err := e.RevokePolicy(caller, policyID); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
	}
}

// --- domain ---

type domainSetRequest struct {
	Caller      string `json:"caller"`
	ID          string `json:"id"`
	Adapter     string `json:"adapter"`
	Destination string `json:"destination"`
	Active      bool   `json:"active"`
}

func handleDomainSet(d *domain.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domainSetRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		id, err := decodeHash(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		adapter, err := decodeAddress(req.Adapter)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		destination, err := decodeAddress(req.Destination)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := d.SetDomain(caller, id, adapter, destination, req.Active); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "set"})
	}
}

type domainSetExecutorRequest struct {
	Caller   string `json:"caller"`
	Executor string `json:"executor"`
	Approved bool   `json:"approved"`
}

func handleDomainSetExecutor(d *domain.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := decodeHash(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		var req domainSetExecutorRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		executor, err := decodeAddress(req.Executor)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := d.SetExecutorApproval(caller, id, executor, req.Approved); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// --- intent ---

func handleIntentRevoke(reg *intent.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentHash, caller, ok := decodeCallerAndURLHash(w, r, "hash")
		if !ok {
			return
		}
		if err := reg.RevokeIntent(caller, intentHash); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
	}
}

type intentExecuteRequest struct {
	Caller   string `json:"caller"`
	AuthHash string `json:"authHash"`
	Intent   struct {
		Grantor      string `json:"grantor"`
		Executor     string `json:"executor"`
		SrcDomain    string `json:"srcDomain"`
		DstDomain    string `json:"dstDomain"`
		Token        string `json:"token"`
		MaxTotal     string `json:"maxTotal"`
		ValidAfter   uint64 `json:"validAfter"`
		ValidBefore  uint64 `json:"validBefore"`
		Nonce        uint64 `json:"nonce"`
		MetadataHash string `json:"metadataHash"`
	} `json:"intent"`
	Signature string `json:"signature"`
	Amount    string `json:"amount"`
}

func handleIntentExecute(reb *intent.Rebalancer, channels *channel.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req intentExecuteRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		authHash, err := decodeHash(req.AuthHash)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		grantor, err := decodeAddress(req.Intent.Grantor)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		executor, err := decodeAddress(req.Intent.Executor)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		srcDomain, err := decodeHash(req.Intent.SrcDomain)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		dstDomain, err := decodeHash(req.Intent.DstDomain)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		token, err := decodeAddress(req.Intent.Token)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		maxTotal, err := requireAmount(req.Intent.MaxTotal)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		metadataHash, err := decodeHash(req.Intent.MetadataHash)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		amount, err := requireAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sig, err := decodeHexSig(req.Signature)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		full := intent.IntentFull{
			FlowIntent: intent.FlowIntent{
				Grantor:      grantor,
				Executor:     executor,
				SrcDomain:    srcDomain,
				DstDomain:    dstDomain,
				Token:        token,
				MaxTotal:     maxTotal,
				ValidAfter:   req.Intent.ValidAfter,
				ValidBefore:  req.Intent.ValidBefore,
				Nonce:        req.Intent.Nonce,
				MetadataHash: metadataHash,
			},
			AuthHash: authHash,
		}

		var adapter intent.SourcePullAdapter
		if channels != nil {
			adapter = newChannelSourceAdapter(reqContext(r), channels, caller)
		}
		executed, err := reb.ExecuteFlowIntent(caller, full, sig, amount, adapter)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"executed": executed})
	}
}

// --- router ---

type routerRegisterRequest struct {
	Caller    string `json:"caller"`
	ChannelID string `json:"channelId"`
	Token     string `json:"token"`
	Weight    uint64 `json:"weight"`
	Active    bool   `json:"active"`
}

func handleRouterRegister(rt *router.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req routerRegisterRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		channelID, err := decodeHash(req.ChannelID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		token, err := decodeAddress(req.Token)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := rt.RegisterChannel(caller, channelID, token, req.Weight, req.Active); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
	}
}

type routerStepRequest struct {
	Caller     string `json:"caller"`
	To         string `json:"to"`
	MaxDesired string `json:"maxDesired"`
}

func handleRouterStep(rt *router.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req routerStepRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		to, err := decodeAddress(req.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		maxDesired, err := requireAmount(req.MaxDesired)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		channelID, routed, err := rt.RouteStep(reqContext(r), caller, to, maxDesired)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"channelId": hexEncode(channelID.Bytes()),
			"routed":    routed.String(),
		})
	}
}

// --- mesh ---

type meshConfigureRequest struct {
	Caller    string `json:"caller"`
	Dest      string `json:"dest"`
	Receiver  string `json:"receiver"`
	TargetBps uint64 `json:"targetBps"`
	Active    bool   `json:"active"`
}

func handleMeshConfigure(m *mesh.Mesh) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req meshConfigureRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		dest, err := decodeHash(req.Dest)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		receiver, err := decodeAddress(req.Receiver)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := m.ConfigureDestination(caller, dest, receiver, req.TargetBps, req.Active); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "configured"})
	}
}

type meshReportBalanceRequest struct {
	Caller       string `json:"caller"`
	Dest         string `json:"dest"`
	Token        string `json:"token"`
	Balance      string `json:"balance"`
	Total        string `json:"total"`
	ReportedAt   uint64 `json:"reportedAt"`
}

func handleMeshReportBalance(m *mesh.Mesh) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req meshReportBalanceRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		dest, err := decodeHash(req.Dest)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		token, err := decodeAddress(req.Token)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		balance, err := requireAmount(req.Balance)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		total, err := requireAmount(req.Total)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := m.ReportBalance(caller, dest, token, balance, total, req.ReportedAt); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reported"})
	}
}

type meshTickRequest struct {
	Caller        string `json:"caller"`
	MaxStepAmount string `json:"maxStepAmount"`
}

func handleMeshTick(m *mesh.Mesh) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req meshTickRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := decodeAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		maxStepAmount, err := requireAmount(req.MaxStepAmount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := m.RebalanceTick(reqContext(r), caller, maxStepAmount); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ticked"})
	}
}

// statusFor maps a kernel error to an HTTP status code. Authorization
// failures become 403, unknown-entry failures become 404, everything else
// falls back to 400 since the kernel never returns server-side failures for
// validated input.
func statusFor(err error) int {
	for _, e := range []error{
		flowerrors.ErrNotGrantor, flowerrors.ErrNotGrantee, flowerrors.ErrNotController,
		flowerrors.ErrNotTrustedExecutor, flowerrors.ErrNotAuthorizedCaller, flowerrors.ErrExecutorForbidden,
	} {
		if stdErrors.Is(err, e) {
			return http.StatusForbidden
		}
	}
	for _, e := range []error{
		flowerrors.ErrUnknownAuthorization, flowerrors.ErrUnknownIntent, flowerrors.ErrBadID,
	} {
		if stdErrors.Is(err, e) {
			return http.StatusNotFound
		}
	}
	return http.StatusBadRequest
}
